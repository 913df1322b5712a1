package reading

// MajorArcana 22 张大阿卡纳的牌名 id
// 后端文案接口返回的 id 即取自这套命名，桩服务也用它抽牌
var MajorArcana = []string{
	"the-fool",
	"the-magician",
	"the-high-priestess",
	"the-empress",
	"the-emperor",
	"the-hierophant",
	"the-lovers",
	"the-chariot",
	"strength",
	"the-hermit",
	"wheel-of-fortune",
	"justice",
	"the-hanged-man",
	"death",
	"temperance",
	"the-devil",
	"the-tower",
	"the-star",
	"the-moon",
	"the-sun",
	"judgement",
	"the-world",
}

// Package stub 本地联调用的塔罗后端桩实现
// 契约与真实后端一致，内容为确定性的罐头数据，不依赖任何外部服务
package stub

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"tarotreader/app/reading"
	"tarotreader/app/requests"
	"tarotreader/pkg/config"
	"tarotreader/pkg/response"
)

// ReadingController 处理三个桩接口
type ReadingController struct {
	deck      []string
	cache     *gocache.Cache
	imageBase string
}

// NewReadingController 创建桩控制器
func NewReadingController() *ReadingController {
	ttl := time.Duration(config.GetInt("stub.reading_cache_minutes", 30)) * time.Minute

	return &ReadingController{
		deck:      reading.MajorArcana,
		cache:     gocache.New(ttl, time.Hour),
		imageBase: strings.TrimRight(config.GetString("stub.image_base_url", "https://cards.tarotreader.local"), "/"),
	}
}

// Text 处理 POST /api/reading/text
func (rc *ReadingController) Text(c *gin.Context) {
	req, err := requests.ValidateCardData(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	cards := rc.chosenCards(req.Question, req.TotalCardsInSpread)
	id := cards[req.CardNumberInSpread]

	response.JSON(c, gin.H{
		"id":   id,
		"text": rc.cardText(id, req.Question, req.CardNumberInSpread, req.TotalCardsInSpread),
	})
}

// Image 处理 POST /api/reading/image
// 响应也带 id 字段，客户端以文案接口的 id 为准
func (rc *ReadingController) Image(c *gin.Context) {
	req, err := requests.ValidateCardData(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	cards := rc.chosenCards(req.Question, req.TotalCardsInSpread)
	id := cards[req.CardNumberInSpread]

	response.JSON(c, gin.H{
		"id":       id,
		"imageUrl": fmt.Sprintf("%s/cards/%s.jpg", rc.imageBase, id),
	})
}

// Chat 处理 POST /api/chat
func (rc *ReadingController) Chat(c *gin.Context) {
	req, err := requests.ValidateChatMessage(c)
	if err != nil {
		response.BadRequest(c, err, "请求参数验证失败")
		return
	}

	reply := fmt.Sprintf(
		"Ay, mi amor... %s still whispers. You ask: %q — escucha, the card says: hold your question close, the answer is already circling you. (turn %d)",
		cardTitle(req.CardID), req.UserMessage, len(req.PreviousMessages)/2+1,
	)

	response.JSON(c, gin.H{
		"response": reply,
	})
}

// HealthCheck 健康检查端点
func (rc *ReadingController) HealthCheck(c *gin.Context) {
	response.Data(c, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// chosenCards 为一次解读抽牌
// 同一 (问题, 张数) 在缓存有效期内返回同一组牌，文案和图片两个
// 接口因此拿到一致的结果；种子取自问题哈希，重启后依然稳定
func (rc *ReadingController) chosenCards(question string, total int) []string {
	key := fmt.Sprintf("%s|%d", question, total)
	if v, ok := rc.cache.Get(key); ok {
		return v.([]string)
	}

	h := fnv.New64a()
	h.Write([]byte(key))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	perm := rng.Perm(len(rc.deck))
	cards := make([]string, total)
	for i := 0; i < total; i++ {
		cards[i] = rc.deck[perm[i]]
	}

	rc.cache.SetDefault(key, cards)
	return cards
}

// cardText 生成确定性的罐头解读文案
func (rc *ReadingController) cardText(id, question string, index, total int) string {
	return fmt.Sprintf(
		"%s rises in position %d of %d, mi amor. For your question %q it speaks of %s — breathe, and let the card settle before you turn the next one.",
		cardTitle(id), index+1, total, question, cardTheme(id),
	)
}

// cardTheme 每张牌一个主题词，缺省时用牌名兜底
var cardThemes = map[string]string{
	"the-fool":           "new beginnings and a leap you have been postponing",
	"the-magician":       "will and the tools already in your hands",
	"the-high-priestess": "intuition that you keep talking over",
	"the-empress":        "abundance growing quietly around you",
	"the-emperor":        "structure where you crave certainty",
	"the-lovers":         "a choice of the heart, not of the head",
	"the-chariot":        "momentum that rewards discipline",
	"strength":           "the soft power of patience",
	"the-hermit":         "an answer found only in solitude",
	"wheel-of-fortune":   "a turn you cannot force, only ride",
	"death":              "an ending that clears the ground",
	"the-tower":          "a collapse that frees you",
	"the-star":           "hope after the storm",
	"the-moon":           "fears dressed up as facts",
	"the-sun":            "plain, warm, undeniable joy",
	"the-world":          "a cycle closing in your favor",
}

func cardTheme(id string) string {
	if theme, ok := cardThemes[id]; ok {
		return theme
	}
	return "a lesson that refuses to be rushed"
}

// cardTitle 把 "the-fool" 变成 "The Fool"
func cardTitle(id string) string {
	words := strings.Split(id, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

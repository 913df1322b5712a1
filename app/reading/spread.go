package reading

import "fmt"

// Spread 牌阵，决定一次解读抽取的张数
type Spread string

const (
	SpreadDestiny Spread = "Destiny" // 命运三张：过去、现在、未来
	SpreadCruz    Spread = "Cruz"    // 十字四张
	SpreadLove    Spread = "Love"    // 爱情两张
)

// spreadSizes 牌阵与张数的固定映射
var spreadSizes = map[Spread]int{
	SpreadDestiny: 3,
	SpreadCruz:    4,
	SpreadLove:    2,
}

// Size 返回牌阵的张数，未知牌阵返回 0
func (s Spread) Size() int {
	return spreadSizes[s]
}

// Valid 判断是否为已知牌阵
func (s Spread) Valid() bool {
	_, ok := spreadSizes[s]
	return ok
}

// ParseSpread 解析牌阵名称，用于命令行和请求参数
func ParseSpread(name string) (Spread, error) {
	s := Spread(name)
	if !s.Valid() {
		return "", fmt.Errorf("unknown spread: %q", name)
	}
	return s, nil
}

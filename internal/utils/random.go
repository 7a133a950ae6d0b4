package utils

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

var resourceTitles = []string{
	"钢材", "木材", "玻璃", "布料", "皮革", "铜线", "塑料", "油漆",
	"螺丝", "电池", "橡胶", "纸张", "铝板", "水泥", "陶土", "棉花",
}

var productTitles = []string{
	"椅子", "桌子", "书架", "衣柜", "台灯", "沙发", "床头柜", "鞋柜",
	"茶几", "花架", "屏风", "电视柜", "餐边柜", "梳妆台", "凳子", "挂钟",
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
var digits = "0123456789"

// GenerateIDFromChineseTitle 取标题每个字拼音的首字母，例如 "床头柜" -> "ctg"
func GenerateIDFromChineseTitle(title string) string {
	var sb strings.Builder
	for _, py := range pinyin.LazyConvert(title, nil) {
		if len(py) > 0 {
			sb.WriteByte(py[0])
		}
	}
	return sb.String()
}

func GenerateRandomID(rng *rand.Rand, letterLength int, digitLength int) string {
	randomID := make([]rune, letterLength+digitLength)
	for i := range randomID {
		if i < letterLength {
			randomID[i] = letters[rng.IntN(len(letters))]
		} else {
			randomID[i] = rune(digits[rng.IntN(len(digits))])
		}
	}
	return string(randomID)
}

// 用 Fisher-Yates 洗牌算法从标题表中随机取出 n 个不重复的标题
func pickTitles(rng *rand.Rand, titles []string, n int) []string {
	shuffled := append([]string{}, titles...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:min(n, len(shuffled))]
}

// GenerateRandomProblem 随机生成一个问题，资源和产品的 id 由中文标题的拼音首字母加序号组成
// 每个产品至少有一项数量为正的需求，因此生成的问题总能通过编译
// 数量超过标题表长度时会被截断
func GenerateRandomProblem(rng *rand.Rand, resourcesNum int, productsNum int) *domain.Problem {
	p := domain.NewProblem()
	p.Name = "随机问题" + GenerateRandomID(rng, 3, 3)
	resourcesNum = max(resourcesNum, 1)

	resourceIDs := make([]string, 0, resourcesNum)
	for i, title := range pickTitles(rng, resourceTitles, resourcesNum) {
		id := fmt.Sprintf("%s%d", GenerateIDFromChineseTitle(title), i+1)
		p.Resources[id] = &domain.Resource{
			ID:     id,
			Title:  title,
			Amount: int64(rng.IntN(500) + 50),
		}
		resourceIDs = append(resourceIDs, id)
	}

	for i, title := range pickTitles(rng, productTitles, productsNum) {
		id := fmt.Sprintf("%s%d", GenerateIDFromChineseTitle(title), i+1)
		product := &domain.Product{
			ID:    id,
			Value: uint32(rng.IntN(100) + 1),
		}

		// 保证第一项需求为正数
		for j, resourceID := range pickTitles(rng, resourceIDs, rng.IntN(len(resourceIDs))+1) {
			amount := uint32(rng.IntN(20))
			if j == 0 {
				amount++
			}
			product.Requirements = append(product.Requirements, domain.Requirement{
				ResourceID: resourceID,
				Amount:     amount,
			})
		}

		p.Products[id] = product
	}

	p.Description = fmt.Sprintf("%d 种资源，%d 种产品", len(p.Resources), len(p.Products))

	return p
}

package solver

import (
	"math/bits"
	"math/rand/v2"
)

// geneCount 计算产品最大数量 maxQty 被二进制分解后的基因个数：
// iterMax = ceil(log2(maxQty))，当 maxQty 恰好是 2 的幂时再多一位
func geneCount(maxQty uint64) int {
	if maxQty == 0 {
		return 0
	}

	iterMax := bits.Len64(maxQty - 1)
	offset := 0
	if uint64(1)<<iterMax == maxQty {
		offset = 1
	}

	return iterMax + offset
}

func coin(rng *rand.Rand) bool {
	return rng.IntN(2) == 1
}

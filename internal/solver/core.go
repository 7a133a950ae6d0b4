package solver

import (
	"cmp"
	"math/rand/v2"
	"slices"
)

type crossStrategy int

const (
	crossSinglePoint crossStrategy = iota + 1
	crossDoublePoint
	crossUniform
)

// Cross 随机选择三种交叉方式之一生成子代，按 mutationRatio/1000 的概率向上变异若干次，最后修复
func (k *Knapsack) Cross(first *Individual, other *Individual, rng *rand.Rand) (*Individual, error) {
	child := k.recombine(crossStrategy(rng.IntN(3)+1), first, other, rng)

	if rng.IntN(1000) < k.mutationRatio {
		times := rng.IntN(max(1, len(k.genes)/2)) + 1
		for range times {
			child.MutateUp(k, rng)
		}
	}

	if err := k.Repair(child, rng); err != nil {
		return nil, err
	}

	return child, nil
}

func (k *Knapsack) recombine(strategy crossStrategy, first *Individual, other *Individual, rng *rand.Rand) *Individual {
	n := len(k.genes)
	child := &Individual{
		genotype: make([]bool, n),
	}
	if n == 0 {
		return child
	}

	switch strategy {
	case crossSinglePoint:
		// 单点交叉：切分点之前的基因来自 first
		k1 := rng.IntN(n)
		for g := range child.genotype {
			if g < k1 {
				child.genotype[g] = first.genotype[g]
			} else {
				child.genotype[g] = other.genotype[g]
			}
		}
	case crossDoublePoint:
		// 两点交叉：位于两个切分点同一侧的基因来自 first
		k1, k2 := rng.IntN(n), rng.IntN(n)
		for g := range child.genotype {
			if (g < k1 && g < k2) || (g > k1 && g > k2) {
				child.genotype[g] = first.genotype[g]
			} else {
				child.genotype[g] = other.genotype[g]
			}
		}
	default:
		for g := range child.genotype {
			if coin(rng) {
				child.genotype[g] = first.genotype[g]
			} else {
				child.genotype[g] = other.genotype[g]
			}
		}
	}

	return child
}

// newPopulation 生成全新的随机种群，按适应度降序排列
func newPopulation(k *Knapsack, size int, rng *rand.Rand) ([]*Individual, error) {
	pop := make([]*Individual, 0, size)
	for range size {
		ind, err := NewIndividual(k, rng)
		if err != nil {
			return nil, err
		}
		pop = append(pop, ind)
	}

	sortPopulation(pop)
	return pop, nil
}

func sortPopulation(pop []*Individual) {
	slices.SortStableFunc(pop, func(a, b *Individual) int {
		return cmp.Compare(b.fitness, a.fitness)
	})
}

func totalFitness(pop []*Individual) int64 {
	var total int64
	for _, ind := range pop {
		total += ind.fitness
	}
	return total
}

// distribute 把按适应度排好序的种群打散：偶数下标追加到末尾，奇数下标插入到最前面
// 这样轮盘赌从前往后扫描时不会总是偏向最优的那一半
func distribute(pop []*Individual) []*Individual {
	out := make([]*Individual, 0, len(pop))
	for i, ind := range pop {
		if i%2 == 0 {
			out = append(out, ind)
		} else {
			out = slices.Insert(out, 0, ind)
		}
	}
	return out
}

// pickIndividual 使用带精英偏置的轮盘赌选择个体，返回下标
// eliteRatio 每次随机取 1~3，越大采样范围越靠前
func pickIndividual(total int64, pop []*Individual, rng *rand.Rand) int {
	if total == 0 {
		return 0
	}

	eliteRatio := int64(rng.IntN(3) + 1)
	bound := total / eliteRatio
	if bound <= 0 {
		return 0
	}
	threshold := rng.Int64N(bound)

	pick := 0
	cur := pop[0].fitness
	for cur < threshold && pick < len(pop)-1 {
		pick++
		cur += pop[pick].fitness
	}

	return pick
}

package solver

import "math/rand/v2"

// NewIndividual 先随机生成基因型，再修复到满足约束
func NewIndividual(k *Knapsack, rng *rand.Rand) (*Individual, error) {
	ind := &Individual{
		genotype: make([]bool, len(k.genes)),
	}
	for i := range ind.genotype {
		ind.genotype[i] = coin(rng)
	}

	if err := k.Repair(ind, rng); err != nil {
		return nil, err
	}

	return ind, nil
}

// MutateUp 有 1/4 的概率随机选择一个未激活的基因，否则只在不会违反约束的未激活基因中选择并激活
func (ind *Individual) MutateUp(k *Knapsack, rng *rand.Rand) {
	first, second := coin(rng), coin(rng)
	if first && second {
		ind.randMutateUp(k, rng)
	} else {
		ind.focusedMutateUp(k, rng)
	}
}

// MutateDown 有 1/4 的概率随机关闭一个激活的基因，否则在关闭后各资源剩余量非负的激活基因中选择
// 返回是否真的关闭了某个基因
func (ind *Individual) MutateDown(k *Knapsack, rng *rand.Rand) bool {
	return ind.mutateDown(k, k.Remains(ind), rng)
}

func (ind *Individual) mutateDown(k *Knapsack, remains []int64, rng *rand.Rand) bool {
	first, second := coin(rng), coin(rng)
	if first && second {
		return ind.randMutateDown(rng)
	}
	return ind.focusedMutateDown(k, remains, rng)
}

func (ind *Individual) randMutateUp(k *Knapsack, rng *rand.Rand) {
	inactive := ind.genes(false)
	if len(inactive) == 0 {
		return
	}

	// 默认写入 false，只有打开 RandMutateUpActivates 才会真正激活
	ind.genotype[inactive[rng.IntN(len(inactive))]] = k.randMutateUpActivates
}

func (ind *Individual) randMutateDown(rng *rand.Rand) bool {
	active := ind.genes(true)
	if len(active) == 0 {
		return false
	}

	ind.genotype[active[rng.IntN(len(active))]] = false
	return true
}

func (ind *Individual) focusedMutateUp(k *Knapsack, rng *rand.Rand) {
	remains := k.Remains(ind)

	var candidates []int
	for _, g := range ind.genes(false) {
		ok := true
		for r, cost := range k.genes[g].Cost {
			if remains[r] <= cost {
				ok = false
				break
			}
		}
		if ok {
			candidates = append(candidates, g)
		}
	}

	if len(candidates) > 0 {
		ind.genotype[candidates[rng.IntN(len(candidates))]] = true
	}
}

func (ind *Individual) focusedMutateDown(k *Knapsack, remains []int64, rng *rand.Rand) bool {
	var candidates []int
	for _, g := range ind.genes(true) {
		ok := true
		for r, cost := range k.genes[g].Cost {
			if remains[r]+cost < 0 {
				ok = false
				break
			}
		}
		if ok {
			candidates = append(candidates, g)
		}
	}

	if len(candidates) == 0 {
		return false
	}

	ind.genotype[candidates[rng.IntN(len(candidates))]] = false
	return true
}

// genes 返回处于指定状态的基因编号
func (ind *Individual) genes(active bool) []int {
	var out []int
	for i, v := range ind.genotype {
		if v == active {
			out = append(out, i)
		}
	}
	return out
}

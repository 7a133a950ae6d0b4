package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func individualsWithFitness(values ...int64) []*Individual {
	pop := make([]*Individual, len(values))
	for i, v := range values {
		pop[i] = &Individual{fitness: v}
	}
	return pop
}

func fitnessOf(pop []*Individual) []int64 {
	out := make([]int64, len(pop))
	for i, ind := range pop {
		out[i] = ind.fitness
	}
	return out
}

func TestDistribute(t *testing.T) {
	pop := individualsWithFitness(9, 8, 7, 6, 5, 4, 3)
	assert.Equal(t, []int64{4, 6, 8, 9, 7, 5, 3}, fitnessOf(distribute(pop)))

	// 原种群不应被修改
	assert.Equal(t, []int64{9, 8, 7, 6, 5, 4, 3}, fitnessOf(pop))

	assert.Empty(t, distribute(nil))
	assert.Equal(t, []int64{1}, fitnessOf(distribute(individualsWithFitness(1))))
}

func TestSortPopulation(t *testing.T) {
	pop := individualsWithFitness(3, 9, 1, 9, 4)
	sortPopulation(pop)
	assert.Equal(t, []int64{9, 9, 4, 3, 1}, fitnessOf(pop))
	assert.Equal(t, int64(26), totalFitness(pop))
}

func TestPickIndividualZeroTotal(t *testing.T) {
	pop := individualsWithFitness(0, 0, 0, 0)
	rng := newTestRand(1)
	for range 100 {
		assert.Equal(t, 0, pickIndividual(0, pop, rng))
	}
}

func TestPickIndividualStaysInRange(t *testing.T) {
	pop := distribute(individualsWithFitness(50, 40, 30, 20, 10, 0))
	total := totalFitness(pop)

	rng := newTestRand(9)
	seen := map[int]bool{}
	for range 2000 {
		i := pickIndividual(total, pop, rng)
		require.GreaterOrEqual(t, i, 0)
		require.Less(t, i, len(pop))
		seen[i] = true
	}
	// 阈值不超过 total，扫描不会走到最后一个之后，且前部个体都能被选到
	assert.True(t, seen[0])
	assert.True(t, seen[1])
}

func TestPickIndividualSmallTotal(t *testing.T) {
	// total / eliteRatio 可能为 0，此时返回 0
	pop := individualsWithFitness(1, 0)
	rng := newTestRand(2)
	for range 100 {
		i := pickIndividual(1, pop, rng)
		assert.Equal(t, 0, i)
	}
}

func TestRecombineStrategies(t *testing.T) {
	k, err := Compile(multiResourceProblem(), &Parameters{})
	require.NoError(t, err)
	n := len(k.Genes())

	ones := &Individual{genotype: make([]bool, n)}
	for i := range ones.genotype {
		ones.genotype[i] = true
	}
	zeros := &Individual{genotype: make([]bool, n)}

	for seed := uint64(1); seed <= 30; seed++ {
		rng := newTestRand(seed)

		single := k.recombine(crossSinglePoint, ones, zeros, rng)
		require.Equal(t, n, single.Len())
		// 单点交叉：前缀来自 first，之后全部来自 other
		for g := 1; g < n; g++ {
			if single.genotype[g] {
				assert.True(t, single.genotype[g-1])
			}
		}
		assert.False(t, single.genotype[n-1])

		double := k.recombine(crossDoublePoint, ones, zeros, rng)
		require.Equal(t, n, double.Len())
		// 两点交叉：中间一段来自 other，两端来自 first
		transitions := 0
		for g := 1; g < n; g++ {
			if double.genotype[g] != double.genotype[g-1] {
				transitions++
			}
		}
		assert.LessOrEqual(t, transitions, 2)

		uniform := k.recombine(crossUniform, ones, zeros, rng)
		require.Equal(t, n, uniform.Len())
	}
}

func TestCrossProducesFeasibleOffspring(t *testing.T) {
	for _, ratio := range []int{0, 500, 1000} {
		k, err := Compile(multiResourceProblem(), &Parameters{MutationsPer1K: ratio, RandMutateUpActivates: true})
		require.NoError(t, err)

		rng := newTestRand(uint64(ratio) + 11)
		first, err := NewIndividual(k, rng)
		require.NoError(t, err)
		other, err := NewIndividual(k, rng)
		require.NoError(t, err)

		for range 200 {
			child, err := k.Cross(first, other, rng)
			require.NoError(t, err)

			assert.Equal(t, len(k.Genes()), child.Len())
			assert.True(t, k.Valid(child))
			assert.Equal(t, k.Fitness(child), child.Fitness())
		}
	}
}

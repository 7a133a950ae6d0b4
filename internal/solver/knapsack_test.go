package solver

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// 一种资源 10 个；A 价值 3 消耗 2，B 价值 5 消耗 5，最优解是 2 个 B，价值 15
func twoProductProblem() *domain.Problem {
	p := domain.NewProblem()
	p.Resources["r"] = &domain.Resource{ID: "r", Title: "资源", Amount: 10}
	p.Products["A"] = &domain.Product{ID: "A", Value: 3, Requirements: []domain.Requirement{{ResourceID: "r", Amount: 2}}}
	p.Products["B"] = &domain.Product{ID: "B", Value: 5, Requirements: []domain.Requirement{{ResourceID: "r", Amount: 5}}}
	return p
}

// 两种资源、三种产品，其中一种产品对某个资源没有需求
func multiResourceProblem() *domain.Problem {
	p := domain.NewProblem()
	p.Resources["iron"] = &domain.Resource{ID: "iron", Title: "铁", Amount: 40}
	p.Resources["wood"] = &domain.Resource{ID: "wood", Title: "木材", Amount: 30}
	p.Products["chair"] = &domain.Product{ID: "chair", Value: 4, Requirements: []domain.Requirement{
		{ResourceID: "wood", Amount: 3}, {ResourceID: "iron", Amount: 1},
	}}
	p.Products["table"] = &domain.Product{ID: "table", Value: 9, Requirements: []domain.Requirement{
		{ResourceID: "wood", Amount: 7}, {ResourceID: "iron", Amount: 4},
	}}
	p.Products["nail"] = &domain.Product{ID: "nail", Value: 1, Requirements: []domain.Requirement{
		{ResourceID: "iron", Amount: 2}, {ResourceID: "wood", Amount: 0},
	}}
	return p
}

func TestGeneCount(t *testing.T) {
	cases := []struct {
		max  uint64
		want int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 3},
		{5, 3},
		{7, 3},
		{8, 4},
		{9, 4},
		{1024, 11},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, geneCount(c.max), "max=%d", c.max)
	}
}

func TestCompileDecomposition(t *testing.T) {
	p := twoProductProblem()
	k, err := Compile(p, &Parameters{})
	require.NoError(t, err)

	assert.Equal(t, uint32(5), p.Products["A"].Max)
	assert.Equal(t, uint32(2), p.Products["B"].Max)

	// A: max=5 => 3 个基因；B: max=2 => 2 个基因
	genes := k.Genes()
	require.Len(t, genes, 5)

	keys := make([]string, len(genes))
	for i, g := range genes {
		keys[i] = g.Key
	}
	assert.Equal(t, []string{"A_0", "A_1", "A_2", "B_0", "B_1"}, keys)

	for _, g := range genes {
		unit := map[string]int64{"A": 2, "B": 5}[g.ProductID]
		value := map[string]int64{"A": 3, "B": 5}[g.ProductID]
		assert.Equal(t, []int64{unit << g.Power}, g.Cost, g.Key)
		assert.Equal(t, value<<g.Power, g.Value, g.Key)
	}
}

func TestCompileExactPowerOfTwo(t *testing.T) {
	p := domain.NewProblem()
	p.Resources["r"] = &domain.Resource{ID: "r", Amount: 8}
	p.Products["P"] = &domain.Product{ID: "P", Value: 1, Requirements: []domain.Requirement{{ResourceID: "r", Amount: 2}}}

	k, err := Compile(p, nil)
	require.NoError(t, err)

	// max=4 => iterMax=2, offset=1 => 1, 2, 4
	assert.Equal(t, uint32(4), p.Products["P"].Max)
	require.Len(t, k.Genes(), 3)
	for i, g := range k.Genes() {
		assert.Equal(t, fmt.Sprintf("P_%d", i), g.Key)
		assert.Equal(t, int64(2)<<i, g.Cost[0])
	}
}

func TestCompileCostVectorOrder(t *testing.T) {
	k, err := Compile(multiResourceProblem(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"iron", "wood"}, k.ResourceIDs())

	byKey := map[string]Gene{}
	for _, g := range k.Genes() {
		byKey[g.Key] = g
	}
	assert.Equal(t, []int64{1, 3}, byKey["chair_0"].Cost)
	assert.Equal(t, []int64{16, 28}, byKey["table_2"].Cost)
	assert.Equal(t, []int64{4, 0}, byKey["nail_1"].Cost)
}

func TestCompileProductMaxUsesTightestResource(t *testing.T) {
	p := multiResourceProblem()
	_, err := Compile(p, nil)
	require.NoError(t, err)

	assert.Equal(t, uint32(10), p.Products["chair"].Max) // min(40/1, 30/3)
	assert.Equal(t, uint32(4), p.Products["table"].Max)  // min(40/4, 30/7)
	assert.Equal(t, uint32(20), p.Products["nail"].Max)  // 需求为 0 的资源不参与计算
}

func TestCompileClampsHugeMax(t *testing.T) {
	p := domain.NewProblem()
	p.Resources["r"] = &domain.Resource{ID: "r", Title: "r", Amount: 1 << 40}
	p.Products["a"] = &domain.Product{ID: "a", Value: 1, Requirements: []domain.Requirement{{ResourceID: "r", Amount: 1}}}

	k, err := Compile(p, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), p.Products["a"].Max)
	assert.Len(t, k.Genes(), 32)
}

func TestCompileUnknownResourceGivesNoGenes(t *testing.T) {
	p := twoProductProblem()
	p.Products["C"] = &domain.Product{ID: "C", Value: 7, Requirements: []domain.Requirement{{ResourceID: "missing", Amount: 1}}}

	k, err := Compile(p, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), p.Products["C"].Max)
	for _, g := range k.Genes() {
		assert.NotEqual(t, "C", g.ProductID)
	}
}

func TestCompileRejectsProductWithoutPositiveRequirement(t *testing.T) {
	p := twoProductProblem()
	p.Products["free"] = &domain.Product{ID: "free", Value: 1, Requirements: []domain.Requirement{{ResourceID: "r", Amount: 0}}}

	_, err := Compile(p, nil)
	require.ErrorIs(t, err, ErrNoPositiveRequirement)

	p.Products["free"].Requirements = nil
	_, err = Compile(p, nil)
	require.ErrorIs(t, err, ErrNoPositiveRequirement)
}

func TestRemainsAndFitness(t *testing.T) {
	k, err := Compile(twoProductProblem(), nil)
	require.NoError(t, err)

	// A_0 (1 个 A) + B_0 (1 个 B)
	ind := &Individual{genotype: []bool{true, false, false, true, false}}
	assert.Equal(t, []int64{10 - 2 - 5}, k.Remains(ind))
	assert.Equal(t, int64(3+5), k.Fitness(ind))
	assert.True(t, k.Valid(ind))

	// 全部激活：7 个 A + 3 个 B，严重超出
	all := &Individual{genotype: []bool{true, true, true, true, true}}
	assert.Equal(t, []int64{10 - 14 - 15}, k.Remains(all))
	assert.False(t, k.Valid(all))
}

func TestRepairRestoresFeasibility(t *testing.T) {
	k, err := Compile(multiResourceProblem(), &Parameters{})
	require.NoError(t, err)

	for seed := uint64(1); seed <= 50; seed++ {
		rng := newTestRand(seed)
		ind := &Individual{genotype: make([]bool, len(k.Genes()))}
		for i := range ind.genotype {
			ind.genotype[i] = true
		}

		require.NoError(t, k.Repair(ind, rng))
		assert.True(t, k.Valid(ind))
		assert.Equal(t, k.Fitness(ind), ind.Fitness())
	}
}

func TestRepairFailsWhenPoolIsNegative(t *testing.T) {
	p := twoProductProblem()
	k, err := Compile(p, nil)
	require.NoError(t, err)

	// 资源池在编译之后被改成负数，关闭所有基因也无法满足约束
	k.resources[0] = -1
	ind := &Individual{genotype: []bool{true, false, true, false, true}}
	assert.ErrorIs(t, k.Repair(ind, newTestRand(1)), ErrUnresolvableInfeasibility)
}

func TestKnapsackString(t *testing.T) {
	k, err := Compile(twoProductProblem(), nil)
	require.NoError(t, err)

	out := k.String()
	assert.Contains(t, out, "product A @ 3$, req(2 [r])")
	assert.Contains(t, out, "resource '[r]资源' (qty: 10)")
	assert.Contains(t, out, "B_1: [10] => 10")
}

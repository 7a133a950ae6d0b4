package solver

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

func testParameters() *Parameters {
	return &Parameters{
		PopulationSize:     20,
		GenerationsCount:   60,
		Frequency:          10,
		StabilityThreshold: 5,
		MutationsPer1K:     300,
	}
}

func TestSolveEndToEnd(t *testing.T) {
	s, err := New(testParameters(), twoProductProblem(), newTestRand(2024))
	require.NoError(t, err)

	res, err := s.Solve()
	require.NoError(t, err)

	k := s.Knapsack()
	assert.LessOrEqual(t, res.Champion.Fitness(), int64(15))
	assert.Positive(t, res.Champion.Fitness())
	assert.True(t, k.Valid(res.Champion))
	assert.Equal(t, k.Fitness(res.Champion), res.Champion.Fitness())
	assert.Equal(t, 60, res.Generations)
	assert.LessOrEqual(t, res.Generation, 60)

	sr := k.Explain(res, 15)
	require.Len(t, sr.Remains, 1)
	assert.GreaterOrEqual(t, sr.Remains[0].Amount, int64(0))
	assert.Equal(t, res.Champion.Fitness(), sr.Fitness)
	assert.InDelta(t, 100*float64(sr.Fitness)/15, sr.Percentage, 1e-9)

	var used int64
	for _, p := range sr.Products {
		used += int64(p.Quantity) * map[string]int64{"A": 2, "B": 5}[p.ProductID]
		assert.Equal(t, int64(p.Quantity)*int64(p.Value), p.Contribution)
	}
	assert.Equal(t, int64(10)-used, sr.Remains[0].Amount)
}

func TestSolvePopulationInvariants(t *testing.T) {
	params := testParameters()
	params.StabilityThreshold = 2
	s, err := New(params, multiResourceProblem(), newTestRand(5))
	require.NoError(t, err)

	k := s.Knapsack()
	genes := len(k.Genes())
	var last int64 = -1
	generations := 0

	s.observe = func(gen int, pop []*Individual, champion *Individual) {
		generations++
		require.Len(t, pop, params.PopulationSize)
		assert.Same(t, champion, pop[0])

		for i, ind := range pop {
			assert.Equal(t, genes, ind.Len())
			assert.True(t, k.Valid(ind))
			assert.Equal(t, k.Fitness(ind), ind.Fitness())
			if i > 0 {
				assert.GreaterOrEqual(t, pop[i-1].Fitness(), ind.Fitness(), "generation %d", gen)
			}
		}

		assert.GreaterOrEqual(t, champion.Fitness(), last)
		last = champion.Fitness()
	}

	res, err := s.Solve()
	require.NoError(t, err)
	assert.Equal(t, params.GenerationsCount, generations)
	assert.Equal(t, last, res.Champion.Fitness())
	// 阈值很小，必然触发过种群重启
	assert.Positive(t, res.Restarts)
}

func TestSolveProgressFrequency(t *testing.T) {
	s, err := New(testParameters(), twoProductProblem(), newTestRand(1))
	require.NoError(t, err)

	var reported []int
	s.OnProgress(func(p Progress) {
		reported = append(reported, p.Generation)
		assert.GreaterOrEqual(t, p.BestFitness, p.WorstFitness)
		assert.GreaterOrEqual(t, p.ChampionFitness, p.BestFitness)
	})

	_, err = s.Solve()
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60}, reported)
}

func TestSolveIsDeterministicWithSeed(t *testing.T) {
	run := func() *Result {
		params := testParameters()
		params.Seed = 99
		s, err := New(params, multiResourceProblem(), nil)
		require.NoError(t, err)
		res, err := s.Solve()
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	assert.Equal(t, a.Champion.Fitness(), b.Champion.Fitness())
	assert.Equal(t, a.Generation, b.Generation)
	assert.Equal(t, a.Restarts, b.Restarts)
}

func TestSolveSingleIndividual(t *testing.T) {
	params := testParameters()
	params.PopulationSize = 1
	s, err := New(params, twoProductProblem(), newTestRand(3))
	require.NoError(t, err)

	res, err := s.Solve()
	require.NoError(t, err)
	assert.True(t, s.Knapsack().Valid(res.Champion))
}

func TestNewRejectsInvalidInput(t *testing.T) {
	params := testParameters()
	params.PopulationSize = 0
	_, err := New(params, twoProductProblem(), nil)
	assert.Error(t, err)

	params = testParameters()
	params.GenerationsCount = 0
	_, err = New(params, twoProductProblem(), nil)
	assert.Error(t, err)

	p := twoProductProblem()
	p.Products["free"] = &domain.Product{ID: "free", Value: 1}
	_, err = New(testParameters(), p, nil)
	assert.ErrorIs(t, err, ErrNoPositiveRequirement)
}

func TestWriteReport(t *testing.T) {
	s, err := New(testParameters(), twoProductProblem(), newTestRand(8))
	require.NoError(t, err)
	res, err := s.Solve()
	require.NoError(t, err)

	k := s.Knapsack()
	var buf bytes.Buffer
	require.NoError(t, k.WriteReport(&buf, k.Explain(res, 15)))

	out := buf.String()
	assert.Contains(t, out, "performing")
	assert.Contains(t, out, "Solution\n-------\nproduct A @ 3$, req(2 [r]) : ")
	assert.Contains(t, out, "on 5 (15$)")
	assert.Contains(t, out, "on 2 (10$)")
	assert.Contains(t, out, "Remains\n-------\nr: 资源 (qty: ")

	// known_best 为 0 时不输出百分比
	buf.Reset()
	require.NoError(t, k.WriteReport(&buf, k.Explain(res, 0)))
	assert.NotContains(t, buf.String(), "performing")

	// 报告不会修改问题本身
	assert.Zero(t, k.Problem().Products["A"].Solution)
}

func TestWriteProgress(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProgress(&buf, Progress{Generation: 10, TotalFitness: 120, BestFitness: 15, WorstFitness: 3, ChampionFitness: 15}))
	assert.Equal(t, "Gen #10, fitness:120 (ranging 15..3) - current champion: 15\n", buf.String())
}

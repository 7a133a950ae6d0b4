package utils

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

func TestGenerateIDFromChineseTitle(t *testing.T) {
	assert.Equal(t, "ctg", GenerateIDFromChineseTitle("床头柜"))
	assert.Equal(t, "gc", GenerateIDFromChineseTitle("钢材"))
	assert.Equal(t, "", GenerateIDFromChineseTitle(""))
}

func TestGenerateRandomID(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	id := GenerateRandomID(rng, 3, 4)

	require.Len(t, id, 7)
	assert.Regexp(t, `^[a-zA-Z]{3}[0-9]{4}$`, id)
}

func TestGenerateRandomProblemIsValid(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed))
		p := GenerateRandomProblem(rng, 4, 6)

		assert.Len(t, p.Resources, 4)
		assert.Len(t, p.Products, 6)
		assert.NoError(t, ValidateProblem(p), "seed %d", seed)

		for id, resource := range p.Resources {
			assert.Equal(t, id, resource.ID)
			assert.GreaterOrEqual(t, resource.Amount, int64(50))
		}
	}
}

func TestGenerateRandomProblemClampsSizes(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	p := GenerateRandomProblem(rng, 0, 100)

	assert.Len(t, p.Resources, 1)
	assert.Len(t, p.Products, len(productTitles))
	assert.NoError(t, ValidateProblem(p))
}

func TestValidateProblem(t *testing.T) {
	valid := func() *domain.Problem {
		p := domain.NewProblem()
		p.Resources["r"] = &domain.Resource{ID: "r", Title: "资源", Amount: 10}
		p.Products["a"] = &domain.Product{ID: "a", Value: 3, Requirements: []domain.Requirement{{ResourceID: "r", Amount: 2}}}
		return p
	}

	require.NoError(t, ValidateProblem(valid()))

	tests := []struct {
		name   string
		mutate func(p *domain.Problem)
		errMsg string
	}{
		{"no resources", func(p *domain.Problem) { p.Resources = map[string]*domain.Resource{} }, "至少需要一种资源"},
		{"no products", func(p *domain.Problem) { p.Products = map[string]*domain.Product{} }, "至少需要一种产品"},
		{"negative amount", func(p *domain.Problem) { p.Resources["r"].Amount = -1 }, "不能为负数"},
		{"zero requirements", func(p *domain.Problem) { p.Products["a"].Requirements[0].Amount = 0 }, "没有任何数量为正"},
		{"unknown resource", func(p *domain.Problem) {
			p.Products["a"].Requirements = append(p.Products["a"].Requirements, domain.Requirement{ResourceID: "x", Amount: 1})
		}, "不存在"},
		{"duplicate requirement", func(p *domain.Problem) {
			p.Products["a"].Requirements = append(p.Products["a"].Requirements, domain.Requirement{ResourceID: "r", Amount: 1})
		}, "重复"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)

			err := ValidateProblem(p)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

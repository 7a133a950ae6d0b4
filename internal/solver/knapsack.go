package solver

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

var (
	ErrNoPositiveRequirement     = errors.New("产品没有任何数量为正的资源需求")
	ErrUnresolvableInfeasibility = errors.New("无法通过修复使个体满足资源约束")
	ErrEmptyPopulation           = errors.New("种群为空")
)

// Knapsack 是编译后的问题上下文：资源池、基因全集以及每个基因的约束向量和适应度
// 编译完成后只读
type Knapsack struct {
	problem     *domain.Problem
	resourceIDs []string
	resources   []int64 // 与 resourceIDs 顺序一致
	productIDs  []string
	genes       []Gene

	mutationRatio         int
	randMutateUpActivates bool
}

// Compile 对每个产品做二进制分解，生成约束表和适应度表
// 副作用：会写入每个产品的 Max
func Compile(problem *domain.Problem, parameters *Parameters) (*Knapsack, error) {
	k := &Knapsack{
		problem:     problem,
		resourceIDs: sortedKeys(problem.Resources),
		productIDs:  sortedKeys(problem.Products),
	}
	if parameters != nil {
		k.mutationRatio = parameters.MutationsPer1K
		k.randMutateUpActivates = parameters.RandMutateUpActivates
	}

	k.resources = make([]int64, len(k.resourceIDs))
	for i, id := range k.resourceIDs {
		k.resources[i] = problem.Resources[id].Amount
	}

	for _, productID := range k.productIDs {
		product := problem.Products[productID]

		maxQty, err := k.productMax(product)
		if err != nil {
			return nil, err
		}
		product.Max = maxQty

		for power := range geneCount(uint64(maxQty)) {
			cost := make([]int64, len(k.resourceIDs))
			for i, resourceID := range k.resourceIDs {
				for _, req := range product.Requirements {
					if req.ResourceID == resourceID {
						cost[i] = int64(req.Amount) << power
						break
					}
				}
			}

			k.genes = append(k.genes, Gene{
				Key:       fmt.Sprintf("%s_%d", product.ID, power),
				ProductID: product.ID,
				Power:     uint(power),
				Cost:      cost,
				Value:     int64(product.Value) << power,
			})
		}
	}

	return k, nil
}

// productMax 计算假设只生产这一种产品时，所有资源共同能支撑的最大数量
func (k *Knapsack) productMax(product *domain.Product) (uint32, error) {
	found := false
	var maxQty int64 = math.MaxInt64

	for _, req := range product.Requirements {
		if req.Amount == 0 {
			continue
		}
		found = true

		var possible int64
		if resource, exists := k.problem.Resources[req.ResourceID]; exists {
			possible = resource.Amount / int64(req.Amount)
		}
		maxQty = min(maxQty, possible)
	}

	if !found {
		return 0, fmt.Errorf("产品 %s: %w", product.ID, ErrNoPositiveRequirement)
	}

	// 数量上限为 uint32，库存再大也只取到 MaxUint32
	return uint32(min(max(maxQty, 0), math.MaxUint32)), nil
}

func (k *Knapsack) Problem() *domain.Problem {
	return k.problem
}

func (k *Knapsack) Genes() []Gene {
	return k.genes
}

func (k *Knapsack) ResourceIDs() []string {
	return k.resourceIDs
}

// Fitness 重新计算个体的适应度（激活基因的价值之和）
func (k *Knapsack) Fitness(ind *Individual) int64 {
	var total int64
	for i, active := range ind.genotype {
		if active {
			total += k.genes[i].Value
		}
	}
	return total
}

// Remains 返回每种资源扣除所有激活基因的消耗之后的剩余量
func (k *Knapsack) Remains(ind *Individual) []int64 {
	remains := make([]int64, len(k.resources))
	copy(remains, k.resources)

	for i, active := range ind.genotype {
		if !active {
			continue
		}
		for r, cost := range k.genes[i].Cost {
			remains[r] -= cost
		}
	}

	return remains
}

func (k *Knapsack) Valid(ind *Individual) bool {
	return feasible(k.Remains(ind))
}

func feasible(remains []int64) bool {
	for _, v := range remains {
		if v < 0 {
			return false
		}
	}
	return true
}

// Repair 不断向下变异直到个体满足资源约束，最后重新计算适应度
// 每一步至多关闭一个基因，因此步数不会超过基因个数
func (k *Knapsack) Repair(ind *Individual, rng *rand.Rand) error {
	for step := 0; ; step++ {
		remains := k.Remains(ind)
		if feasible(remains) {
			break
		}
		if step > len(k.genes) {
			return ErrUnresolvableInfeasibility
		}

		if !ind.mutateDown(k, remains, rng) {
			// 聚焦变异找不到候选时退化为随机关闭一个基因
			if !ind.randMutateDown(rng) {
				return ErrUnresolvableInfeasibility
			}
		}
	}

	ind.fitness = k.Fitness(ind)
	return nil
}

func (k *Knapsack) String() string {
	var sb strings.Builder

	sb.WriteString("Products\n")
	for _, id := range k.productIDs {
		fmt.Fprintf(&sb, "- %s\n", k.problem.Products[id])
	}

	sb.WriteString("Resources\n")
	for _, id := range k.resourceIDs {
		fmt.Fprintf(&sb, "- %s\n", k.problem.Resources[id])
	}

	sb.WriteString("Output matrix\n")
	for _, g := range k.genes {
		fmt.Fprintf(&sb, "%s: %v => %d\n", g.Key, g.Cost, g.Value)
	}

	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

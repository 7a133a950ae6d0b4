package solver

import "github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"

// Gene: 表示 "加入 2^power 个某产品" 的决策
type Gene struct {
	Key       string  // <product-id>_<power>
	ProductID string
	Power     uint
	Cost      []int64 // 每种资源的消耗，顺序与 Knapsack.ResourceIDs() 一致
	Value     int64
}

// Individual: 一个候选解，genotype 的下标即基因编号
type Individual struct {
	genotype []bool
	fitness  int64
}

func (ind *Individual) Fitness() int64 {
	return ind.fitness
}

func (ind *Individual) Len() int {
	return len(ind.genotype)
}

func (ind *Individual) Active(gene int) bool {
	return ind.genotype[gene]
}

func (ind *Individual) Clone() *Individual {
	genotype := make([]bool, len(ind.genotype))
	copy(genotype, ind.genotype)
	return &Individual{
		genotype: genotype,
		fitness:  ind.fitness,
	}
}

// 遗传算法参数
type Parameters struct {
	PopulationSize        int    // 种群大小
	GenerationsCount      int    // 迭代代数
	Frequency             int    // 每隔多少代报告一次进度，<= 0 表示不报告
	StabilityThreshold    int    // 冠军停滞多少代之后重新生成种群
	MutationsPer1K        int    // 每 1000 次交叉中触发变异的次数
	RandMutateUpActivates bool   // 为 false 时随机向上变异写入的是 false
	Seed                  uint64 // 0 表示使用随机种子
}

func ParametersFromSettings(s *domain.Settings) *Parameters {
	return &Parameters{
		PopulationSize:        s.PopulationSize,
		GenerationsCount:      s.GenerationsCount,
		Frequency:             s.Frequency,
		StabilityThreshold:    s.StabilityThreshold,
		MutationsPer1K:        s.MutationsPer1K,
		RandMutateUpActivates: s.RandMutateUpActivates,
		Seed:                  s.Seed,
	}
}

// Progress 是周期性进度报告的内容
type Progress struct {
	Generation      int
	TotalFitness    int64
	BestFitness     int64
	WorstFitness    int64
	ChampionFitness int64
}

// Result 是一次运行的输出
type Result struct {
	Champion    *Individual
	Generation  int // 冠军被发现的代数
	Generations int
	Restarts    int
}

package solver

import (
	"errors"
	"math/rand/v2"
	"slices"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

type Solver struct {
	parameters *Parameters
	knapsack   *Knapsack
	rng        *rand.Rand

	progress func(Progress)
	// 每一代结束后调用，测试中用来检查种群
	observe func(generation int, pop []*Individual, champion *Individual)
}

// New 编译问题并创建求解器，rng 为 nil 时根据 parameters.Seed 创建
func New(parameters *Parameters, problem *domain.Problem, rng *rand.Rand) (*Solver, error) {
	if parameters.PopulationSize < 1 {
		return nil, errors.New("种群大小必须为正数")
	}
	if parameters.GenerationsCount < 1 {
		return nil, errors.New("迭代代数必须为正数")
	}

	k, err := Compile(problem, parameters)
	if err != nil {
		return nil, err
	}

	if rng == nil {
		if parameters.Seed == 0 {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		} else {
			rng = rand.New(rand.NewPCG(parameters.Seed, parameters.Seed))
		}
	}

	return &Solver{
		parameters: parameters,
		knapsack:   k,
		rng:        rng,
	}, nil
}

func (s *Solver) Knapsack() *Knapsack {
	return s.knapsack
}

// OnProgress 设置进度回调，每隔 Frequency 代调用一次
func (s *Solver) OnProgress(fn func(Progress)) {
	s.progress = fn
}

func (s *Solver) Solve() (*Result, error) {
	size := s.parameters.PopulationSize
	threshold := s.parameters.StabilityThreshold

	// 生成初始种群
	pop, err := newPopulation(s.knapsack, size, s.rng)
	if err != nil {
		return nil, err
	}

	champion := pop[0]
	championGeneration := 0
	latestRestart := 0
	restarts := 0

	for gen := 1; gen <= s.parameters.GenerationsCount; gen++ {
		if len(pop) == 0 {
			return nil, ErrEmptyPopulation
		}
		total := totalFitness(pop)

		if s.progress != nil && s.parameters.Frequency > 0 && gen%s.parameters.Frequency == 0 {
			s.progress(Progress{
				Generation:      gen,
				TotalFitness:    total,
				BestFitness:     pop[0].fitness,
				WorstFitness:    pop[len(pop)-1].fitness,
				ChampionFitness: champion.fitness,
			})
		}

		pop = distribute(pop)

		// 繁殖
		next := make([]*Individual, 0, size)
		for len(next) < size {
			first := pop[pickIndividual(total, pop, s.rng)]
			other := pop[pickIndividual(total, pop, s.rng)]

			child, err := s.knapsack.Cross(first, other, s.rng)
			if err != nil {
				return nil, err
			}
			next = append(next, child)
		}
		sortPopulation(next)

		if next[0].fitness > champion.fitness {
			champion = next[0]
			championGeneration = gen
		} else if gen-championGeneration > threshold && gen-latestRestart > threshold {
			// 太久没有进步，整个种群重新生成
			next, err = newPopulation(s.knapsack, size, s.rng)
			if err != nil {
				return nil, err
			}
			latestRestart = gen
			restarts++

			// 新种群的最优个体可能超过冠军，此时同样更新冠军，保证冠军总在最前面
			if next[0].fitness > champion.fitness {
				champion = next[0]
				championGeneration = gen
			}
		}

		// 淘汰最差的个体，把冠军放在最前面
		next = slices.Insert(next[:len(next)-1], 0, champion)
		pop = next

		if s.observe != nil {
			s.observe(gen, pop, champion)
		}
	}

	return &Result{
		Champion:    champion.Clone(),
		Generation:  championGeneration,
		Generations: s.parameters.GenerationsCount,
		Restarts:    restarts,
	}, nil
}

package solver

import (
	"fmt"
	"io"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

// Explain 把冠军个体还原为每种产品的数量以及资源剩余量
func (k *Knapsack) Explain(res *Result, knownBest int64) *domain.SolveResult {
	champion := res.Champion

	// 汇总每种产品的数量，基因编号按产品连续排列
	quantities := make(map[string]uint32, len(k.productIDs))
	for i, g := range k.genes {
		if champion.genotype[i] {
			quantities[g.ProductID] += 1 << g.Power
		}
	}

	sr := &domain.SolveResult{
		Fitness:     champion.fitness,
		Generation:  res.Generation,
		Generations: res.Generations,
		Restarts:    res.Restarts,
		KnownBest:   knownBest,
		Products:    make([]domain.SolveResultProduct, 0, len(k.productIDs)),
		Remains:     make([]domain.SolveResultRemain, 0, len(k.resourceIDs)),
	}
	if knownBest > 0 {
		sr.Percentage = 100 * float64(champion.fitness) / float64(knownBest)
	}

	for _, id := range k.productIDs {
		product := k.problem.Products[id]
		qty := quantities[id]
		sr.Products = append(sr.Products, domain.SolveResultProduct{
			ProductID:    id,
			Value:        product.Value,
			Quantity:     qty,
			Contribution: int64(qty) * int64(product.Value),
			Max:          product.Max,
			MaxValue:     int64(product.Max) * int64(product.Value),
		})
	}

	remains := k.Remains(champion)
	for i, id := range k.resourceIDs {
		sr.Remains = append(sr.Remains, domain.SolveResultRemain{
			ResourceID: id,
			Title:      k.problem.Resources[id].Title,
			Amount:     remains[i],
		})
	}

	return sr
}

// Solution 返回填充了 Solution 字段的产品副本，问题本身不会被修改
func (k *Knapsack) Solution(sr *domain.SolveResult) []domain.Product {
	out := make([]domain.Product, 0, len(sr.Products))
	for _, p := range sr.Products {
		product := *k.problem.Products[p.ProductID]
		product.Solution = p.Quantity
		out = append(out, product)
	}
	return out
}

func WriteProgress(w io.Writer, p Progress) error {
	_, err := fmt.Fprintf(w, "Gen #%d, fitness:%d (ranging %d..%d) - current champion: %d\n",
		p.Generation, p.TotalFitness, p.BestFitness, p.WorstFitness, p.ChampionFitness)
	return err
}

// WriteReport 输出最终报告
func (k *Knapsack) WriteReport(w io.Writer, sr *domain.SolveResult) error {
	if _, err := fmt.Fprintf(w, "\n-------\nFound %d$ worth solution at gen %d", sr.Fitness, sr.Generation); err != nil {
		return err
	}
	if sr.KnownBest > 0 {
		if _, err := fmt.Fprintf(w, ", performing %.2f%%", sr.Percentage); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(w, "\n\nSolution\n-------\n"); err != nil {
		return err
	}
	for _, product := range k.Solution(sr) {
		_, err := fmt.Fprintf(w, "%s : %d (%d$) on %d (%d$)\n",
			product, product.Solution, int64(product.Solution)*int64(product.Value),
			product.Max, int64(product.Max)*int64(product.Value))
		if err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(w, "\nRemains\n-------\n"); err != nil {
		return err
	}
	for _, r := range sr.Remains {
		if _, err := fmt.Fprintf(w, "%s: %s (qty: %d)\n", r.ResourceID, r.Title, r.Amount); err != nil {
			return err
		}
	}

	return nil
}

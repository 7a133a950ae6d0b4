package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

func (r *Repository) InsertSolveResult(sr *domain.SolveResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO solve_results (problem_id, job_id, fitness, generation, generations, restarts, known_best, percentage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	params := []any{
		sr.ProblemID,
		sr.JobID,
		sr.Fitness,
		sr.Generation,
		sr.Generations,
		sr.Restarts,
		sr.KnownBest,
		sr.Percentage,
	}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&sr.ID, &sr.CreatedAt); err != nil {
		return err
	}

	for _, product := range sr.Products {
		query = `
			INSERT INTO solve_result_products (solve_result_id, product_key, value, quantity, max)
			VALUES ($1, $2, $3, $4, $5)
		`
		params := []any{sr.ID, product.ProductID, int64(product.Value), int64(product.Quantity), int64(product.Max)}
		if _, err := tx.ExecContext(ctx, query, params...); err != nil {
			return err
		}
	}

	for _, remain := range sr.Remains {
		query = `
			INSERT INTO solve_result_remains (solve_result_id, resource_key, title, amount)
			VALUES ($1, $2, $3, $4)
		`
		params := []any{sr.ID, remain.ResourceID, remain.Title, remain.Amount}
		if _, err := tx.ExecContext(ctx, query, params...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// GetSolveResultsByProblemID 返回某个问题的所有求解结果，最新的在前
func (r *Repository) GetSolveResultsByProblemID(problemID int64) ([]*domain.SolveResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, job_id, fitness, generation, generations, restarts, known_best, percentage, created_at
		FROM solve_results
		WHERE problem_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query, problemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*domain.SolveResult, 0)
	for rows.Next() {
		sr := &domain.SolveResult{
			ProblemID: problemID,
			Products:  make([]domain.SolveResultProduct, 0),
			Remains:   make([]domain.SolveResultRemain, 0),
		}

		dst := []any{
			&sr.ID,
			&sr.JobID,
			&sr.Fitness,
			&sr.Generation,
			&sr.Generations,
			&sr.Restarts,
			&sr.KnownBest,
			&sr.Percentage,
			&sr.CreatedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		results = append(results, sr)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, sr := range results {
		if err := r.loadSolveResultDetails(ctx, sr); err != nil {
			return nil, err
		}
	}

	return results, nil
}

func (r *Repository) loadSolveResultDetails(ctx context.Context, sr *domain.SolveResult) error {
	query := `
		SELECT product_key, value, quantity, max
		FROM solve_result_products
		WHERE solve_result_id = $1
		ORDER BY product_key
	`

	rows, err := r.dbpool.QueryContext(ctx, query, sr.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row struct {
			ProductKey string
			Value      int64
			Quantity   int64
			Max        int64
		}
		if err := rows.Scan(&row.ProductKey, &row.Value, &row.Quantity, &row.Max); err != nil {
			return err
		}

		sr.Products = append(sr.Products, domain.SolveResultProduct{
			ProductID:    row.ProductKey,
			Value:        uint32(row.Value),
			Quantity:     uint32(row.Quantity),
			Contribution: row.Quantity * row.Value,
			Max:          uint32(row.Max),
			MaxValue:     row.Max * row.Value,
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	query = `
		SELECT resource_key, title, amount
		FROM solve_result_remains
		WHERE solve_result_id = $1
		ORDER BY resource_key
	`

	remainRows, err := r.dbpool.QueryContext(ctx, query, sr.ID)
	if err != nil {
		return err
	}
	defer remainRows.Close()

	for remainRows.Next() {
		var remain domain.SolveResultRemain
		if err := remainRows.Scan(&remain.ResourceID, &remain.Title, &remain.Amount); err != nil {
			return err
		}
		sr.Remains = append(sr.Remains, remain)
	}

	return remainRows.Err()
}

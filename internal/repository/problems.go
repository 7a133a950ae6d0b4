package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

func (r *Repository) CreateProblem(p *domain.Problem) error {
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
		INSERT INTO problems (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, p.Name, p.Description).Scan(&p.ID, &p.CreatedAt, &p.Version); err != nil {
		return err
	}

	for _, resource := range p.Resources {
		query = `
			INSERT INTO problem_resources (problem_id, resource_key, title, amount)
			VALUES ($1, $2, $3, $4)
		`
		params := []any{p.ID, resource.ID, resource.Title, resource.Amount}
		if _, err := tx.ExecContext(ctx, query, params...); err != nil {
			return err
		}
	}

	for _, product := range p.Products {
		query = `
			INSERT INTO problem_products (problem_id, product_key, value)
			VALUES ($1, $2, $3)
			RETURNING id
		`
		var productRowID int64
		if err := tx.QueryRowContext(ctx, query, p.ID, product.ID, int64(product.Value)).Scan(&productRowID); err != nil {
			return err
		}

		for i, req := range product.Requirements {
			query = `
				INSERT INTO problem_product_requirements (problem_product_id, position, resource_key, amount)
				VALUES ($1, $2, $3, $4)
			`
			params := []any{productRowID, i, req.ResourceID, int64(req.Amount)}
			if _, err := tx.ExecContext(ctx, query, params...); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// GetAllProblems 只返回问题的元信息，不包含资源和产品
func (r *Repository) GetAllProblems() ([]*domain.Problem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, name, description, created_at, version
		FROM problems
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	problems := make([]*domain.Problem, 0)
	for rows.Next() {
		p := domain.NewProblem()

		dst := []any{
			&p.ID,
			&p.Name,
			&p.Description,
			&p.CreatedAt,
			&p.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		problems = append(problems, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return problems, nil
}

func (r *Repository) GetProblemByID(id int64) (*domain.Problem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	p := domain.NewProblem()
	p.ID = id

	query := `
		SELECT name, description, created_at, version
		FROM problems
		WHERE id = $1
	`
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&p.Name, &p.Description, &p.CreatedAt, &p.Version); err != nil {
		return nil, err
	}

	if err := r.loadResources(ctx, p); err != nil {
		return nil, err
	}
	if err := r.loadProducts(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *Repository) loadResources(ctx context.Context, p *domain.Problem) error {
	query := `
		SELECT resource_key, title, amount
		FROM problem_resources
		WHERE problem_id = $1
	`

	rows, err := r.dbpool.QueryContext(ctx, query, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		resource := &domain.Resource{}
		if err := rows.Scan(&resource.ID, &resource.Title, &resource.Amount); err != nil {
			return err
		}
		p.Resources[resource.ID] = resource
	}

	return rows.Err()
}

func (r *Repository) loadProducts(ctx context.Context, p *domain.Problem) error {
	query := `
		SELECT
			pp.product_key,
			pp.value,
			ppr.resource_key,
			ppr.amount
		FROM problem_products pp
		LEFT JOIN problem_product_requirements ppr ON pp.id = ppr.problem_product_id
		WHERE pp.problem_id = $1
		ORDER BY pp.id, ppr.position
	`

	rows, err := r.dbpool.QueryContext(ctx, query, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row struct {
			ProductKey string
			Value      int64

			ResourceKey sql.NullString
			Amount      sql.NullInt64
		}

		dst := []any{
			&row.ProductKey,
			&row.Value,
			&row.ResourceKey,
			&row.Amount,
		}
		if err := rows.Scan(dst...); err != nil {
			return err
		}

		product, exists := p.Products[row.ProductKey]
		if !exists {
			// 第一次查到这个产品
			product = &domain.Product{
				ID:           row.ProductKey,
				Value:        uint32(row.Value),
				Requirements: make([]domain.Requirement, 0),
			}
			p.Products[row.ProductKey] = product
		}

		if !row.ResourceKey.Valid {
			// 该产品没有任何资源需求
			continue
		}

		product.Requirements = append(product.Requirements, domain.Requirement{
			ResourceID: row.ResourceKey.String,
			Amount:     uint32(row.Amount.Int64),
		})
	}

	return rows.Err()
}

func (r *Repository) DeleteProblem(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM problems WHERE id = $1
	`

	result, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

package weights

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/cohesion/internal/contracts"
	"github.com/wonny/cohesion/pkg/database"
)

// Repository role_pair_weights 저장소
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Replace validates entries, expands them to both orderings and replaces
// the rows of every side they mention in one transaction
func (r *Repository) Replace(ctx context.Context, entries []contracts.RolePairWeight) (int, error) {
	if err := Validate(entries); err != nil {
		return 0, err
	}

	expanded := Expand(entries)
	sides := make(map[contracts.Side]struct{})
	for _, e := range entries {
		sides[e.Side] = struct{}{}
	}

	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for side := range sides {
			if _, err := tx.Exec(ctx, `DELETE FROM role_pair_weights WHERE side = $1`, string(side)); err != nil {
				return fmt.Errorf("clear %s weights: %w", side, err)
			}
		}

		batch := &pgx.Batch{}
		for _, e := range expanded {
			batch.Queue(`INSERT INTO role_pair_weights (side, role_a, role_b, weight) VALUES ($1, $2, $3, $4)`,
				string(e.Side), e.RoleA, e.RoleB, e.Weight)
		}

		br := tx.SendBatch(ctx, batch)
		for range expanded {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert weight: %w", err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return 0, err
	}

	return len(expanded), nil
}

// BySide returns the lookup table for one side
func (r *Repository) BySide(ctx context.Context, side contracts.Side) (Table, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role_a, role_b, weight::float8 FROM role_pair_weights WHERE side = $1`, string(side))
	if err != nil {
		return nil, fmt.Errorf("query %s weights: %w", side, err)
	}
	defer rows.Close()

	t := make(Table)
	for rows.Next() {
		var p Pair
		var w float64
		if err := rows.Scan(&p.A, &p.B, &w); err != nil {
			return nil, fmt.Errorf("scan weight: %w", err)
		}
		t[p] = w
	}
	return t, rows.Err()
}

// Count returns the number of stored rows per side
func (r *Repository) Count(ctx context.Context) (map[contracts.Side]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT side, COUNT(*) FROM role_pair_weights GROUP BY side`)
	if err != nil {
		return nil, fmt.Errorf("count weights: %w", err)
	}
	defer rows.Close()

	out := make(map[contracts.Side]int)
	for rows.Next() {
		var side string
		var n int
		if err := rows.Scan(&side, &n); err != nil {
			return nil, err
		}
		out[contracts.Side(side)] = n
	}
	return out, rows.Err()
}

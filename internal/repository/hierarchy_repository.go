package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type hierarchyRepository struct {
	pool *pgxpool.Pool
}

// NewHierarchyRepository returns a Postgres-backed implementation. The
// single-parent invariant is backed by a UNIQUE constraint on child_id.
func NewHierarchyRepository(pool *pgxpool.Pool) HierarchyRepository {
	return &hierarchyRepository{pool: pool}
}

func (r *hierarchyRepository) CreateEdge(ctx context.Context, parentID, childID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO org_structure (parent_id, child_id) VALUES ($1, $2)`,
		parentID, childID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateChild
		}
		return err
	}
	return nil
}

func (r *hierarchyRepository) HasParent(ctx context.Context, childID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM org_structure WHERE child_id=$1)`,
		childID,
	).Scan(&exists)
	return exists, err
}

func (r *hierarchyRepository) ListChildren(ctx context.Context, parentID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT child_id FROM org_structure WHERE parent_id=$1 ORDER BY created_at`,
		parentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	children := []string{}
	for rows.Next() {
		var childID string
		if err := rows.Scan(&childID); err != nil {
			return nil, err
		}
		children = append(children, childID)
	}
	return children, rows.Err()
}

func (r *hierarchyRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM org_structure WHERE parent_id=$1 OR child_id=$1`,
		userID,
	)
	return err
}

package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/voting-identity/internal/domain"
)

const uniqueViolation = "23505"

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User, roleIDs []int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO users (name, dni, email, password_hash, is_first_login, address, city, country, can_vote)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at`

	if err := tx.QueryRow(ctx, query,
		user.Name,
		user.DNI,
		user.Email,
		user.PasswordHash,
		user.IsFirstLogin,
		user.Address,
		user.City,
		user.Country,
		user.CanVote,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return mapUserConstraint(err)
	}

	if err := replaceRoleLinks(ctx, tx, user.ID, roleIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User, roleIDs []int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE users
        SET name=$1, dni=$2, email=$3, password_hash=$4, is_first_login=$5,
            address=$6, city=$7, country=$8, can_vote=$9, updated_at=NOW()
        WHERE id=$10`

	cmd, err := tx.Exec(ctx, query,
		user.Name,
		user.DNI,
		user.Email,
		user.PasswordHash,
		user.IsFirstLogin,
		user.Address,
		user.City,
		user.Country,
		user.CanVote,
		user.ID,
	)
	if err != nil {
		return mapUserConstraint(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	if roleIDs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id=$1`, user.ID); err != nil {
			return err
		}
		if err := replaceRoleLinks(ctx, tx, user.ID, roleIDs); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE email=$1`, email)
}

func (r *userRepository) GetByDNI(ctx context.Context, dni int64) (*domain.User, error) {
	return r.getOne(ctx, `WHERE dni=$1`, dni)
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, ``)
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	return r.list(ctx, `WHERE id = ANY($1::uuid[])`, ids)
}

const userColumns = `id, name, dni, email, password_hash, is_first_login, address, city, country, can_vote, created_at, updated_at`

func (r *userRepository) getOne(ctx context.Context, where string, args ...any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ` + where

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Name,
		&user.DNI,
		&user.Email,
		&user.PasswordHash,
		&user.IsFirstLogin,
		&user.Address,
		&user.City,
		&user.Country,
		&user.CanVote,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	roles, err := r.rolesFor(ctx, []string{user.ID})
	if err != nil {
		return nil, err
	}
	user.Roles = roles[user.ID]
	return &user, nil
}

func (r *userRepository) list(ctx context.Context, where string, args ...any) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ` + where + ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	ids := []string{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.DNI,
			&user.Email,
			&user.PasswordHash,
			&user.IsFirstLogin,
			&user.Address,
			&user.City,
			&user.Country,
			&user.CanVote,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
		ids = append(ids, user.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	roles, err := r.rolesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Roles = roles[users[i].ID]
	}
	return users, nil
}

func (r *userRepository) rolesFor(ctx context.Context, userIDs []string) (map[string][]domain.Role, error) {
	result := make(map[string][]domain.Role, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	const query = `
        SELECT ur.user_id, ro.id, ro.name
        FROM user_roles ur
        JOIN roles ro ON ro.id = ur.role_id
        WHERE ur.user_id = ANY($1::uuid[])
        ORDER BY ro.id`

	rows, err := r.pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		var role domain.Role
		if err := rows.Scan(&userID, &role.ID, &role.Name); err != nil {
			return nil, err
		}
		result[userID] = append(result[userID], role)
	}
	return result, rows.Err()
}

func replaceRoleLinks(ctx context.Context, tx pgx.Tx, userID string, roleIDs []int) error {
	for _, roleID := range roleIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, roleID,
		); err != nil {
			return err
		}
	}
	return nil
}

func mapUserConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return ErrDuplicateEmail
		case strings.Contains(pgErr.ConstraintName, "dni"):
			return ErrDuplicateDNI
		}
	}
	return err
}

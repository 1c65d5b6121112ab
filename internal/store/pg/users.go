package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/authcore/internal/domain"
	"github.com/dropDatabas3/authcore/internal/store"
)

type userRepo struct{ pool *pgxpool.Pool }

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	const query = `
		INSERT INTO app_user (id, email, password_hash, name, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.Name, rolesToStrings(u.Roles),
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return mapErr("create user", err)
}

func (r *userRepo) FindByIdentifier(ctx context.Context, idOrEmail string) (*domain.User, error) {
	// A single disjunctive query keeps "either key form resolves the same
	// user" atomic. id is compared as text so a non-UUID input cannot error.
	const query = `
		SELECT id, email, password_hash, name, roles, created_at, updated_at
		FROM app_user
		WHERE email = $1 OR id::text = $1
		LIMIT 1
	`
	u, err := scanUser(r.pool.QueryRow(ctx, query, idOrEmail))
	if err != nil {
		return nil, mapErr("find user", err)
	}
	return u, nil
}

func (r *userRepo) List(ctx context.Context) ([]domain.User, error) {
	const query = `
		SELECT id, email, password_hash, name, roles, created_at, updated_at
		FROM app_user ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, mapErr("list users", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapErr("list users", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	const query = `
		UPDATE app_user
		SET email = $2, password_hash = $3, name = $4, roles = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.Name, rolesToStrings(u.Roles),
	).Scan(&u.UpdatedAt)
	return mapErr("update user", err)
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	// refresh_token rows go with the user via ON DELETE CASCADE.
	const query = `DELETE FROM app_user WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return mapErr("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// rowScanner covers pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var roles []string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &roles, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Roles = rolesFromStrings(roles)
	return &u, nil
}

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func rolesFromStrings(raw []string) []domain.Role {
	out := make([]domain.Role, 0, len(raw))
	for _, s := range raw {
		r := domain.Role(s)
		if r.Valid() {
			out = append(out, r)
		}
	}
	return out
}

package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/authcore/internal/domain"
)

type tokenRepo struct{ pool *pgxpool.Pool }

func (r *tokenRepo) Replace(ctx context.Context, t *domain.RefreshToken) error {
	// The unique (user_id, device_key) index turns a second login from the
	// same device into an in-place replacement of the existing row.
	const query = `
		INSERT INTO refresh_token (token, user_id, device_key, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, device_key)
		DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at
	`
	_, err := r.pool.Exec(ctx, query, t.Token, t.UserID, t.DeviceKey, t.ExpiresAt)
	return mapErr("replace refresh token", err)
}

func (r *tokenRepo) Consume(ctx context.Context, token string) (*domain.RefreshToken, error) {
	// Delete-returning makes lookup+revoke atomic: of N concurrent calls
	// with the same value exactly one gets the row back.
	const query = `
		DELETE FROM refresh_token WHERE token = $1
		RETURNING token, user_id, device_key, expires_at
	`
	var t domain.RefreshToken
	err := r.pool.QueryRow(ctx, query, token).Scan(&t.Token, &t.UserID, &t.DeviceKey, &t.ExpiresAt)
	if err != nil {
		return nil, mapErr("consume refresh token", err)
	}
	return &t, nil
}

func (r *tokenRepo) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM refresh_token WHERE token = $1`
	_, err := r.pool.Exec(ctx, query, token)
	return mapErr("delete refresh token", err)
}

func (r *tokenRepo) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM refresh_token WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return mapErr("delete user refresh tokens", err)
}

func (r *tokenRepo) Get(ctx context.Context, token string) (*domain.RefreshToken, error) {
	const query = `
		SELECT token, user_id, device_key, expires_at
		FROM refresh_token WHERE token = $1
	`
	var t domain.RefreshToken
	err := r.pool.QueryRow(ctx, query, token).Scan(&t.Token, &t.UserID, &t.DeviceKey, &t.ExpiresAt)
	if err != nil {
		return nil, mapErr("get refresh token", err)
	}
	return &t, nil
}

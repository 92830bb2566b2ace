package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lucienvx/sesame/core"
)

func (a *Adapter) CreateToken(ctx context.Context, t *core.MagicLinkToken) error {
	query := `INSERT INTO magic_link_token (id, user_id, email, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := a.pool.Exec(ctx, query, t.ID, t.UserID, t.Email, t.ExpiresAt, t.CreatedAt)
	return err
}

func (a *Adapter) GetToken(ctx context.Context, id string) (*core.MagicLinkToken, error) {
	q := `SELECT id, user_id, email, expires_at, created_at FROM magic_link_token WHERE id = $1`

	t := &core.MagicLinkToken{}
	err := a.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.UserID, &t.Email, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrTokenNotFound
		}
		return nil, err
	}
	return t, nil
}

func (a *Adapter) GetLatestUserToken(ctx context.Context, userID string) (*core.MagicLinkToken, error) {
	q := `SELECT id, user_id, email, expires_at, created_at FROM magic_link_token WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`

	t := &core.MagicLinkToken{}
	err := a.pool.QueryRow(ctx, q, userID).Scan(&t.ID, &t.UserID, &t.Email, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrTokenNotFound
		}
		return nil, err
	}
	return t, nil
}

func (a *Adapter) DeleteToken(ctx context.Context, id string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM magic_link_token WHERE id = $1`, id)
	return err
}

func (a *Adapter) DeleteUserTokens(ctx context.Context, userID string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM magic_link_token WHERE user_id = $1`, userID)
	return err
}

func (a *Adapter) DeleteExpiredTokens(ctx context.Context, now int64) (int, error) {
	tag, err := a.pool.Exec(ctx, `DELETE FROM magic_link_token WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lucienvx/sesame/core"
)

func (a *Adapter) CreateUser(ctx context.Context, user *core.User) error {
	query := `INSERT INTO auth_user (id, email, email_verified) VALUES ($1, $2, $3)`

	_, err := a.pool.Exec(ctx, query, user.ID, user.Email, user.EmailVerified)
	return err
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	q := `SELECT id, email, email_verified FROM auth_user WHERE id = $1`

	user := &core.User{}
	err := a.pool.QueryRow(ctx, q, id).Scan(&user.ID, &user.Email, &user.EmailVerified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	q := `SELECT id, email, email_verified FROM auth_user WHERE email = $1`

	user := &core.User{}
	err := a.pool.QueryRow(ctx, q, email).Scan(&user.ID, &user.Email, &user.EmailVerified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (a *Adapter) MarkEmailVerified(ctx context.Context, userID string) error {
	q := `UPDATE auth_user SET email_verified = TRUE WHERE id = $1`

	tag, err := a.pool.Exec(ctx, q, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

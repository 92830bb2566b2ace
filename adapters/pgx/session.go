package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lucienvx/sesame/core"
)

func (a *Adapter) CreateSession(ctx context.Context, session *core.Session) error {
	query := `INSERT INTO auth_session (id, user_id, expires_at) VALUES ($1, $2, $3)`

	_, err := a.pool.Exec(ctx, query, session.ID, session.UserID, session.ExpiresAt)
	return err
}

func (a *Adapter) GetSessionWithUser(ctx context.Context, id string) (*core.Session, *core.User, error) {
	q := `SELECT s.id, s.user_id, s.expires_at, u.id, u.email, u.email_verified
	      FROM auth_session s
	      INNER JOIN auth_user u ON u.id = s.user_id
	      WHERE s.id = $1`

	session := &core.Session{}
	user := &core.User{}
	err := a.pool.QueryRow(ctx, q, id).Scan(
		&session.ID, &session.UserID, &session.ExpiresAt,
		&user.ID, &user.Email, &user.EmailVerified,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, core.ErrSessionNotFound
		}
		return nil, nil, err
	}
	return session, user, nil
}

func (a *Adapter) UpdateSessionExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	q := `UPDATE auth_session SET expires_at = $1 WHERE id = $2`

	tag, err := a.pool.Exec(ctx, q, expiresAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}

func (a *Adapter) DeleteSession(ctx context.Context, id string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM auth_session WHERE id = $1`, id)
	return err
}

func (a *Adapter) DeleteUserSessions(ctx context.Context, userID string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM auth_session WHERE user_id = $1`, userID)
	return err
}

package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucienvx/sesame/pkg/token"
)

func newTestMagicLinkManager(storage TokenStorage) *MagicLinkManager {
	return NewMagicLinkManager(DefaultMagicLinkConfig(), storage)
}

// Requirement: issuing twice leaves exactly one token row for the user; the
// second issuance deletes the first.
func TestMagicLinkManager_Issue_OneLiveTokenPerUser(t *testing.T) {
	ctx := context.Background()
	storage := NewFakeAuthStorage()
	manager := newTestMagicLinkManager(storage)

	first, err := manager.Issue(ctx, "user1", "a@x.com")
	require.NoError(t, err)
	second, err := manager.Issue(ctx, "user1", "a@x.com")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 1, storage.TokenCount("user1"))

	// The replaced link is dead
	_, err = manager.Redeem(ctx, first)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// Issuing for another user leaves user1's token alone
	_, err = manager.Issue(ctx, "user2", "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, storage.TokenCount("user1"))
	assert.Equal(t, 1, storage.TokenCount("user2"))
}

func TestMagicLinkManager_Issue_RowShape(t *testing.T) {
	ctx := context.Background()
	storage := NewFakeAuthStorage()
	manager := newTestMagicLinkManager(storage)

	issuedAt := time.Unix(1_700_000_000, 0)
	manager.now = func() time.Time { return issuedAt }

	raw, err := manager.Issue(ctx, "user1", "a@x.com")
	require.NoError(t, err)

	row, err := storage.GetToken(ctx, token.Hash(raw))
	require.NoError(t, err)
	assert.Equal(t, "user1", row.UserID)
	assert.Equal(t, "a@x.com", row.Email)
	assert.Equal(t, issuedAt.Unix(), row.CreatedAt)
	assert.Equal(t, issuedAt.Unix()+900, row.ExpiresAt)

	// Only the hash is persisted
	_, err = storage.GetToken(ctx, raw)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

// Requirement: redeem is single-use. A second redemption of the same raw
// token always reports invalid.
func TestMagicLinkManager_Redeem_SingleUse(t *testing.T) {
	ctx := context.Background()
	storage := NewFakeAuthStorage()
	manager := newTestMagicLinkManager(storage)

	raw, err := manager.Issue(ctx, "user1", "a@x.com")
	require.NoError(t, err)

	redeemed, err := manager.Redeem(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "user1", redeemed.UserID)
	assert.Equal(t, "a@x.com", redeemed.Email)

	_, err = manager.Redeem(ctx, raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.Equal(t, 0, storage.TokenCount("user1"))
}

// Requirement: a token past its TTL reports invalid and leaves no row behind.
func TestMagicLinkManager_Redeem_Expired(t *testing.T) {
	issuedAt := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name    string
		elapsed time.Duration
		wantErr error
	}{
		{name: "one second before expiry", elapsed: 899 * time.Second, wantErr: nil},
		{name: "exactly at expiry", elapsed: 900 * time.Second, wantErr: ErrTokenInvalid},
		{name: "long after expiry", elapsed: 24 * time.Hour, wantErr: ErrTokenInvalid},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctx := context.Background()
			storage := NewFakeAuthStorage()
			manager := newTestMagicLinkManager(storage)
			manager.now = func() time.Time { return issuedAt }

			raw, err := manager.Issue(ctx, "user1", "a@x.com")
			require.NoError(t, err)

			manager.now = func() time.Time { return issuedAt.Add(test.elapsed) }
			_, err = manager.Redeem(ctx, raw)
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
			} else {
				assert.NoError(t, err)
			}
			// consumed either way
			assert.Equal(t, 0, storage.TokenCount("user1"))
		})
	}
}

func TestMagicLinkManager_Redeem_UnknownOrEmpty(t *testing.T) {
	ctx := context.Background()
	manager := newTestMagicLinkManager(NewFakeAuthStorage())

	_, err := manager.Redeem(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = manager.Redeem(ctx, "")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

// Requirement: true iff now < createdAt+window; the boundary itself is not
// rate limited.
func TestMagicLinkManager_ShouldRateLimit(t *testing.T) {
	issuedAt := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name    string
		elapsed time.Duration
		issued  bool
		want    bool
	}{
		{name: "no token ever issued", issued: false, want: false},
		{name: "immediately after issue", issued: true, elapsed: 0, want: true},
		{name: "mid window", issued: true, elapsed: 15 * time.Second, want: true},
		{name: "one second before boundary", issued: true, elapsed: 29 * time.Second, want: true},
		{name: "exactly at boundary", issued: true, elapsed: 30 * time.Second, want: false},
		{name: "after window", issued: true, elapsed: 45 * time.Second, want: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctx := context.Background()
			storage := NewFakeAuthStorage()
			manager := newTestMagicLinkManager(storage)
			manager.now = func() time.Time { return issuedAt }

			if test.issued {
				_, err := manager.Issue(ctx, "user1", "a@x.com")
				require.NoError(t, err)
			}

			manager.now = func() time.Time { return issuedAt.Add(test.elapsed) }
			limited, err := manager.ShouldRateLimit(ctx, "user1")
			require.NoError(t, err)
			assert.Equal(t, test.want, limited)
		})
	}
}

func TestMagicLinkManager_CleanupExpired(t *testing.T) {
	ctx := context.Background()
	storage := NewFakeAuthStorage()
	manager := newTestMagicLinkManager(storage)

	issuedAt := time.Unix(1_700_000_000, 0)
	manager.now = func() time.Time { return issuedAt }
	_, err := manager.Issue(ctx, "user1", "a@x.com")
	require.NoError(t, err)
	_, err = manager.Issue(ctx, "user2", "b@x.com")
	require.NoError(t, err)

	// Nothing expired yet
	count, err := manager.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	manager.now = func() time.Time { return issuedAt.Add(time.Hour) }
	count, err = manager.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 0, storage.TokenCount("user1"))
}

func TestMagicLinkManager_StorageFailures(t *testing.T) {
	ctx := context.Background()
	storage := NewFakeAuthStorage()
	manager := newTestMagicLinkManager(storage)

	storage.createErr = errors.New("insert failed")
	_, err := manager.Issue(ctx, "user1", "a@x.com")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenInvalid)

	storage.createErr = nil
	storage.getErr = errors.New("select failed")
	_, err = manager.ShouldRateLimit(ctx, "user1")
	assert.Error(t, err)
}

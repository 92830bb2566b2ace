package pgx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sql.Open is lazy, so these run without a reachable database.

func TestRunMigrations_AppliesEmbeddedDir(t *testing.T) {
	called := false
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		called = true
		assert.Equal(t, ".", dir)
		assert.NotNil(t, db)
		return nil
	}
	defer func() { gooseUpContext = orig }()

	err := RunMigrations(context.Background(), "postgres://localhost:5432/sesame")
	require.NoError(t, err)
	assert.True(t, called)
}

func TestRunMigrations_PropagatesFailure(t *testing.T) {
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("migration boom")
	}
	defer func() { gooseUpContext = orig }()

	err := RunMigrations(context.Background(), "postgres://localhost:5432/sesame")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration boom")
}

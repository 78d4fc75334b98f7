package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duncan19760605/GenAI-Kid/internal/config"
	"github.com/duncan19760605/GenAI-Kid/internal/domain"
	"github.com/duncan19760605/GenAI-Kid/internal/storage"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.NewSQLite(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.RunMigrations(context.Background(), db))
	return db
}

func seedUser(t *testing.T, db *sql.DB) domain.User {
	t.Helper()
	user, err := NewUserRepository(db).Create(context.Background(), domain.User{
		Email:        "parent@example.com",
		PasswordHash: "x",
		Name:         "Parent",
	})
	require.NoError(t, err)
	return user
}

func seedChild(t *testing.T, db *sql.DB, userID string) domain.Child {
	return seedChildNamed(t, db, userID, "Mei", "123456")
}

func seedChildNamed(t *testing.T, db *sql.DB, userID, name, code string) domain.Child {
	t.Helper()
	child, err := NewChildRepository(db).Create(context.Background(), domain.Child{
		UserID:            userID,
		Name:              name,
		Age:               5,
		PrimaryLanguage:   "zh",
		LearningLanguages: []string{"en"},
		CharacterID:       "bear",
		LoginCode:         code,
	})
	require.NoError(t, err)
	return child
}

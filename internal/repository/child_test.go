package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildOwnership(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	child := seedChild(t, db, user.ID)
	repo := NewChildRepository(db)
	ctx := context.Background()

	got, err := repo.GetOwned(ctx, child.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, child.ID, got.ID)
	assert.Equal(t, []string{"en"}, got.LearningLanguages)

	_, err = repo.GetOwned(ctx, child.ID, "someone-else")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestChildGetByLoginCode(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	child := seedChild(t, db, user.ID)
	repo := NewChildRepository(db)
	ctx := context.Background()

	got, err := repo.GetByLoginCode(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, child.ID, got.ID)

	_, err = repo.GetByLoginCode(ctx, "000000")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestChildUpdate(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	child := seedChild(t, db, user.ID)
	repo := NewChildRepository(db)
	ctx := context.Background()

	child.Name = "Mei-Mei"
	child.Age = 6
	child.LearningLanguages = []string{"en", "es"}
	updated, err := repo.Update(ctx, child)
	require.NoError(t, err)
	assert.Equal(t, "Mei-Mei", updated.Name)

	got, err := repo.Get(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Age)
	assert.Equal(t, []string{"en", "es"}, got.LearningLanguages)

	// Login codes never change on update.
	assert.Equal(t, "123456", got.LoginCode)

	child.UserID = "someone-else"
	_, err = repo.Update(ctx, child)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duncan19760605/GenAI-Kid/internal/domain"
)

func TestAppendTurn(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	child := seedChild(t, db, user.ID)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	conv, err := repo.Create(ctx, child.ID, "zh")
	require.NoError(t, err)

	duration := 1500
	err = repo.AppendTurn(ctx, conv.ID,
		domain.Message{
			Role:            domain.RoleChild,
			Content:         "為什麼天空是藍色的",
			Language:        "zh",
			Emotion:         "curious",
			AudioDurationMS: &duration,
			CostUSD:         0.0002,
		},
		domain.Message{
			Role:       domain.RoleCharacter,
			Content:    "因為陽光裡有很多顏色喔",
			Language:   "zh",
			Emotion:    "curious",
			TokensUsed: 120,
			CostUSD:    0.003,
		},
	)
	require.NoError(t, err)

	messages, err := repo.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, domain.RoleChild, messages[0].Role)
	require.NotNil(t, messages[0].AudioDurationMS)
	assert.Equal(t, 1500, *messages[0].AudioDurationMS)
	assert.Equal(t, domain.RoleCharacter, messages[1].Role)
	assert.Equal(t, 120, messages[1].TokensUsed)

	got, err := repo.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 120, got.TotalTokens)
	assert.InDelta(t, 0.003, got.EstimatedCostUSD, 1e-9)
}

func TestAppendTurnRollsBackOnInvalidRole(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	child := seedChild(t, db, user.ID)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	conv, err := repo.Create(ctx, child.ID, "en")
	require.NoError(t, err)

	// The second insert violates the role check, so the first must not land.
	err = repo.AppendTurn(ctx, conv.ID,
		domain.Message{Role: domain.RoleChild, Content: "hello"},
		domain.Message{Role: "narrator", Content: "oops"},
	)
	require.Error(t, err)

	messages, err := repo.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	got, err := repo.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Zero(t, got.TotalTokens)
}

func TestSetEndedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	child := seedChild(t, db, user.ID)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	conv, err := repo.Create(ctx, child.ID, "en")
	require.NoError(t, err)

	first := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetEnded(ctx, conv.ID, first))
	require.NoError(t, repo.SetEnded(ctx, conv.ID, first.Add(time.Hour)))

	got, err := repo.Get(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EndedAt)
	assert.True(t, got.EndedAt.Equal(first))
}

func TestListByUser(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	child := seedChild(t, db, user.ID)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	other, err := NewUserRepository(db).Create(ctx, domain.User{Email: "other@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	otherChild := seedChildNamed(t, db, other.ID, "Leo", "654321")

	mine, err := repo.Create(ctx, child.ID, "zh")
	require.NoError(t, err)
	_, err = repo.Create(ctx, otherChild.ID, "en")
	require.NoError(t, err)

	conversations, err := repo.ListByUser(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, mine.ID, conversations[0].ID)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duncan19760605/GenAI-Kid/internal/repository"
)

func newAuthFixture(t *testing.T) (*AuthService, *ChildService) {
	t.Helper()
	db := newTestDB(t)
	childRepo := repository.NewChildRepository(db)
	auth := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewUserSessionRepository(db),
		childRepo,
	)
	return auth, NewChildService(childRepo)
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _ := newAuthFixture(t)
	ctx := context.Background()

	user, session, err := auth.Register(ctx, "parent@example.com", "hunter2hunter2", "Parent")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)

	_, _, err = auth.Register(ctx, "parent@example.com", "hunter2hunter2", "Parent")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, loginSession, err := auth.Login(ctx, "parent@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, loginSession.Token)

	_, _, err = auth.Login(ctx, "parent@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = auth.Login(ctx, "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyAndLogout(t *testing.T) {
	auth, _ := newAuthFixture(t)
	ctx := context.Background()

	user, session, err := auth.Register(ctx, "parent@example.com", "hunter2hunter2", "Parent")
	require.NoError(t, err)

	verified, err := auth.Verify(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)

	_, err = auth.Verify(ctx, "bogus-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, auth.Logout(ctx, session.Token))
	_, err = auth.Verify(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLoginChild(t *testing.T) {
	auth, children := newAuthFixture(t)
	ctx := context.Background()

	parent, _, err := auth.Register(ctx, "parent@example.com", "hunter2hunter2", "Parent")
	require.NoError(t, err)

	child, err := children.Create(ctx, parent.ID, ChildInput{Name: "Mei", Age: 5})
	require.NoError(t, err)
	require.Len(t, child.LoginCode, 6)

	got, session, err := auth.LoginChild(ctx, child.LoginCode)
	require.NoError(t, err)
	assert.Equal(t, child.ID, got.ID)

	// The session belongs to the parent, so provider configs and usage
	// accounting resolve through the parent account.
	verified, err := auth.Verify(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, verified.ID)

	_, _, err = auth.LoginChild(ctx, "999999")
	assert.ErrorIs(t, err, ErrInvalidLoginCode)
}

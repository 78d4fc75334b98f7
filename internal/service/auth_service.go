package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/duncan19760605/GenAI-Kid/internal/domain"
	"github.com/duncan19760605/GenAI-Kid/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrSessionExpired     = errors.New("session_expired")
	ErrSessionNotFound    = errors.New("session_not_found")
	ErrInvalidLoginCode   = errors.New("invalid_login_code")
	ErrEmailTaken         = errors.New("email_taken")
)

type AuthService struct {
	users    *repository.UserRepository
	sessions *repository.UserSessionRepository
	children *repository.ChildRepository
}

func NewAuthService(users *repository.UserRepository, sessions *repository.UserSessionRepository, children *repository.ChildRepository) *AuthService {
	return &AuthService{users: users, sessions: sessions, children: children}
}

// Register creates the parent account and logs it straight in.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (domain.User, domain.UserSession, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, domain.UserSession{}, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, domain.UserSession{}, err
	}
	user, err := s.users.Create(ctx, domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
	})
	if err != nil {
		return domain.User{}, domain.UserSession{}, err
	}
	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return domain.User{}, domain.UserSession{}, err
	}
	return user, session, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, domain.UserSession, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, domain.UserSession{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, domain.UserSession{}, ErrInvalidCredentials
	}
	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return domain.User{}, domain.UserSession{}, err
	}
	return user, session, nil
}

// LoginChild exchanges a child's login code for a session bound to the
// parent user, so provider configs and usage accounting stay on the parent.
func (s *AuthService) LoginChild(ctx context.Context, loginCode string) (domain.Child, domain.UserSession, error) {
	child, err := s.children.GetByLoginCode(ctx, loginCode)
	if err != nil {
		return domain.Child{}, domain.UserSession{}, ErrInvalidLoginCode
	}
	session, err := s.createSession(ctx, child.UserID)
	if err != nil {
		return domain.Child{}, domain.UserSession{}, err
	}
	return child, session, nil
}

func (s *AuthService) Verify(ctx context.Context, token string) (domain.User, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return domain.User{}, ErrSessionNotFound
	}
	if session.ExpiresAt.Before(time.Now()) {
		_ = s.sessions.DeleteByToken(ctx, token)
		return domain.User{}, ErrSessionExpired
	}
	user, err := s.users.Get(ctx, session.UserID)
	if err != nil {
		return domain.User{}, err
	}
	_ = s.sessions.Touch(ctx, session.ID)
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteByToken(ctx, token)
}

func (s *AuthService) createSession(ctx context.Context, userID string) (domain.UserSession, error) {
	token, err := generateToken()
	if err != nil {
		return domain.UserSession{}, err
	}
	return s.sessions.Create(ctx, userID, token, time.Now().Add(30*24*time.Hour))
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

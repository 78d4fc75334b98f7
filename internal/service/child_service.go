package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/duncan19760605/GenAI-Kid/internal/domain"
	"github.com/duncan19760605/GenAI-Kid/internal/prompts"
	"github.com/duncan19760605/GenAI-Kid/internal/repository"
)

var ErrInvalidAge = errors.New("age must be between 3 and 8")

type ChildService struct {
	children *repository.ChildRepository
}

func NewChildService(children *repository.ChildRepository) *ChildService {
	return &ChildService{children: children}
}

type ChildInput struct {
	Name              string
	Age               int
	PrimaryLanguage   string
	LearningLanguages []string
	CharacterID       string
}

func (s *ChildService) Create(ctx context.Context, userID string, input ChildInput) (domain.Child, error) {
	if input.Age < 3 || input.Age > 8 {
		return domain.Child{}, ErrInvalidAge
	}
	if input.PrimaryLanguage == "" {
		input.PrimaryLanguage = "zh"
	}
	if len(input.LearningLanguages) == 0 {
		input.LearningLanguages = []string{"en"}
	}
	if input.CharacterID == "" {
		input.CharacterID = "bear"
	}
	code, err := generateLoginCode()
	if err != nil {
		return domain.Child{}, err
	}
	return s.children.Create(ctx, domain.Child{
		UserID:            userID,
		Name:              input.Name,
		Age:               input.Age,
		PrimaryLanguage:   input.PrimaryLanguage,
		LearningLanguages: input.LearningLanguages,
		CharacterID:       input.CharacterID,
		LoginCode:         code,
	})
}

// Update replaces the profile fields of a child the user owns. Empty input
// fields keep their current value.
func (s *ChildService) Update(ctx context.Context, childID, userID string, input ChildInput) (domain.Child, error) {
	child, err := s.children.GetOwned(ctx, childID, userID)
	if err != nil {
		return domain.Child{}, err
	}
	if input.Name != "" {
		child.Name = input.Name
	}
	if input.Age != 0 {
		if input.Age < 3 || input.Age > 8 {
			return domain.Child{}, ErrInvalidAge
		}
		child.Age = input.Age
	}
	if input.PrimaryLanguage != "" {
		child.PrimaryLanguage = input.PrimaryLanguage
	}
	if len(input.LearningLanguages) > 0 {
		child.LearningLanguages = input.LearningLanguages
	}
	if input.CharacterID != "" {
		child.CharacterID = input.CharacterID
	}
	return s.children.Update(ctx, child)
}

func (s *ChildService) List(ctx context.Context, userID string) ([]domain.Child, error) {
	return s.children.ListByUser(ctx, userID)
}

func (s *ChildService) Get(ctx context.Context, childID, userID string) (domain.Child, error) {
	return s.children.GetOwned(ctx, childID, userID)
}

func (s *ChildService) Delete(ctx context.Context, childID, userID string) error {
	return s.children.Delete(ctx, childID, userID)
}

// CharacterProfile describes the child's companion for the kid UI.
type CharacterProfile struct {
	CharacterID string
	Name        string
	Personality string
	Emotions    []string
}

func (s *ChildService) Character(ctx context.Context, childID string) (CharacterProfile, error) {
	child, err := s.children.Get(ctx, childID)
	if err != nil {
		return CharacterProfile{}, err
	}
	profile := prompts.ProfileFor(child.CharacterID)
	return CharacterProfile{
		CharacterID: child.CharacterID,
		Name:        profile.DisplayName(child.PrimaryLanguage),
		Personality: profile.Personality,
		Emotions:    []string{"happy", "curious", "sad", "excited", "encouraging", "empathetic", "patient", "gentle"},
	}, nil
}

func generateLoginCode() (string, error) {
	const digits = "0123456789"
	code := make([]byte, 6)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[n.Int64()]
	}
	return string(code), nil
}

package service

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"io"

	"github.com/duncan19760605/GenAI-Kid/internal/domain"
	"github.com/duncan19760605/GenAI-Kid/internal/repository"
)

// ProviderService owns provider configurations and the encryption of their
// stored API keys. It also serves as the resolver's configuration source.
type ProviderService struct {
	repo *repository.ProviderConfigRepository
	key  []byte
}

func NewProviderService(repo *repository.ProviderConfigRepository, encryptionKey string) *ProviderService {
	hashed := sha256.Sum256([]byte(encryptionKey))
	return &ProviderService{
		repo: repo,
		key:  hashed[:],
	}
}

type ProviderConfigInput struct {
	Modality  domain.Modality
	Vendor    string
	APIKey    string
	ModelName string
	Active    bool
}

func (s *ProviderService) Upsert(ctx context.Context, userID string, input ProviderConfigInput) (domain.ProviderConfig, error) {
	cfg := domain.ProviderConfig{
		UserID:     userID,
		Modality:   input.Modality,
		VendorName: input.Vendor,
		ModelName:  input.ModelName,
		Active:     input.Active,
	}
	if input.APIKey != "" {
		encrypted, err := s.encrypt(input.APIKey)
		if err != nil {
			return domain.ProviderConfig{}, err
		}
		cfg.APIKeyEncrypted = encrypted
	}
	return s.repo.Upsert(ctx, cfg)
}

func (s *ProviderService) List(ctx context.Context, userID string) ([]domain.ProviderConfig, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *ProviderService) Delete(ctx context.Context, userID string, modality domain.Modality, vendor string) error {
	return s.repo.Delete(ctx, userID, modality, vendor)
}

// ActiveCredential implements providers.ConfigStore. A missing or inactive
// config yields empty values so the resolver can fall through to defaults.
func (s *ProviderService) ActiveCredential(ctx context.Context, userID string, modality domain.Modality, vendor string) (string, string, error) {
	cfg, err := s.repo.GetActive(ctx, userID, modality, vendor)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}
	if cfg.APIKeyEncrypted == "" {
		return "", cfg.ModelName, nil
	}
	key, err := s.decrypt(cfg.APIKeyEncrypted)
	if err != nil {
		return "", "", err
	}
	return key, cfg.ModelName, nil
}

func (s *ProviderService) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (s *ProviderService) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

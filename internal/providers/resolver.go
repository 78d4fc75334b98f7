package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/duncan19760605/GenAI-Kid/internal/config"
	"github.com/duncan19760605/GenAI-Kid/internal/domain"
)

// ErrNotConfigured reports that no candidate vendor for a modality had a
// usable credential, neither user-configured nor from the environment.
var ErrNotConfigured = errors.New("provider_not_configured")

// ConfigStore looks up a user's stored provider configuration. A missing or
// inactive config is reported as empty values, not an error.
type ConfigStore interface {
	ActiveCredential(ctx context.Context, userID string, modality domain.Modality, vendor string) (apiKey, model string, err error)
}

// Resolver picks a concrete provider adapter for a user and modality.
// Candidate vendors are tried in a fixed priority order; per candidate the
// user's stored credential wins over the process-wide default.
type Resolver struct {
	store    ConfigStore
	defaults config.ProviderDefaults
}

func NewResolver(store ConfigStore, defaults config.ProviderDefaults) *Resolver {
	return &Resolver{store: store, defaults: defaults}
}

func (r *Resolver) LLM(ctx context.Context, userID string) (LLMProvider, error) {
	candidates := []struct {
		vendor       string
		defaultKey   string
		defaultModel string
		build        func(key, model string) LLMProvider
	}{
		{"anthropic", r.defaults.AnthropicAPIKey, r.defaults.AnthropicModel,
			func(key, model string) LLMProvider { return NewAnthropicLLM(key, model) }},
		{"openai", r.defaults.OpenAIAPIKey, r.defaults.OpenAILLMModel,
			func(key, model string) LLMProvider { return NewOpenAILLM(key, model) }},
	}

	for _, candidate := range candidates {
		key, model, err := r.credential(ctx, userID, domain.ModalityLLM, candidate.vendor, candidate.defaultKey, candidate.defaultModel)
		if err != nil {
			return nil, err
		}
		if key != "" {
			return candidate.build(key, model), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", domain.ModalityLLM, ErrNotConfigured)
}

func (r *Resolver) STT(ctx context.Context, userID string) (STTProvider, error) {
	key, model, err := r.credential(ctx, userID, domain.ModalitySTT, "openai_whisper", r.defaults.OpenAIAPIKey, r.defaults.OpenAISTTModel)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("%s: %w", domain.ModalitySTT, ErrNotConfigured)
	}
	return NewWhisperSTT(key, model), nil
}

func (r *Resolver) TTS(ctx context.Context, userID string) (TTSProvider, error) {
	key, model, err := r.credential(ctx, userID, domain.ModalityTTS, "openai_tts", r.defaults.OpenAIAPIKey, r.defaults.OpenAITTSModel)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("%s: %w", domain.ModalityTTS, ErrNotConfigured)
	}
	return NewOpenAITTS(key, model), nil
}

func (r *Resolver) Image(ctx context.Context, userID string) (ImageProvider, error) {
	key, model, err := r.credential(ctx, userID, domain.ModalityImage, "wavespeed", r.defaults.WaveSpeedAPIKey, r.defaults.WaveSpeedModel)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("%s: %w", domain.ModalityImage, ErrNotConfigured)
	}
	return NewWaveSpeedImage(key, r.defaults.WaveSpeedURL, model), nil
}

// credential merges the stored config with the process defaults: the stored
// key wins, then the env key; the stored model override wins, then the env
// default model.
func (r *Resolver) credential(ctx context.Context, userID string, modality domain.Modality, vendor, defaultKey, defaultModel string) (string, string, error) {
	key, model, err := r.store.ActiveCredential(ctx, userID, modality, vendor)
	if err != nil {
		return "", "", fmt.Errorf("lookup %s/%s config: %w", modality, vendor, err)
	}
	if key == "" {
		key = defaultKey
	}
	if model == "" {
		model = defaultModel
	}
	return key, model, nil
}

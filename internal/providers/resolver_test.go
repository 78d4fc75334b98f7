package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duncan19760605/GenAI-Kid/internal/config"
	"github.com/duncan19760605/GenAI-Kid/internal/domain"
)

type fakeStore struct {
	credentials map[string][2]string // modality/vendor -> key, model
}

func (f *fakeStore) ActiveCredential(_ context.Context, _ string, modality domain.Modality, vendor string) (string, string, error) {
	cred, ok := f.credentials[string(modality)+"/"+vendor]
	if !ok {
		return "", "", nil
	}
	return cred[0], cred[1], nil
}

func TestResolverPrefersStoredCredential(t *testing.T) {
	store := &fakeStore{credentials: map[string][2]string{
		"llm/anthropic": {"sk-user", "claude-sonnet-4-5-20250929"},
	}}
	r := NewResolver(store, config.ProviderDefaults{
		OpenAIAPIKey:   "sk-env",
		OpenAILLMModel: "gpt-4o-mini",
	})

	llm, err := r.LLM(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", llm.Name())

	anthropic, ok := llm.(*AnthropicLLM)
	require.True(t, ok)
	assert.Equal(t, "claude-sonnet-4-5-20250929", anthropic.model)
}

func TestResolverFallsThroughToNextVendor(t *testing.T) {
	// No anthropic key anywhere, so openai with the env default must win.
	r := NewResolver(&fakeStore{}, config.ProviderDefaults{
		OpenAIAPIKey:   "sk-env",
		OpenAILLMModel: "gpt-4o-mini",
	})

	llm, err := r.LLM(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "openai", llm.Name())
}

func TestResolverStoredModelOverridesDefault(t *testing.T) {
	store := &fakeStore{credentials: map[string][2]string{
		"stt/openai_whisper": {"sk-user", ""},
	}}
	r := NewResolver(store, config.ProviderDefaults{
		OpenAISTTModel: "whisper-1",
	})

	stt, err := r.STT(context.Background(), "u1")
	require.NoError(t, err)

	whisper, ok := stt.(*WhisperSTT)
	require.True(t, ok)
	assert.Equal(t, "whisper-1", whisper.model)
}

func TestResolverNotConfigured(t *testing.T) {
	r := NewResolver(&fakeStore{}, config.ProviderDefaults{})
	ctx := context.Background()

	_, err := r.LLM(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = r.STT(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = r.TTS(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = r.Image(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

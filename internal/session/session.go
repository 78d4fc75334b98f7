// Package session implements the per-connection conversation engine: the
// state machine that turns a buffered audio utterance into a transcribed,
// safety-filtered, emotion-aware spoken reply.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/duncan19760605/GenAI-Kid/internal/domain"
	"github.com/duncan19760605/GenAI-Kid/internal/emotion"
	"github.com/duncan19760605/GenAI-Kid/internal/prompts"
	"github.com/duncan19760605/GenAI-Kid/internal/providers"
	"github.com/duncan19760605/GenAI-Kid/internal/repository"
	"github.com/duncan19760605/GenAI-Kid/internal/safety"
)

var (
	// ErrNoSpeech reports an empty transcript: the turn is aborted and
	// nothing is persisted, but the transcription itself is still billed.
	ErrNoSpeech = errors.New("no_speech")

	ErrNothingToRepeat = errors.New("nothing_to_repeat")
	ErrUnknownCommand  = errors.New("unknown_command")
	ErrNotActive       = errors.New("session_not_active")
)

type State int

const (
	StateCreated State = iota
	StateActive
	StateEnded
)

// Resolver picks provider adapters per modality for a user.
type Resolver interface {
	LLM(ctx context.Context, userID string) (providers.LLMProvider, error)
	STT(ctx context.Context, userID string) (providers.STTProvider, error)
	TTS(ctx context.Context, userID string) (providers.TTSProvider, error)
}

// UsageRecorder commits billing deltas against a user's daily totals.
type UsageRecorder interface {
	Record(ctx context.Context, userID string, delta repository.UsageDelta) error
}

// Factory bundles the dependencies shared by all live sessions.
type Factory struct {
	Conversations *repository.ConversationRepository
	Usage         UsageRecorder
	Resolver      Resolver
	Filter        *safety.Filter
	Emotions      *emotion.Classifier
	Logger        *slog.Logger
}

func (f *Factory) NewSession(child domain.Child, userID string) *Session {
	return &Session{
		factory:  f,
		child:    child,
		userID:   userID,
		state:    StateCreated,
		language: child.PrimaryLanguage,
		systemPrompt: prompts.BuildSystemPrompt(
			child.CharacterID, child.Name, child.Age,
			child.PrimaryLanguage, child.LearningLanguages,
		),
		logger: f.Logger.With(slog.String("child_id", child.ID)),
	}
}

// Session owns one live conversation. It is used by a single goroutine: the
// transport loop processes one inbound message at a time, so turns never
// overlap within a session.
type Session struct {
	factory *Factory
	child   domain.Child
	userID  string

	state        State
	conversation domain.Conversation
	history      []providers.LLMMessage
	language     string
	systemPrompt string
	lastResponse string
	logger       *slog.Logger
}

// TurnResult is the outcome of one successful turn or command.
type TurnResult struct {
	Audio        []byte
	Format       string
	Text         string
	Emotion      string
	ChildText    string
	ChildEmotion string
	Safe         bool
	SafetyReason string
}

func (s *Session) ConversationID() string { return s.conversation.ID }

// Start creates the conversation record and counts the session in the
// day's usage.
func (s *Session) Start(ctx context.Context) error {
	if s.state != StateCreated {
		return ErrNotActive
	}
	conv, err := s.factory.Conversations.Create(ctx, s.child.ID, s.language)
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	if err := s.factory.Usage.Record(ctx, s.userID, repository.UsageDelta{NewSession: true}); err != nil {
		// Close the row straight away so a session that never went live is
		// not left open forever.
		if endErr := s.factory.Conversations.SetEnded(ctx, conv.ID, time.Now().UTC()); endErr != nil {
			s.logger.Warn("closing uncounted conversation failed", slog.Any("error", endErr))
		}
		return fmt.Errorf("record session start: %w", err)
	}
	s.conversation = conv
	s.state = StateActive
	return nil
}

// ProcessAudio runs the full turn pipeline:
// transcribe -> safety/emotion -> generate -> sanitize -> synthesize -> persist.
// Persistence happens only after synthesis succeeds, so a failed turn never
// leaves a one-sided transcript behind.
func (s *Session) ProcessAudio(ctx context.Context, audio []byte) (TurnResult, error) {
	if s.state != StateActive {
		return TurnResult{}, ErrNotActive
	}

	stt, err := s.factory.Resolver.STT(ctx, s.userID)
	if err != nil {
		return TurnResult{}, err
	}
	sttResult, err := stt.Transcribe(ctx, audio, s.language)
	if err != nil {
		return TurnResult{}, fmt.Errorf("transcribe: %w", err)
	}

	childText := strings.TrimSpace(sttResult.Text)
	if childText == "" {
		// The vendor already charged for the transcription attempt.
		if err := s.factory.Usage.Record(ctx, s.userID, repository.UsageDelta{
			STTSeconds: sttResult.DurationSeconds,
			CostUSD:    sttResult.CostUSD,
		}); err != nil {
			s.logger.Warn("usage record failed for silent turn", slog.Any("error", err))
		}
		return TurnResult{}, ErrNoSpeech
	}

	isSafe, reason := s.factory.Filter.Check(childText)
	childEmotion := s.factory.Emotions.Detect(childText)

	var (
		responseText string
		charEmotion  string
		llmResult    providers.LLMResponse
	)
	if !isSafe {
		// No generation call: the character changes the subject instead.
		responseText = s.factory.Filter.Redirect(s.language)
		charEmotion = "gentle"
	} else {
		llm, err := s.factory.Resolver.LLM(ctx, s.userID)
		if err != nil {
			return TurnResult{}, err
		}
		turnHistory := append(append([]providers.LLMMessage(nil), s.history...),
			providers.LLMMessage{Role: "user", Content: childText})
		llmResult, err = llm.Chat(ctx, turnHistory, s.systemPrompt)
		if err != nil {
			return TurnResult{}, fmt.Errorf("generate: %w", err)
		}
		responseText = s.factory.Filter.Sanitize(llmResult.Text)
		charEmotion = s.factory.Emotions.CharacterEmotionFor(childEmotion)
		s.history = append(turnHistory, providers.LLMMessage{Role: "assistant", Content: responseText})
	}

	tts, err := s.factory.Resolver.TTS(ctx, s.userID)
	if err != nil {
		return TurnResult{}, err
	}
	ttsResult, err := tts.Synthesize(ctx, responseText, s.language, "")
	if err != nil {
		return TurnResult{}, fmt.Errorf("synthesize: %w", err)
	}

	totalTokens := llmResult.InputTokens + llmResult.OutputTokens
	totalCost := llmResult.CostUSD + ttsResult.CostUSD + sttResult.CostUSD

	durationMS := int(sttResult.DurationSeconds * 1000)
	childMsg := domain.Message{
		Role:            domain.RoleChild,
		Content:         childText,
		Language:        s.language,
		Emotion:         childEmotion,
		AudioDurationMS: &durationMS,
		CostUSD:         sttResult.CostUSD,
	}
	charMsg := domain.Message{
		Role:       domain.RoleCharacter,
		Content:    responseText,
		Language:   s.language,
		Emotion:    charEmotion,
		TokensUsed: totalTokens,
		CostUSD:    totalCost,
	}
	if err := s.factory.Conversations.AppendTurn(ctx, s.conversation.ID, childMsg, charMsg); err != nil {
		return TurnResult{}, fmt.Errorf("persist turn: %w", err)
	}
	s.conversation.TotalTokens += totalTokens
	s.conversation.EstimatedCostUSD += totalCost

	if err := s.factory.Usage.Record(ctx, s.userID, repository.UsageDelta{
		LLMTokens:  totalTokens,
		TTSChars:   utf8.RuneCountInString(responseText),
		STTSeconds: sttResult.DurationSeconds,
		CostUSD:    totalCost,
	}); err != nil {
		return TurnResult{}, fmt.Errorf("record usage: %w", err)
	}

	s.lastResponse = responseText

	return TurnResult{
		Audio:        ttsResult.AudioBytes,
		Format:       ttsResult.Format,
		Text:         responseText,
		Emotion:      charEmotion,
		ChildText:    childText,
		ChildEmotion: childEmotion,
		Safe:         isSafe,
		SafetyReason: reason,
	}, nil
}

// HandleCommand runs a side-channel command: replaying the last response,
// slowing it down, or switching the active language.
func (s *Session) HandleCommand(ctx context.Context, action, value string) (TurnResult, error) {
	if s.state != StateActive {
		return TurnResult{}, ErrNotActive
	}

	switch action {
	case "repeat":
		return s.replay(ctx, "happy")
	case "slower":
		return s.replay(ctx, "patient")
	case "switch_language":
		if value == "" {
			return TurnResult{}, ErrUnknownCommand
		}
		return s.switchLanguage(ctx, value)
	default:
		return TurnResult{}, ErrUnknownCommand
	}
}

func (s *Session) replay(ctx context.Context, emotionLabel string) (TurnResult, error) {
	if s.lastResponse == "" {
		return TurnResult{}, ErrNothingToRepeat
	}
	tts, err := s.factory.Resolver.TTS(ctx, s.userID)
	if err != nil {
		return TurnResult{}, err
	}
	ttsResult, err := tts.Synthesize(ctx, s.lastResponse, s.language, "")
	if err != nil {
		return TurnResult{}, fmt.Errorf("synthesize: %w", err)
	}
	return TurnResult{
		Audio:   ttsResult.AudioBytes,
		Format:  ttsResult.Format,
		Text:    s.lastResponse,
		Emotion: emotionLabel,
	}, nil
}

func (s *Session) switchLanguage(ctx context.Context, language string) (TurnResult, error) {
	s.language = language
	s.systemPrompt = prompts.BuildSystemPrompt(
		s.child.CharacterID, s.child.Name, s.child.Age,
		language, s.child.LearningLanguages,
	)

	greeting := prompts.SwitchGreeting(language, s.child.Name)
	tts, err := s.factory.Resolver.TTS(ctx, s.userID)
	if err != nil {
		return TurnResult{}, err
	}
	ttsResult, err := tts.Synthesize(ctx, greeting, language, "")
	if err != nil {
		return TurnResult{}, fmt.Errorf("synthesize: %w", err)
	}
	return TurnResult{
		Audio:   ttsResult.AudioBytes,
		Format:  ttsResult.Format,
		Text:    greeting,
		Emotion: "excited",
	}, nil
}

// End fixes the conversation end time. Safe to call any number of times and
// from any state; only the first call after Start writes anything.
func (s *Session) End(ctx context.Context) error {
	if s.state != StateActive {
		return nil
	}
	s.state = StateEnded
	s.history = nil
	if err := s.factory.Conversations.SetEnded(ctx, s.conversation.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("end conversation: %w", err)
	}
	return nil
}

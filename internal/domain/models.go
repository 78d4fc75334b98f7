package domain

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Timezone     string
	CreatedAt    time.Time
}

type Child struct {
	ID                string
	UserID            string
	Name              string
	Age               int
	PrimaryLanguage   string
	LearningLanguages []string
	CharacterID       string
	LoginCode         string
	CreatedAt         time.Time
}

type UserSession struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	LastUsed  time.Time
}

type Conversation struct {
	ID               string
	ChildID          string
	StartedAt        time.Time
	EndedAt          *time.Time
	Language         string
	TotalTokens      int
	EstimatedCostUSD float64
}

type MessageRole string

const (
	RoleChild     MessageRole = "child"
	RoleCharacter MessageRole = "character"
)

// Message is immutable once written: exactly two rows are appended per
// successful conversation turn, one per role.
type Message struct {
	ID              string
	ConversationID  string
	Role            MessageRole
	Content         string
	Language        string
	Emotion         string
	AudioDurationMS *int
	TokensUsed      int
	CostUSD         float64
	CreatedAt       time.Time
}

type Modality string

const (
	ModalityLLM   Modality = "llm"
	ModalitySTT   Modality = "stt"
	ModalityTTS   Modality = "tts"
	ModalityImage Modality = "image"
)

type ProviderConfig struct {
	ID              string
	UserID          string
	Modality        Modality
	VendorName      string
	APIKeyEncrypted string
	ModelName       string
	Active          bool
	CreatedAt       time.Time
}

// DailyUsage aggregates cost and consumption per user per calendar day.
// Exactly one row exists per (user, day); counters only grow within a day.
type DailyUsage struct {
	ID              string
	UserID          string
	Day             string
	TotalSessions   int
	TotalDurationMS int64
	TotalTokens     int
	TotalCostUSD    float64
	LLMTokens       int
	TTSChars        int
	STTSeconds      float64
}

// UsageSummary is the all-time rollup of a user's daily usage rows.
type UsageSummary struct {
	TotalSessions   int
	TotalDurationMS int64
	TotalTokens     int
	TotalCostUSD    float64
	DaysActive      int
}

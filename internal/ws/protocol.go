package ws

// Client to server frame types.
const (
	msgAudioStart = "audio_start"
	msgAudioChunk = "audio_chunk"
	msgAudioEnd   = "audio_end"
	msgCommand    = "command"
	msgEndSession = "end_session"
)

// Server to client frame types.
const (
	msgSessionStarted = "session_started"
	msgProcessing     = "processing"
	msgResponseStart  = "response_start"
	msgSessionEnded   = "session_ended"
	msgError          = "error"
)

// Close codes beyond the RFC 6455 range.
const (
	closeInvalidToken  = 4001
	closeChildNotFound = 4004
)

// chunkSize bounds the base64 payload of one outbound audio frame.
const chunkSize = 64 * 1024

// clientMessage is any inbound frame. Fields beyond Type are set depending
// on the frame type.
type clientMessage struct {
	Type   string `json:"type"`
	Data   string `json:"data,omitempty"`
	Action string `json:"action,omitempty"`
	Value  string `json:"value,omitempty"`
}

type serverMessage struct {
	Type           string `json:"type"`
	Stage          string `json:"stage,omitempty"`
	Message        string `json:"message,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	Emotion        string `json:"emotion,omitempty"`
	ChildText      string `json:"child_text,omitempty"`
	ChildEmotion   string `json:"child_emotion,omitempty"`
	Data           string `json:"data,omitempty"`
	Format         string `json:"format,omitempty"`
	Transcript     string `json:"transcript,omitempty"`
}

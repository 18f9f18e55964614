package models

// Message is one turn of the participant/assistant chat transcript.
// Timestamps are epoch milliseconds to match the event logs.
type Message struct {
	Role      string `json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

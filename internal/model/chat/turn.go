package chat

import "time"

// Speaker 是聊天记录里固定的两个说话人标签。
type Speaker string

const (
	SpeakerYou       Speaker = "You"
	SpeakerAssistant Speaker = "Assistant"
)

// Turn is one (speaker, message) entry in the chat history. Turns are never edited.
type Turn struct {
	Speaker   Speaker   `json:"speaker"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewTurn stamps a turn with the current time.
func NewTurn(speaker Speaker, message string) Turn {
	return Turn{Speaker: speaker, Message: message, CreatedAt: time.Now().UTC()}
}

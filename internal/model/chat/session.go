package chat

import "time"

// Session captures one anonymous UI session and owns its chat history.
type Session struct {
	ID        string    `json:"id"`
	TutorID   string    `json:"tutorId"`
	CreatedAt time.Time `json:"createdAt"`
	History   *History  `json:"-"`
}

package models

import "time"

type Sender string

const (
	SenderUser    Sender = "user"
	SenderSupport Sender = "support"
)

type ChatMessage struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

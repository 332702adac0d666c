package dto

import (
	"errors"
	"time"
)

type ChatMessageCreate struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (c ChatMessageCreate) Validate() error {
	if c.Sender != "user" && c.Sender != "ai" {
		return errors.New("sender must be \"user\" or \"ai\"")
	}
	if c.Content == "" {
		return errors.New("content is required")
	}
	return nil
}

type ChatMessageResponse struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatHistoryRequest replaces a session's chat thread wholesale.
type ChatHistoryRequest struct {
	History []ChatMessageCreate `json:"history"`
}

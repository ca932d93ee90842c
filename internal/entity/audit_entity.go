package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatRequest is one inbound user message recorded for audit.
type ChatRequest struct {
	Id        uuid.UUID
	SessionId string
	UserId    *uuid.UUID
	Message   string
	State     string
	CreatedAt time.Time
}

// ChatResponse is the assistant's answer to one request.
type ChatResponse struct {
	Id        uuid.UUID
	RequestId uuid.UUID
	SessionId string
	Kind      string
	Payload   map[string]interface{}
	CreatedAt time.Time
}

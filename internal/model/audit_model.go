package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChatRequest keeps every inbound message for audit and analytics.
type ChatRequest struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId string     `gorm:"type:varchar(64);not null;index:idx_chat_requests_session"`
	UserId    *uuid.UUID `gorm:"type:uuid;index"`
	Message   string     `gorm:"type:text;not null"`
	State     string     `gorm:"type:varchar(32);not null"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
}

func (ChatRequest) TableName() string {
	return "chat_requests"
}

// ChatResponse keeps the reply paired with its request. The payload is
// the full tagged reply body, so a product card stays reconstructable.
type ChatResponse struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestId uuid.UUID      `gorm:"type:uuid;not null;index"`
	SessionId string         `gorm:"type:varchar(64);not null;index:idx_chat_responses_session"`
	Kind      string         `gorm:"type:varchar(16);not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
}

func (ChatResponse) TableName() string {
	return "chat_responses"
}

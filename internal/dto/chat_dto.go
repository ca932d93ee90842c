package dto

import "time"

type ChatMessageRequest struct {
	SessionId string `json:"session_id" validate:"omitempty,max=64"`
	Message   string `json:"message" validate:"required,max=2000"`
}

type ChatMessageResponse struct {
	SessionId string          `json:"session_id"`
	Kind      string          `json:"kind"`
	Text      string          `json:"text,omitempty"`
	Question  string          `json:"question,omitempty"`
	Options   []string        `json:"options,omitempty"`
	Product   *ProductCardDTO `json:"product,omitempty"`
}

type ProductCardDTO struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Article     string `json:"article,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Country     string `json:"country,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

type CreateSessionResponse struct {
	SessionId string `json:"session_id"`
	Greeting  string `json:"greeting"`
}

type SelectOptionRequest struct {
	SessionId string `json:"session_id" validate:"required,max=64"`
	Option    int    `json:"option" validate:"required,min=1"`
}

type AnalyzeRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type AnalyzeResponse struct {
	Category    string   `json:"category,omitempty"`
	Intention   string   `json:"intention,omitempty"`
	Include     []string `json:"include,omitempty"`
	Exclude     []string `json:"exclude,omitempty"`
	SearchQuery string   `json:"search_query"`
}

type RestartRequest struct {
	SessionId string `json:"session_id" validate:"required,max=64"`
}

type TranscriptResponse struct {
	SessionId string          `json:"session_id"`
	Turns     []TranscriptDTO `json:"turns"`
}

type TranscriptDTO struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// AuditEventMessage is the payload carried on the in-process audit bus.
type AuditEventMessage struct {
	RequestId string                 `json:"request_id"`
	SessionId string                 `json:"session_id"`
	UserId    string                 `json:"user_id,omitempty"`
	Message   string                 `json:"message"`
	State     string                 `json:"state"`
	Kind      string                 `json:"kind"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

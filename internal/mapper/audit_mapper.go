package mapper

import (
	"encoding/json"

	"catalog-assist-be/internal/entity"
	"catalog-assist-be/internal/model"

	"gorm.io/datatypes"
)

type AuditMapper struct{}

func NewAuditMapper() *AuditMapper {
	return &AuditMapper{}
}

func (m *AuditMapper) RequestToEntity(r *model.ChatRequest) *entity.ChatRequest {
	if r == nil {
		return nil
	}
	return &entity.ChatRequest{
		Id:        r.Id,
		SessionId: r.SessionId,
		UserId:    r.UserId,
		Message:   r.Message,
		State:     r.State,
		CreatedAt: r.CreatedAt,
	}
}

func (m *AuditMapper) RequestToModel(r *entity.ChatRequest) *model.ChatRequest {
	if r == nil {
		return nil
	}
	return &model.ChatRequest{
		Id:        r.Id,
		SessionId: r.SessionId,
		UserId:    r.UserId,
		Message:   r.Message,
		State:     r.State,
		CreatedAt: r.CreatedAt,
	}
}

func (m *AuditMapper) ResponseToEntity(r *model.ChatResponse) *entity.ChatResponse {
	if r == nil {
		return nil
	}
	var payload map[string]interface{}
	if len(r.Payload) > 0 {
		// A payload that fails to decode is kept as nil rather than
		// failing the whole read.
		_ = json.Unmarshal(r.Payload, &payload)
	}
	return &entity.ChatResponse{
		Id:        r.Id,
		RequestId: r.RequestId,
		SessionId: r.SessionId,
		Kind:      r.Kind,
		Payload:   payload,
		CreatedAt: r.CreatedAt,
	}
}

func (m *AuditMapper) ResponseToModel(r *entity.ChatResponse) (*model.ChatResponse, error) {
	if r == nil {
		return nil, nil
	}
	var payload datatypes.JSON
	if r.Payload != nil {
		data, err := json.Marshal(r.Payload)
		if err != nil {
			return nil, err
		}
		payload = data
	}
	return &model.ChatResponse{
		Id:        r.Id,
		RequestId: r.RequestId,
		SessionId: r.SessionId,
		Kind:      r.Kind,
		Payload:   payload,
		CreatedAt: r.CreatedAt,
	}, nil
}

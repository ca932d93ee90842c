package contract

import (
	"context"

	"catalog-assist-be/internal/entity"
	"catalog-assist-be/internal/repository/specification"
)

// AuditRepository persists the chat request/response trail.
type AuditRepository interface {
	SaveRequest(ctx context.Context, req *entity.ChatRequest) error
	SaveResponse(ctx context.Context, resp *entity.ChatResponse) error
	FindRequests(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRequest, error)
	FindResponses(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatResponse, error)
	CountRequests(ctx context.Context, specs ...specification.Specification) (int64, error)
}

package implementation

import (
	"context"

	"catalog-assist-be/internal/entity"
	"catalog-assist-be/internal/mapper"
	"catalog-assist-be/internal/model"
	"catalog-assist-be/internal/repository/contract"
	"catalog-assist-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AuditRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AuditMapper
}

func NewAuditRepository(db *gorm.DB) contract.AuditRepository {
	return &AuditRepositoryImpl{
		db:     db,
		mapper: mapper.NewAuditMapper(),
	}
}

func (r *AuditRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AuditRepositoryImpl) SaveRequest(ctx context.Context, req *entity.ChatRequest) error {
	m := r.mapper.RequestToModel(req)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*req = *r.mapper.RequestToEntity(m)
	return nil
}

func (r *AuditRepositoryImpl) SaveResponse(ctx context.Context, resp *entity.ChatResponse) error {
	m, err := r.mapper.ResponseToModel(resp)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*resp = *r.mapper.ResponseToEntity(m)
	return nil
}

func (r *AuditRepositoryImpl) FindRequests(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRequest, error) {
	var models []*model.ChatRequest
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.ChatRequest, len(models))
	for i, m := range models {
		out[i] = r.mapper.RequestToEntity(m)
	}
	return out, nil
}

func (r *AuditRepositoryImpl) FindResponses(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatResponse, error) {
	var models []*model.ChatResponse
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.ChatResponse, len(models))
	for i, m := range models {
		out[i] = r.mapper.ResponseToEntity(m)
	}
	return out, nil
}

func (r *AuditRepositoryImpl) CountRequests(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatRequest{}), specs...)
	err := query.Count(&count).Error
	return count, err
}

package mapper

import (
	"catalog-assist-be/internal/entity"
	"catalog-assist-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ProductEmbeddingMapper struct{}

func NewProductEmbeddingMapper() *ProductEmbeddingMapper {
	return &ProductEmbeddingMapper{}
}

func (m *ProductEmbeddingMapper) ToEntity(p *model.ProductEmbedding) *entity.ProductEmbedding {
	if p == nil {
		return nil
	}
	return &entity.ProductEmbedding{
		Id:          p.Id,
		Document:    p.Document,
		Embedding:   p.EmbeddingValue.Slice(),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Article:     p.Article,
		Brand:       p.Brand,
		Country:     p.Country,
		EtimClass:   p.EtimClass,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (m *ProductEmbeddingMapper) ToModel(p *entity.ProductEmbedding) *model.ProductEmbedding {
	if p == nil {
		return nil
	}
	return &model.ProductEmbedding{
		Id:             p.Id,
		Document:       p.Document,
		EmbeddingValue: pgvector.NewVector(p.Embedding),
		Name:           p.Name,
		Description:    p.Description,
		Category:       p.Category,
		Article:        p.Article,
		Brand:          p.Brand,
		Country:        p.Country,
		EtimClass:      p.EtimClass,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (m *ProductEmbeddingMapper) ToEntities(products []*model.ProductEmbedding) []*entity.ProductEmbedding {
	entities := make([]*entity.ProductEmbedding, len(products))
	for i, p := range products {
		entities[i] = m.ToEntity(p)
	}
	return entities
}

package implementation

import (
	"context"

	"catalog-assist-be/internal/entity"
	"catalog-assist-be/internal/mapper"
	"catalog-assist-be/internal/model"
	"catalog-assist-be/internal/repository/contract"
	"catalog-assist-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ProductEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProductEmbeddingMapper
}

func NewProductEmbeddingRepository(db *gorm.DB) contract.ProductEmbeddingRepository {
	return &ProductEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewProductEmbeddingMapper(),
	}
}

func (r *ProductEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ProductEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, products []*entity.ProductEmbedding) error {
	if len(products) == 0 {
		return nil
	}
	models := make([]*model.ProductEmbedding, len(products))
	for i, p := range products {
		models[i] = r.mapper.ToModel(p)
	}

	if err := r.db.WithContext(ctx).CreateInBatches(models, 500).Error; err != nil {
		return err
	}

	for i, m := range models {
		*products[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ProductEmbeddingRepositoryImpl) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("1 = 1").
		Delete(&model.ProductEmbedding{}).Error
}

func (r *ProductEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProductEmbedding, error) {
	var models []*model.ProductEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ProductEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ProductEmbedding{}), specs...)
	err := query.Count(&count).Error
	return count, err
}

// SearchSimilarWithScore ranks products by cosine similarity. pgvector's
// <=> operator is cosine distance, so similarity is 1 - distance.
func (r *ProductEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredProductEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.ProductEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("product_embeddings").
		Select("product_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("deleted_at IS NULL").
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredProductEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredProductEmbedding{
			Product:    r.mapper.ToEntity(&res.ProductEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

package service

import (
	"context"
	"fmt"
	"path/filepath"

	"catalog-assist-be/internal/config"
	"catalog-assist-be/internal/entity"
	"catalog-assist-be/internal/pkg/logger"
	"catalog-assist-be/internal/repository/unitofwork"
	"catalog-assist-be/internal/search"
	"catalog-assist-be/pkg/catalog"
	"catalog-assist-be/pkg/embedding"
	"catalog-assist-be/pkg/retrieval"
	"catalog-assist-be/pkg/vectorindex"

	"github.com/google/uuid"
	stdlog "log"
)

type ICorpusService interface {
	// BuildSearchers loads or builds both corpora and returns the
	// catalog and product searchers the retriever will walk.
	BuildSearchers(ctx context.Context) (catalogSearcher, productSearcher retrieval.Searcher, err error)

	// Reindex forces a rebuild of the product corpus in Postgres.
	Reindex(ctx context.Context) (int, error)
}

type corpusService struct {
	cfg        *config.Config
	embedder   embedding.EmbeddingProvider
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	indexLog   *stdlog.Logger
}

func NewCorpusService(
	cfg *config.Config,
	embedder embedding.EmbeddingProvider,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
	indexLog *stdlog.Logger,
) ICorpusService {
	return &corpusService{
		cfg:        cfg,
		embedder:   embedder,
		uowFactory: uowFactory,
		logger:     log,
		indexLog:   indexLog,
	}
}

func (s *corpusService) BuildSearchers(ctx context.Context) (retrieval.Searcher, retrieval.Searcher, error) {
	categoryDocs, err := catalog.LoadCategories(s.cfg.Retrieval.CategoriesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load categories: %w", err)
	}

	// The catalog tier is small and always lives in the file index.
	catalogIndex := vectorindex.New(filepath.Join(s.cfg.Retrieval.IndexDir, "catalog"), s.embedder, s.indexLog)
	if err := catalogIndex.LoadOrBuild(ctx, categoryDocs); err != nil {
		return nil, nil, fmt.Errorf("build catalog index: %w", err)
	}
	s.logger.Info("corpus", "catalog index ready", map[string]interface{}{"size": catalogIndex.Size()})

	if s.cfg.Retrieval.Backend == "pgvector" {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		repo := uow.ProductEmbeddingRepository()
		count, err := repo.Count(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("count product embeddings: %w", err)
		}
		if count == 0 {
			if _, err := s.Reindex(ctx); err != nil {
				return nil, nil, err
			}
		}
		s.logger.Info("corpus", "product corpus served from pgvector", map[string]interface{}{"rows": count})
		return catalogIndex, search.NewPgvectorSearcher(repo, s.logger), nil
	}

	productDocs, err := catalog.LoadProducts(s.cfg.Retrieval.ProductsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("load products: %w", err)
	}
	productIndex := vectorindex.New(filepath.Join(s.cfg.Retrieval.IndexDir, "products"), s.embedder, s.indexLog)
	if err := productIndex.LoadOrBuild(ctx, productDocs); err != nil {
		return nil, nil, fmt.Errorf("build product index: %w", err)
	}
	s.logger.Info("corpus", "product index ready", map[string]interface{}{"size": productIndex.Size()})

	return catalogIndex, productIndex, nil
}

// Reindex re-embeds the product files and replaces the pgvector rows.
func (s *corpusService) Reindex(ctx context.Context) (int, error) {
	productDocs, err := catalog.LoadProducts(s.cfg.Retrieval.ProductsDir)
	if err != nil {
		return 0, fmt.Errorf("load products: %w", err)
	}

	products := make([]*entity.ProductEmbedding, 0, len(productDocs))
	for _, doc := range productDocs {
		vec, err := s.embedder.Generate(ctx, doc.Content)
		if err != nil {
			return 0, fmt.Errorf("embed product %q: %w", doc.Name(), err)
		}
		products = append(products, &entity.ProductEmbedding{
			Id:          uuid.New(),
			Document:    doc.Content,
			Embedding:   vec,
			Name:        doc.Name(),
			Description: doc.MetaString("description"),
			Category:    doc.MetaString("category"),
			Article:     doc.MetaString("article"),
			Brand:       doc.MetaString("brand"),
			Country:     doc.MetaString("country"),
			EtimClass:   doc.MetaString("etimclass"),
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	if err := uow.ProductEmbeddingRepository().DeleteAll(ctx); err != nil {
		return 0, fmt.Errorf("clear product embeddings: %w", err)
	}
	if err := uow.ProductEmbeddingRepository().CreateBulk(ctx, products); err != nil {
		return 0, fmt.Errorf("insert product embeddings: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}

	s.logger.Info("corpus", "product corpus reindexed", map[string]interface{}{"rows": len(products)})
	return len(products), nil
}

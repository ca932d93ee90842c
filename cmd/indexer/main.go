package main

import (
	"context"
	"flag"
	"log"

	"catalog-assist-be/internal/config"
	"catalog-assist-be/internal/pkg/logger"
	"catalog-assist-be/internal/repository/unitofwork"
	"catalog-assist-be/internal/service"
	"catalog-assist-be/pkg/database"
	"catalog-assist-be/pkg/embedding"
	"catalog-assist-be/pkg/embedding/jina"

	"gorm.io/gorm"
)

// Builds the retrieval corpora offline so the REST process starts with warm
// indexes. With INDEX_BACKEND=pgvector the -reindex flag re-embeds the whole
// product corpus into the database.
func main() {
	reindex := flag.Bool("reindex", false, "force a full rebuild of the product corpus")
	flag.Parse()

	cfg := config.Load()

	var embedder embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "jina" {
		embedder = jina.NewJinaProvider(cfg.Ai.JinaAPIKey)
	} else {
		embedder = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	}

	var db *gorm.DB
	if cfg.Retrieval.Backend == "pgvector" {
		var err error
		db, err = database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Fatalf("Error: Failed to connect to database: %v", err)
		}
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewIsolatedLogger("logs/indexer.log")
	indexLog := log.New(log.Writer(), "[index] ", log.LstdFlags)

	corpus := service.NewCorpusService(cfg, embedder, uowFactory, sysLogger, indexLog)

	ctx := context.Background()

	if *reindex {
		if cfg.Retrieval.Backend != "pgvector" {
			log.Fatal("Error: -reindex only applies to INDEX_BACKEND=pgvector")
		}
		n, err := corpus.Reindex(ctx)
		if err != nil {
			log.Fatalf("Error: Reindex failed: %v", err)
		}
		log.Printf("✅ Success: re-embedded %d products", n)
		return
	}

	if _, _, err := corpus.BuildSearchers(ctx); err != nil {
		log.Fatalf("Error: Index build failed: %v", err)
	}
	log.Println("✅ Success: retrieval corpora are ready")
}

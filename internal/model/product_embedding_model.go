package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// ProductEmbedding is the pgvector-backed second-tier corpus, used when
// INDEX_BACKEND=pgvector instead of the file index.
type ProductEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Document       string          `gorm:"type:text;not null"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text uses 768 dimensions
	Name           string          `gorm:"type:varchar(512);not null"`
	Description    string          `gorm:"type:text"`
	Category       string          `gorm:"type:varchar(255);index"`
	Article        string          `gorm:"type:varchar(128);index"`
	Brand          string          `gorm:"type:varchar(255)"`
	Country        string          `gorm:"type:varchar(64)"`
	EtimClass      string          `gorm:"type:varchar(64)"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (ProductEmbedding) TableName() string {
	return "product_embeddings"
}

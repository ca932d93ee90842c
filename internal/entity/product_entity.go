package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProductEmbedding is one product row of the pgvector-backed corpus.
type ProductEmbedding struct {
	Id          uuid.UUID
	Document    string
	Embedding   []float32
	Name        string
	Description string
	Category    string
	Article     string
	Brand       string
	Country     string
	EtimClass   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

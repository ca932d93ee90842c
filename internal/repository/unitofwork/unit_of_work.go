package unitofwork

import (
	"context"

	"catalog-assist-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	AuditRepository() contract.AuditRepository
	ProductEmbeddingRepository() contract.ProductEmbeddingRepository
}

package services

import (
	"context"

	"github.com/ChielvanV/BugBeheer/internal/domain"
)

// Store is the record-store collaborator contract. The Postgres repository
// implements it; tests substitute an in-memory fake.
type Store interface {
	ListBugs(ctx context.Context) ([]domain.BugRecord, error)
	GetBug(ctx context.Context, id string) (*domain.BugRecord, error)
	InsertBug(ctx context.Context, b domain.BugRecord) error
	UpdateBug(ctx context.Context, b domain.BugRecord) error
	DeleteBug(ctx context.Context, id string) error
	DeleteNonReference(ctx context.Context) (int64, error)
	CountBugs(ctx context.Context) (total, reference int64, err error)
}

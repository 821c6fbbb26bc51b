package brand

import (
	"context"

	"storefront-be/internal/cache"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	GetBrand(ctx context.Context, id uuid.UUID) (*Brand, error)
	ListBrands(ctx context.Context) ([]Brand, error)
	CreateBrand(ctx context.Context, b *Brand) error
	UpdateBrand(ctx context.Context, b *Brand) error
	DeleteBrand(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  Repository
	cache cache.Cache[string, Brand]
}

// NewService builds the brand service. The cache is an injected capability:
// pass cache.NewNop to disable caching (e.g. in tests).
func NewService(repo Repository, c cache.Cache[string, Brand]) Service {
	return &service{repo: repo, cache: c}
}

func (s *service) GetBrand(ctx context.Context, id uuid.UUID) (*Brand, error) {
	key := id.String()

	if b, ok := s.cache.Get(key); ok {
		return &b, nil
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Add(key, *b)
	return b, nil
}

func (s *service) ListBrands(ctx context.Context) ([]Brand, error) {
	return s.repo.List(ctx)
}

func (s *service) CreateBrand(ctx context.Context, b *Brand) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return s.repo.Create(ctx, b)
}

func (s *service) UpdateBrand(ctx context.Context, b *Brand) error {
	if err := s.repo.Update(ctx, b); err != nil {
		return err
	}
	// Keep the cache coherent with the write.
	s.cache.Remove(b.ID.String())
	return nil
}

func (s *service) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		logger.FromCtx(ctx).Error("failed to delete brand",
			zap.String("brand_id", id.String()),
			zap.Error(err),
		)
		return err
	}
	s.cache.Remove(id.String())
	return nil
}

package product

import (
	"context"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/pricing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*View, error)
	ListProducts(ctx context.Context, opts ListOptions) ([]View, error)
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

// GetProduct resolves the displayed price through the pricing resolver at
// read time. Stored data is never mutated here.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*View, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.view(*p)
	return &v, nil
}

func (s *service) ListProducts(ctx context.Context, opts ListOptions) ([]View, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListProducts"),
	)

	products, err := s.repo.List(ctx, opts)
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		return nil, err
	}

	views := make([]View, 0, len(products))
	for _, p := range products {
		views = append(views, s.view(p))
	}

	log.Debug("products listed", zap.Int("count", len(views)))
	return views, nil
}

func (s *service) CreateProduct(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return s.repo.Create(ctx, p)
}

func (s *service) UpdateProduct(ctx context.Context, p *Product) error {
	return s.repo.Update(ctx, p)
}

func (s *service) view(p Product) View {
	now := s.now()
	return View{
		Product:            p,
		DiscountedPrice:    pricing.DiscountedPrice(p.Price, p.Discounts, now),
		DiscountPercentage: pricing.DiscountPercentage(p.Discounts, now),
	}
}

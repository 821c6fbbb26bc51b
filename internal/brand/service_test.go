package brand

import (
	"context"
	"testing"
	"time"

	"storefront-be/internal/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Brand, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Brand), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]Brand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Brand), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, b *Brand) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, b *Brand) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestGetBrandCaching(t *testing.T) {
	ctx := context.Background()

	t.Run("second read is served from cache", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, cache.NewTTL[string, Brand](16, time.Minute))

		id := uuid.New()
		repo.On("GetByID", ctx, id).Return(&Brand{ID: id, Name: "Acme"}, nil).Once()

		first, err := svc.GetBrand(ctx, id)
		require.NoError(t, err)
		second, err := svc.GetBrand(ctx, id)
		require.NoError(t, err)

		assert.Equal(t, first.Name, second.Name)
		repo.AssertNumberOfCalls(t, "GetByID", 1)
	})

	t.Run("update invalidates the cached entry", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, cache.NewTTL[string, Brand](16, time.Minute))

		id := uuid.New()
		repo.On("GetByID", ctx, id).Return(&Brand{ID: id, Name: "Acme"}, nil).Twice()
		repo.On("Update", ctx, mock.Anything).Return(nil)

		_, err := svc.GetBrand(ctx, id)
		require.NoError(t, err)

		require.NoError(t, svc.UpdateBrand(ctx, &Brand{ID: id, Name: "Acme v2"}))

		_, err = svc.GetBrand(ctx, id)
		require.NoError(t, err)
		repo.AssertNumberOfCalls(t, "GetByID", 2)
	})

	t.Run("nop cache always hits the repository", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, cache.NewNop[string, Brand]())

		id := uuid.New()
		repo.On("GetByID", ctx, id).Return(&Brand{ID: id}, nil)

		_, _ = svc.GetBrand(ctx, id)
		_, _ = svc.GetBrand(ctx, id)
		repo.AssertNumberOfCalls(t, "GetByID", 2)
	})
}

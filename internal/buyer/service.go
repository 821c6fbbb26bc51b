package buyer

import (
	"context"
	"errors"
	"strings"

	"storefront-be/internal/auth"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service interface {
	Register(ctx context.Context, email, password, fullName string) (*Buyer, error)
	// Login returns the buyer and a signed session token.
	Login(ctx context.Context, email, password string) (*Buyer, string, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Buyer, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, email, password, fullName string) (*Buyer, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("invalid email")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	b := &Buyer{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         "BUYER",
	}

	if err := s.repo.Create(ctx, b); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			log.Warn("registration with taken email")
			return nil, err
		}
		log.Error("failed to create buyer", zap.Error(err))
		return nil, err
	}

	log.Info("buyer registered", zap.String("buyer_id", b.ID.String()))
	return b, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*Buyer, string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	b, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrBuyerNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !auth.CheckPasswordHash(password, b.PasswordHash) {
		log.Warn("failed login attempt", zap.String("buyer_id", b.ID.String()))
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(b.ID, b.Email, b.Role)
	if err != nil {
		log.Error("failed to sign token", zap.Error(err))
		return nil, "", err
	}

	return b, token, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Buyer, error) {
	return s.repo.GetByID(ctx, id)
}

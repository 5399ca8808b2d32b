package review

import (
	"context"
	"strings"
	"time"

	"github.com/dermatocheck/dermatocheck-api/internal/constants"
	"github.com/dermatocheck/dermatocheck-api/internal/domain"
	apperrors "github.com/dermatocheck/dermatocheck-api/pkg/errors"
	"go.uber.org/zap"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Insert(ctx context.Context, userID string, input domain.ReviewInput) (*domain.Review, error)
	ListApproved(ctx context.Context, limit int) ([]domain.Review, error)
}

// Cache mirrors the cache service methods used here.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

const listCacheKey = "dermato:reviews:approved"

// Service validates submissions and caches the public listing.
type Service struct {
	repo   Repository
	cache  Cache
	logger *zap.Logger
}

func NewService(repo Repository, cache Cache, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Submit validates and stores one review. New reviews start unapproved, so
// the public listing cache is only invalidated, never updated in place.
func (s *Service) Submit(ctx context.Context, userID string, input domain.ReviewInput) (*domain.Review, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewAuthError("errors.auth_required")
	}

	input.AuthorName = strings.TrimSpace(input.AuthorName)
	if input.AuthorName == "" {
		return nil, apperrors.NewValidationError("errors.review_name_required", "author_name", input.AuthorName)
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.NewValidationError("errors.review_rating_range", "rating", input.Rating)
	}
	input.Comment = strings.TrimSpace(input.Comment)

	review, err := s.repo.Insert(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, listCacheKey); err != nil {
			s.logger.Warn("Review cache invalidation failed", zap.Error(err))
		}
	}

	return review, nil
}

// ListApproved returns the newest approved reviews for the public page.
func (s *Service) ListApproved(ctx context.Context) ([]domain.Review, error) {
	if s.cache != nil {
		var cached []domain.Review
		if found, err := s.cache.Get(ctx, listCacheKey, &cached); err == nil && found {
			return cached, nil
		}
	}

	reviews, err := s.repo.ListApproved(ctx, constants.Limits.ReviewListSize)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, listCacheKey, reviews, constants.CacheTTL.Reviews); err != nil {
			s.logger.Warn("Review cache write failed", zap.Error(err))
		}
	}

	return reviews, nil
}

package review

import (
	"context"
	"testing"
	"time"

	"github.com/dermatocheck/dermatocheck-api/internal/domain"
	apperrors "github.com/dermatocheck/dermatocheck-api/pkg/errors"
	"go.uber.org/zap"
)

type fakeRepo struct {
	inserted  []domain.ReviewInput
	approved  []domain.Review
	listCalls int
	insertErr error
}

func (f *fakeRepo) Insert(_ context.Context, userID string, input domain.ReviewInput) (*domain.Review, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, input)
	return &domain.Review{ID: "r1", UserID: userID, AuthorName: input.AuthorName, Rating: input.Rating}, nil
}

func (f *fakeRepo) ListApproved(_ context.Context, _ int) ([]domain.Review, error) {
	f.listCalls++
	return f.approved, nil
}

type fakeCache struct {
	store   map[string][]domain.Review
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]domain.Review)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest any) (bool, error) {
	cached, ok := f.store[key]
	if !ok {
		return false, nil
	}
	*dest.(*[]domain.Review) = cached
	return true, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.store[key] = value.([]domain.Review)
	return nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		f.deleted = append(f.deleted, key)
		delete(f.store, key)
	}
	return nil
}

func TestSubmitRequiresAuth(t *testing.T) {
	svc := NewService(&fakeRepo{}, newFakeCache(), zap.NewNop())

	_, err := svc.Submit(context.Background(), "  ", domain.ReviewInput{AuthorName: "Anna", Rating: 5})
	if _, ok := err.(*apperrors.AuthError); !ok {
		t.Fatalf("expected AuthError, got %T", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := NewService(&fakeRepo{}, newFakeCache(), zap.NewNop())

	cases := []struct {
		name  string
		input domain.ReviewInput
	}{
		{"blank name", domain.ReviewInput{AuthorName: "   ", Rating: 4}},
		{"rating too low", domain.ReviewInput{AuthorName: "Anna", Rating: 0}},
		{"rating too high", domain.ReviewInput{AuthorName: "Anna", Rating: 6}},
	}
	for _, c := range cases {
		_, err := svc.Submit(context.Background(), "user-1", c.input)
		if _, ok := err.(*apperrors.ValidationError); !ok {
			t.Fatalf("%s: expected ValidationError, got %T", c.name, err)
		}
	}
}

func TestSubmitTrimsAndInvalidatesCache(t *testing.T) {
	repo := &fakeRepo{}
	cache := newFakeCache()
	cache.store[listCacheKey] = []domain.Review{{ID: "stale"}}
	svc := NewService(repo, cache, zap.NewNop())

	review, err := svc.Submit(context.Background(), "user-1", domain.ReviewInput{
		AuthorName: "  Anna  ",
		Rating:     5,
		Comment:    " très bien ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if review.AuthorName != "Anna" {
		t.Fatalf("expected trimmed name, got %q", review.AuthorName)
	}
	if len(repo.inserted) != 1 || repo.inserted[0].Comment != "très bien" {
		t.Fatalf("unexpected insert: %+v", repo.inserted)
	}
	if len(cache.deleted) != 1 || cache.deleted[0] != listCacheKey {
		t.Fatalf("expected listing cache invalidation, got %v", cache.deleted)
	}
}

func TestListApprovedCaches(t *testing.T) {
	repo := &fakeRepo{approved: []domain.Review{{ID: "r1"}, {ID: "r2"}}}
	cache := newFakeCache()
	svc := NewService(repo, cache, zap.NewNop())

	first, err := svc.ListApproved(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.ListApproved(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("unexpected listings: %v / %v", first, second)
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected one repository read, got %d", repo.listCalls)
	}
}

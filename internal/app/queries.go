package app

import (
	"context"
	"fmt"
	"time"

	"review_system/internal/domain"
)

// QueryService serves the browse endpoints with a cache in front of the
// repository. Ledger reads skip the cache: each run appends entries and
// operators expect them visible right away.
type QueryService struct {
	repo     domain.ReviewRepository
	ledger   domain.FileLedger
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(repo domain.ReviewRepository, ledger domain.FileLedger, cache domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: repo, ledger: ledger, cache: cache, cacheTTL: ttl}
}

func (s *QueryService) ListReviews(ctx context.Context, q domain.ReviewsQuery) ([]domain.Review, error) {
	key := reviewsKey(q)
	if s.cache != nil {
		var out []domain.Review
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}

	rs, err := s.repo.ListReviews(ctx, q)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		// copy before caching so callers mutating the result never reach the cached slice
		cp := make([]domain.Review, len(rs))
		copy(cp, rs)
		_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	}
	return rs, nil
}

func (s *QueryService) HotelRatings(ctx context.Context, hotelID int64) ([]domain.OverallRating, error) {
	key := fmt.Sprintf("ratings:%d", hotelID)
	if s.cache != nil {
		var out []domain.OverallRating
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}

	ors, err := s.repo.ListHotelRatings(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if len(ors) == 0 {
		return nil, domain.ErrNotFound
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, ors, int(s.cacheTTL.Seconds()))
	}
	return ors, nil
}

func (s *QueryService) ListProcessedFiles(ctx context.Context, limit int) ([]domain.ProcessedFile, error) {
	return s.ledger.ListProcessedFiles(ctx, limit)
}

func reviewsKey(q domain.ReviewsQuery) string {
	if q.HotelID != nil {
		return fmt.Sprintf("reviews:%d:%d", *q.HotelID, q.Limit)
	}
	return fmt.Sprintf("reviews:all:%d", q.Limit)
}

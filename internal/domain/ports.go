package domain

import (
	"context"
	"io"
)

// FileStore is the object-store collaborator.
type FileStore interface {
	// ListFiles returns every object under the configured prefix whose key
	// ends with the configured suffix, following pagination internally.
	ListFiles(ctx context.Context) ([]FileInfo, error)
	// Open returns the object's content stream. The caller must close it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ReviewRepository persists normalized review rows.
type ReviewRepository interface {
	// Write paths
	UpsertReview(ctx context.Context, rv Review) error
	UpsertOverallRating(ctx context.Context, or OverallRating) error

	// Read paths
	ListReviews(ctx context.Context, q ReviewsQuery) ([]Review, error)
	ListHotelRatings(ctx context.Context, hotelID int64) ([]OverallRating, error)
}

// FileLedger records which files are done so later runs skip them.
type FileLedger interface {
	Exists(ctx context.Context, filename string) (bool, error)
	MarkProcessed(ctx context.Context, pf ProcessedFile) error
	ListProcessedFiles(ctx context.Context, limit int) ([]ProcessedFile, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ReviewsQuery filters the review browse endpoint.
type ReviewsQuery struct {
	HotelID *int64
	Limit   int
}

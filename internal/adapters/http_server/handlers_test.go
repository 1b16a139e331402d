package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpserver "review_system/internal/adapters/http_server"
	"review_system/internal/app"
	"review_system/internal/domain"
)

type stubRepo struct {
	reviews []domain.Review
	ratings []domain.OverallRating
}

func (s *stubRepo) UpsertReview(ctx context.Context, r domain.Review) error { return nil }
func (s *stubRepo) UpsertOverallRating(ctx context.Context, o domain.OverallRating) error {
	return nil
}
func (s *stubRepo) ListReviews(ctx context.Context, q domain.ReviewsQuery) ([]domain.Review, error) {
	return s.reviews, nil
}
func (s *stubRepo) ListHotelRatings(ctx context.Context, hotelID int64) ([]domain.OverallRating, error) {
	return s.ratings, nil
}

type stubLedger struct{ files []domain.ProcessedFile }

func (s *stubLedger) Exists(ctx context.Context, filename string) (bool, error) { return false, nil }
func (s *stubLedger) MarkProcessed(ctx context.Context, pf domain.ProcessedFile) error {
	return nil
}
func (s *stubLedger) ListProcessedFiles(ctx context.Context, limit int) ([]domain.ProcessedFile, error) {
	return s.files, nil
}

type stubStore struct {
	files   []domain.FileInfo
	objects map[string]string
	listErr error
}

func (s *stubStore) ListFiles(ctx context.Context) ([]domain.FileInfo, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.files, nil
}
func (s *stubStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.objects[key])), nil
}

func newServer(repo *stubRepo, ledger *stubLedger, store *stubStore) http.Handler {
	srv := httpserver.New()
	h := &httpserver.Handlers{
		Q: app.NewQueryService(repo, ledger, nil, 10*time.Minute),
		P: app.NewProcessingService(store, repo, ledger, nil, 2),
	}
	srv.MountHandlers(h)
	return srv.Mux()
}

func TestHealthz(t *testing.T) {
	mux := newServer(&stubRepo{}, &stubLedger{}, &stubStore{})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rr.Code, rr.Body.String())
	}
}

func TestListReviews_InvalidLimit(t *testing.T) {
	mux := newServer(&stubRepo{}, &stubLedger{}, &stubStore{})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/reviews?limit=0", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("unexpected content type %s", ct)
	}
}

func TestListReviews_InvalidHotelID(t *testing.T) {
	mux := newServer(&stubRepo{}, &stubLedger{}, &stubStore{})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/reviews?hotel_id=abc", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestListReviews_ETagRoundTrip(t *testing.T) {
	rating := 6.4
	repo := &stubRepo{reviews: []domain.Review{{ID: 1, HotelID: 10984, ReviewID: "948353737", ProviderID: 332, Rating: &rating}}}
	mux := newServer(repo, &stubLedger{}, &stubStore{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/reviews?hotel_id=10984", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	etag := rr.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}

	req := httptest.NewRequest("GET", "/v1/reviews?hotel_id=10984", nil)
	req.Header.Set("If-None-Match", etag)
	rr2 := httptest.NewRecorder()
	mux.ServeHTTP(rr2, req)
	if rr2.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", rr2.Code)
	}
}

func TestHotelRatings_BadID(t *testing.T) {
	mux := newServer(&stubRepo{}, &stubLedger{}, &stubStore{})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/hotels/abc/ratings", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHotelRatings_NotFound(t *testing.T) {
	mux := newServer(&stubRepo{}, &stubLedger{}, &stubStore{})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/hotels/404/ratings", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestListFiles_EmptyIsArray(t *testing.T) {
	mux := newServer(&stubRepo{}, &stubLedger{}, &stubStore{})
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/files", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestTriggerProcess_Success(t *testing.T) {
	key := "daily-reviews/a.jl"
	line := `{"hotelId":10984,"comment":{"hotelReviewId":948353737,"providerId":332,"rating":6.4}}`
	store := &stubStore{
		files:   []domain.FileInfo{{Key: key, LastModified: time.Now(), Size: 100}},
		objects: map[string]string{key: line + "\n"},
	}
	mux := newServer(&stubRepo{}, &stubLedger{}, store)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("POST", "/v1/process", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["files_succeeded"] != float64(1) || resp["records_processed"] != float64(1) {
		t.Fatalf("unexpected summary: %v", resp)
	}
	if resp["run_id"] == "" {
		t.Fatalf("missing run_id")
	}
}

func TestTriggerProcess_ListingFailure(t *testing.T) {
	store := &stubStore{listErr: errors.New("bucket unreachable")}
	mux := newServer(&stubRepo{}, &stubLedger{}, store)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest("POST", "/v1/process", nil))
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("unexpected content type %s", ct)
	}
}

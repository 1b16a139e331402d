// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"review_system/internal/app"
	"review_system/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	P *app.ProcessingService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// runResponse mirrors domain.RunSummary with a JSON-friendly duration.
type runResponse struct {
	RunID            string `json:"run_id"`
	FilesListed      int    `json:"files_listed"`
	FilesSkipped     int    `json:"files_skipped"`
	FilesDispatched  int    `json:"files_dispatched"`
	FilesSucceeded   int    `json:"files_succeeded"`
	FilesFailed      int    `json:"files_failed"`
	RecordsProcessed int    `json:"records_processed"`
	DurationMs       int64  `json:"duration_ms"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Group(func(r chi.Router) {
		r.Use(Timeout(15 * time.Second))
		r.Get("/v1/reviews", h.listReviews)
		r.Get("/v1/hotels/{id}/ratings", h.hotelRatings)
		r.Get("/v1/files", h.listFiles)
	})

	// Ingestion runs synchronously and can take minutes on a large bucket,
	// so the trigger stays outside the read-timeout group.
	s.mux.Post("/v1/process", h.triggerProcess)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) triggerProcess(w http.ResponseWriter, r *http.Request) {
	sum, err := h.P.ProcessAllFiles(r.Context())
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Processing Failed", err.Error())
		return
	}

	resp := runResponse{
		RunID:            sum.RunID,
		FilesListed:      sum.FilesListed,
		FilesSkipped:     sum.FilesSkipped,
		FilesDispatched:  sum.FilesDispatched,
		FilesSucceeded:   sum.FilesSucceeded,
		FilesFailed:      sum.FilesFailed,
		RecordsProcessed: sum.RecordsProcessed,
		DurationMs:       sum.Duration.Milliseconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to write process response")
	}
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	q := domain.ReviewsQuery{Limit: 50}

	if hs := r.URL.Query().Get("hotel_id"); hs != "" {
		id, err := strconv.ParseInt(hs, 10, 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid hotel_id", "hotel_id must be a number")
			return
		}
		q.HotelID = &id
	}
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		q.Limit = l
	}

	out, err := h.Q.ListReviews(r.Context(), q)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not list reviews")
		return
	}
	if out == nil {
		out = []domain.Review{}
	}

	etag, body := calcETagAndBody(out)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listReviews body")
	}
}

func (h *Handlers) hotelRatings(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}

	out, err := h.Q.HotelRatings(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "no ratings for hotel")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not load ratings")
		return
	}

	etag, body := calcETagAndBody(out)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write ratings body")
	}
}

func (h *Handlers) listFiles(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 500 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 500")
			return
		}
		limit = l
	}

	out, err := h.Q.ListProcessedFiles(r.Context(), limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not list processed files")
		return
	}
	if out == nil {
		out = []domain.ProcessedFile{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Error().Err(err).Msg("failed to write files body")
	}
}

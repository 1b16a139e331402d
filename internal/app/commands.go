package app

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_system/internal/adapters/observability"
	"review_system/internal/domain"
)

// maxLineBytes bounds a single JSONL line; a line past this aborts the file.
const maxLineBytes = 1 << 20

// ProcessingService drives one batch run: list candidate files, drop the
// ones already in the ledger, and process the rest under a bounded worker
// pool. Per-file work is isolated so one file's failure never touches
// another file.
type ProcessingService struct {
	store   domain.FileStore
	repo    domain.ReviewRepository
	ledger  domain.FileLedger
	cache   domain.Cache
	workers int
}

func NewProcessingService(store domain.FileStore, repo domain.ReviewRepository, ledger domain.FileLedger, cache domain.Cache, workers int) *ProcessingService {
	if workers <= 0 {
		workers = 5
	}
	return &ProcessingService{store: store, repo: repo, ledger: ledger, cache: cache, workers: workers}
}

// ProcessAllFiles runs one batch end to end and reports aggregate totals.
// A listing or ledger-filter failure aborts the run before any file is
// touched. Per-file failures only show up in the summary counts and logs;
// those files stay out of the ledger and are retried on the next run.
func (s *ProcessingService) ProcessAllFiles(ctx context.Context) (domain.RunSummary, error) {
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()
	start := time.Now()

	logger.Info().Msg("starting review processing")

	files, err := s.store.ListFiles(ctx)
	if err != nil {
		observability.ObserveRun("failure", time.Since(start))
		return domain.RunSummary{RunID: runID}, fmt.Errorf("list review files: %w", err)
	}

	newFiles := make([]domain.FileInfo, 0, len(files))
	for _, f := range files {
		done, err := s.ledger.Exists(ctx, f.Key)
		if err != nil {
			observability.ObserveRun("failure", time.Since(start))
			return domain.RunSummary{RunID: runID}, fmt.Errorf("ledger lookup for %s: %w", f.Key, err)
		}
		if !done {
			newFiles = append(newFiles, f)
		}
	}
	logger.Info().Int("total", len(files)).Int("new", len(newFiles)).Msg("candidate files filtered")

	// Bounded fan-out. Results flow back over the channel and are summed
	// after all workers finish, so no worker touches a shared counter.
	sem := semaphore.NewWeighted(int64(s.workers))
	var wg sync.WaitGroup
	results := make(chan domain.ProcessingResult, len(newFiles))

	dispatched := 0
	for _, f := range newFiles {
		f := f

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			logger.Warn().Err(err).Msg("dispatch interrupted")
			break
		}
		dispatched++

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			results <- s.processFile(ctx, logger, f)
		}()
	}

	wg.Wait()
	close(results)

	summary := domain.RunSummary{
		RunID:           runID,
		FilesListed:     len(files),
		FilesSkipped:    len(files) - len(newFiles),
		FilesDispatched: dispatched,
	}
	for r := range results {
		if r.Success {
			summary.FilesSucceeded++
		} else {
			summary.FilesFailed++
		}
		summary.RecordsProcessed += r.RecordsProcessed
	}
	summary.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		observability.ObserveRun("failure", summary.Duration)
		return summary, err
	}

	observability.ObserveRun("success", summary.Duration)
	logger.Info().
		Int("files", summary.FilesDispatched).
		Int("failed", summary.FilesFailed).
		Int("records", summary.RecordsProcessed).
		Dur("duration", summary.Duration).
		Msg("processing completed")
	return summary, nil
}

// processFile handles exactly one file and always returns a result; no
// error escapes this boundary. The ledger is marked only after the stream
// was read to the end, so a file that could not be opened or broke mid-read
// stays eligible for the next run.
func (s *ProcessingService) processFile(ctx context.Context, logger zerolog.Logger, f domain.FileInfo) domain.ProcessingResult {
	start := time.Now()
	flog := logger.With().Str("file", f.Key).Logger()
	flog.Info().Int64("size", f.Size).Msg("processing file")

	fail := func(err error, processed int) domain.ProcessingResult {
		dur := time.Since(start)
		observability.ObserveFile("failure", dur)
		flog.Error().Err(err).Int("records", processed).Msg("file processing failed")
		return domain.ProcessingResult{
			Filename:         f.Key,
			RecordsProcessed: processed,
			Duration:         dur,
			Error:            err.Error(),
		}
	}

	rc, err := s.store.Open(ctx, f.Key)
	if err != nil {
		return fail(fmt.Errorf("open: %w", err), 0)
	}
	defer rc.Close()

	processed := 0
	hotels := make(map[int64]struct{})

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		rec, err := parseRecord([]byte(line))
		if err != nil {
			flog.Error().Err(err).Int("line", lineNo).Msg("failed to parse line")
			observability.RejectLine("parse")
			continue
		}
		if !rec.valid() {
			flog.Warn().Int("line", lineNo).Msg("invalid review data")
			observability.RejectLine("invalid")
			continue
		}

		if err := s.storeRecord(ctx, rec, f.Key); err != nil {
			flog.Error().Err(err).Int("line", lineNo).Msg("failed to store record")
			observability.RejectLine("store")
			continue
		}
		processed++
		hotels[*rec.HotelID] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return fail(fmt.Errorf("read: %w", err), processed)
	}

	dur := time.Since(start)
	if err := s.ledger.MarkProcessed(ctx, domain.ProcessedFile{
		Filename:             f.Key,
		ProcessedAt:          time.Now().UTC(),
		RecordsProcessed:     processed,
		ProcessingDurationMs: dur.Milliseconds(),
	}); err != nil {
		return fail(fmt.Errorf("mark processed: %w", err), processed)
	}

	// Fresh rows make the cached browse variants for these hotels stale.
	if s.cache != nil {
		for id := range hotels {
			s.invalidateHotel(ctx, id)
		}
	}

	observability.ObserveFile("success", dur)
	observability.AddRecordsProcessed(processed)
	flog.Info().Int("records", processed).Dur("duration", dur).Msg("file processed")
	return domain.ProcessingResult{
		Filename:         f.Key,
		RecordsProcessed: processed,
		Duration:         dur,
		Success:          true,
	}
}

// storeRecord upserts the review and any provider aggregates for one line.
func (s *ProcessingService) storeRecord(ctx context.Context, rec ReviewRecord, sourceFile string) error {
	if err := s.repo.UpsertReview(ctx, mapReview(rec, sourceFile)); err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}
	for _, or := range mapOverallRatings(rec) {
		if err := s.repo.UpsertOverallRating(ctx, or); err != nil {
			return fmt.Errorf("upsert overall rating for provider %d: %w", or.ProviderID, err)
		}
	}
	return nil
}

// invalidateHotel drops the common cached browse variants for one hotel.
func (s *ProcessingService) invalidateHotel(ctx context.Context, hotelID int64) {
	_ = s.cache.Del(ctx, fmt.Sprintf("ratings:%d", hotelID))
	for _, lim := range []int{50, 100, 200} {
		_ = s.cache.Del(ctx, fmt.Sprintf("reviews:%d:%d", hotelID, lim))
		_ = s.cache.Del(ctx, fmt.Sprintf("reviews:all:%d", lim))
	}
}

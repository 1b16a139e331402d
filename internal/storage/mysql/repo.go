package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"review_system/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

// Repo implements both the review repository and the processed-file ledger
// on one *sql.DB.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertReview(ctx context.Context, rv domain.Review) error {
	_, err := r.db.ExecContext(ctx, upsertReviewSQL,
		rv.HotelID,
		valStr(rv.Platform),
		valStr(rv.HotelName),
		rv.ReviewID,
		rv.ProviderID,
		valF64(rv.Rating),
		valStr(rv.ReviewTitle),
		valStr(rv.ReviewComments),
		valTime(rv.ReviewDate),
		valStr(rv.CheckInDate),
		valStr(rv.ReviewerCountry),
		valStr(rv.ReviewerName),
		valStr(rv.RoomType),
		valInt(rv.LengthOfStay),
		valStr(rv.ReviewGroupName),
		valStr(rv.TranslateSource),
		valStr(rv.TranslateTarget),
		rv.SourceFile,
	)
	return err
}

func (r *Repo) UpsertOverallRating(ctx context.Context, or domain.OverallRating) error {
	var grades any
	if len(or.Grades) > 0 {
		b, _ := json.Marshal(or.Grades)
		grades = string(b)
	}
	_, err := r.db.ExecContext(ctx, upsertOverallRatingSQL,
		or.HotelID,
		or.ProviderID,
		valStr(or.Provider),
		valF64(or.OverallScore),
		valInt(or.ReviewCount),
		grades,
	)
	return err
}

func (r *Repo) ListReviews(ctx context.Context, q domain.ReviewsQuery) ([]domain.Review, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if q.HotelID != nil {
		rows, err = r.db.QueryContext(ctx, listReviewsByHotelSQL, *q.HotelID, q.Limit)
	} else {
		rows, err = r.db.QueryContext(ctx, listReviewsSQL, q.Limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func scanReview(rows *sql.Rows) (domain.Review, error) {
	var rv domain.Review
	var (
		platform, hotelName sql.NullString
		rating              sql.NullFloat64
		title, comments     sql.NullString
		reviewDate          sql.NullTime
		checkIn, country    sql.NullString
		reviewer, room      sql.NullString
		lengthOfStay        sql.NullInt64
		group, trSrc, trDst sql.NullString
	)
	if err := rows.Scan(
		&rv.ID,
		&rv.HotelID,
		&platform,
		&hotelName,
		&rv.ReviewID,
		&rv.ProviderID,
		&rating,
		&title,
		&comments,
		&reviewDate,
		&checkIn,
		&country,
		&reviewer,
		&room,
		&lengthOfStay,
		&group,
		&trSrc,
		&trDst,
		&rv.SourceFile,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	); err != nil {
		return domain.Review{}, err
	}

	if platform.Valid {
		s := platform.String
		rv.Platform = &s
	}
	if hotelName.Valid {
		s := hotelName.String
		rv.HotelName = &s
	}
	if rating.Valid {
		f := rating.Float64
		rv.Rating = &f
	}
	if title.Valid {
		s := title.String
		rv.ReviewTitle = &s
	}
	if comments.Valid {
		s := comments.String
		rv.ReviewComments = &s
	}
	if reviewDate.Valid {
		t := reviewDate.Time
		rv.ReviewDate = &t
	}
	if checkIn.Valid {
		s := checkIn.String
		rv.CheckInDate = &s
	}
	if country.Valid {
		s := country.String
		rv.ReviewerCountry = &s
	}
	if reviewer.Valid {
		s := reviewer.String
		rv.ReviewerName = &s
	}
	if room.Valid {
		s := room.String
		rv.RoomType = &s
	}
	if lengthOfStay.Valid {
		n := int(lengthOfStay.Int64)
		rv.LengthOfStay = &n
	}
	if group.Valid {
		s := group.String
		rv.ReviewGroupName = &s
	}
	if trSrc.Valid {
		s := trSrc.String
		rv.TranslateSource = &s
	}
	if trDst.Valid {
		s := trDst.String
		rv.TranslateTarget = &s
	}
	return rv, nil
}

func (r *Repo) ListHotelRatings(ctx context.Context, hotelID int64) ([]domain.OverallRating, error) {
	rows, err := r.db.QueryContext(ctx, listHotelRatingsSQL, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OverallRating
	for rows.Next() {
		var or domain.OverallRating
		var (
			provider   sql.NullString
			score      sql.NullFloat64
			count      sql.NullInt64
			gradesJSON []byte
		)
		if err := rows.Scan(
			&or.ID,
			&or.HotelID,
			&or.ProviderID,
			&provider,
			&score,
			&count,
			&gradesJSON,
			&or.CreatedAt,
			&or.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if provider.Valid {
			s := provider.String
			or.Provider = &s
		}
		if score.Valid {
			f := score.Float64
			or.OverallScore = &f
		}
		if count.Valid {
			n := int(count.Int64)
			or.ReviewCount = &n
		}
		if len(gradesJSON) > 0 {
			_ = json.Unmarshal(gradesJSON, &or.Grades)
		}
		out = append(out, or)
	}
	return out, rows.Err()
}

// ---- processed-file ledger ----

func (r *Repo) Exists(ctx context.Context, filename string) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, existsProcessedSQL, filename).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *Repo) MarkProcessed(ctx context.Context, pf domain.ProcessedFile) error {
	_, err := r.db.ExecContext(ctx, markProcessedSQL,
		pf.Filename,
		pf.ProcessedAt,
		pf.RecordsProcessed,
		pf.ProcessingDurationMs,
	)
	return err
}

func (r *Repo) ListProcessedFiles(ctx context.Context, limit int) ([]domain.ProcessedFile, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, listProcessedFilesSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ProcessedFile
	for rows.Next() {
		var pf domain.ProcessedFile
		if err := rows.Scan(&pf.ID, &pf.Filename, &pf.ProcessedAt, &pf.RecordsProcessed, &pf.ProcessingDurationMs); err != nil {
			return nil, err
		}
		out = append(out, pf)
	}
	return out, rows.Err()
}

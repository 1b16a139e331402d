package app

import (
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"review_system/internal/domain"
)

// reviewDateLayout matches ISO-8601 timestamps with a numeric offset,
// e.g. "2025-04-10T05:37:00+07:00".
const reviewDateLayout = time.RFC3339

// mapReview builds the persisted review row from a validated record. The
// natural key is (decimal string of comment.hotelReviewId, providerId).
// An unparseable review date is logged and stored as nil; it never fails
// the line.
func mapReview(rec ReviewRecord, sourceFile string) domain.Review {
	c := rec.Comment

	var reviewDate *time.Time
	if c.ReviewDate != nil {
		if t, err := time.Parse(reviewDateLayout, *c.ReviewDate); err == nil {
			reviewDate = &t
		} else {
			log.Warn().Str("review_date", *c.ReviewDate).Msg("failed to parse review date")
		}
	}

	rv := domain.Review{
		HotelID:         *rec.HotelID,
		Platform:        rec.Platform,
		HotelName:       rec.HotelName,
		ReviewID:        strconv.FormatInt(*c.HotelReviewID, 10),
		ProviderID:      *c.ProviderID,
		Rating:          c.Rating,
		ReviewTitle:     c.ReviewTitle,
		ReviewComments:  c.ReviewComments,
		ReviewDate:      reviewDate,
		CheckInDate:     c.CheckInDateMonthAndYear,
		TranslateSource: c.TranslateSource,
		TranslateTarget: c.TranslateTarget,
		SourceFile:      sourceFile,
	}

	// Reviewer info is optional; when the block is absent every field stays nil.
	if ri := c.ReviewerInfo; ri != nil {
		rv.ReviewerCountry = ri.CountryName
		rv.ReviewerName = ri.DisplayMemberName
		rv.RoomType = ri.RoomTypeName
		rv.LengthOfStay = ri.LengthOfStay
		rv.ReviewGroupName = ri.ReviewGroupName
	}
	return rv
}

// mapOverallRatings builds one aggregate row per provider entry. An entry
// without a provider id cannot satisfy the (hotelId, providerId) key and is
// skipped with a warning.
func mapOverallRatings(rec ReviewRecord) []domain.OverallRating {
	if len(rec.OverallByProviders) == 0 {
		return nil
	}
	out := make([]domain.OverallRating, 0, len(rec.OverallByProviders))
	for _, p := range rec.OverallByProviders {
		if p.ProviderID == nil {
			log.Warn().Int64("hotel_id", *rec.HotelID).Msg("provider aggregate without providerId skipped")
			continue
		}
		out = append(out, domain.OverallRating{
			HotelID:      *rec.HotelID,
			ProviderID:   *p.ProviderID,
			Provider:     p.Provider,
			OverallScore: p.OverallScore,
			ReviewCount:  p.ReviewCount,
			Grades:       p.Grades,
		})
	}
	return out
}

package domain

import "time"

// Review is one guest review row. (ReviewID, ProviderID) is the natural key:
// re-ingesting the same pair updates the existing row instead of duplicating it.
type Review struct {
	ID              int64
	HotelID         int64
	Platform        *string
	HotelName       *string
	ReviewID        string
	ProviderID      int64
	Rating          *float64
	ReviewTitle     *string
	ReviewComments  *string
	ReviewDate      *time.Time // nil when the source date was absent or unparseable
	CheckInDate     *string
	ReviewerCountry *string
	ReviewerName    *string
	RoomType        *string
	LengthOfStay    *int
	ReviewGroupName *string
	TranslateSource *string
	TranslateTarget *string
	SourceFile      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OverallRating is a provider-level aggregate for one hotel, keyed by
// (HotelID, ProviderID). Grades maps grade name to score and is stored
// as a JSON column.
type OverallRating struct {
	ID           int64
	HotelID      int64
	ProviderID   int64
	Provider     *string
	OverallScore *float64
	ReviewCount  *int
	Grades       map[string]float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

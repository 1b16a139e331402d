package app

import "encoding/json"

// ReviewRecord is one decoded JSONL line from the review feed. Pointer
// fields model absent or null values so validation can tell "missing"
// apart from a zero value.
type ReviewRecord struct {
	HotelID            *int64              `json:"hotelId"`
	Platform           *string             `json:"platform"`
	HotelName          *string             `json:"hotelName"`
	Comment            *CommentBlock       `json:"comment"`
	OverallByProviders []ProviderAggregate `json:"overallByProviders"`
}

type CommentBlock struct {
	HotelReviewID           *int64        `json:"hotelReviewId"`
	ProviderID              *int64        `json:"providerId"`
	Rating                  *float64      `json:"rating"`
	CheckInDateMonthAndYear *string       `json:"checkInDateMonthAndYear"`
	ReviewTitle             *string       `json:"reviewTitle"`
	ReviewComments          *string       `json:"reviewComments"`
	ReviewDate              *string       `json:"reviewDate"`
	TranslateSource         *string       `json:"translateSource"`
	TranslateTarget         *string       `json:"translateTarget"`
	ReviewerInfo            *ReviewerInfo `json:"reviewerInfo"`
}

type ReviewerInfo struct {
	CountryName       *string `json:"countryName"`
	DisplayMemberName *string `json:"displayMemberName"`
	ReviewGroupName   *string `json:"reviewGroupName"`
	RoomTypeName      *string `json:"roomTypeName"`
	LengthOfStay      *int    `json:"lengthOfStay"`
}

type ProviderAggregate struct {
	ProviderID   *int64             `json:"providerId"`
	Provider     *string            `json:"provider"`
	OverallScore *float64           `json:"overallScore"`
	ReviewCount  *int               `json:"reviewCount"`
	Grades       map[string]float64 `json:"grades"`
}

// parseRecord decodes one trimmed, non-blank line. Malformed JSON and type
// mismatches surface as errors; unknown fields are ignored.
func parseRecord(line []byte) (ReviewRecord, error) {
	var rec ReviewRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return ReviewRecord{}, err
	}
	return rec, nil
}

// valid reports whether the record carries everything the natural key and
// the hotel linkage need: hotelId, the comment block, its review id and
// provider id. Everything else is optional.
func (r ReviewRecord) valid() bool {
	return r.HotelID != nil &&
		r.Comment != nil &&
		r.Comment.HotelReviewID != nil &&
		r.Comment.ProviderID != nil
}

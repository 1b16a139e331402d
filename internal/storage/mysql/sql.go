package mysql

// Re-ingesting a (review_id, provider_id) pair refreshes only the fields a
// provider actually revises; identity and provenance columns keep their
// first-seen values.
const upsertReviewSQL = `
INSERT INTO reviews
  (hotel_id, platform, hotel_name, review_id, provider_id, rating, review_title,
   review_comments, review_date, check_in_date, reviewer_country, reviewer_name,
   room_type, length_of_stay, review_group_name, translate_source, translate_target,
   source_file)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  rating          = VALUES(rating),
  review_comments = VALUES(review_comments),
  updated_at      = CURRENT_TIMESTAMP
`

const upsertOverallRatingSQL = `
INSERT INTO overall_ratings
  (hotel_id, provider_id, provider, overall_score, review_count, grades)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  overall_score = VALUES(overall_score),
  review_count  = VALUES(review_count),
  grades        = VALUES(grades),
  updated_at    = CURRENT_TIMESTAMP
`

// The ledger is append-only: a second mark for the same filename is a no-op,
// so the original processed_at and counts survive concurrent markers.
const markProcessedSQL = `
INSERT INTO processed_files
  (filename, processed_at, records_processed, processing_duration_ms)
VALUES
  (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE id = id
`

const existsProcessedSQL = `SELECT EXISTS(SELECT 1 FROM processed_files WHERE filename = ?)`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const listReviewsSQL = `
SELECT id, hotel_id, platform, hotel_name, review_id, provider_id, rating,
       review_title, review_comments, review_date, check_in_date, reviewer_country,
       reviewer_name, room_type, length_of_stay, review_group_name,
       translate_source, translate_target, source_file, created_at, updated_at
FROM reviews
ORDER BY created_at DESC, id DESC
LIMIT ?
`

const listReviewsByHotelSQL = `
SELECT id, hotel_id, platform, hotel_name, review_id, provider_id, rating,
       review_title, review_comments, review_date, check_in_date, reviewer_country,
       reviewer_name, room_type, length_of_stay, review_group_name,
       translate_source, translate_target, source_file, created_at, updated_at
FROM reviews
WHERE hotel_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`

const listHotelRatingsSQL = `
SELECT id, hotel_id, provider_id, provider, overall_score, review_count, grades,
       created_at, updated_at
FROM overall_ratings
WHERE hotel_id = ?
ORDER BY provider_id
`

const listProcessedFilesSQL = `
SELECT id, filename, processed_at, records_processed, processing_duration_ms
FROM processed_files
ORDER BY processed_at DESC, id DESC
LIMIT ?
`

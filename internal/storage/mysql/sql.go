package mysql

// -----------------------------------------------------------------------------
// LISTINGS
// -----------------------------------------------------------------------------

const listingColumns = `id, title, description, location, price_per_night, max_guests, created_at, updated_at`

const listListingsSQL = `
SELECT ` + listingColumns + `
FROM listings
ORDER BY created_at DESC, id DESC
`

const getListingSQL = `
SELECT ` + listingColumns + `
FROM listings
WHERE id = ?
`

const insertListingSQL = `
INSERT INTO listings
  (title, description, location, price_per_night, max_guests)
VALUES
  (?, ?, ?, ?, ?)
`

const updateListingSQL = `
UPDATE listings SET
  title           = ?,
  description     = ?,
  location        = ?,
  price_per_night = ?,
  max_guests      = ?,
  updated_at      = CURRENT_TIMESTAMP(6)
WHERE id = ?
`

const deleteListingSQL = `DELETE FROM listings WHERE id = ?`

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

// listing_title is joined so reads never need a second query.
const selectBookingsSQL = `
SELECT
  b.id,
  b.listing_id,
  l.title,
  b.guest_name,
  b.guest_email,
  b.start_date,
  b.end_date,
  b.total_price,
  b.status,
  b.created_at,
  b.updated_at
FROM bookings b
JOIN listings l ON l.id = b.listing_id
`

const orderBookingsSQL = ` ORDER BY b.created_at DESC, b.id DESC`

const insertBookingSQL = `
INSERT INTO bookings
  (listing_id, guest_name, guest_email, start_date, end_date, total_price, status)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

const updateBookingSQL = `
UPDATE bookings SET
  listing_id  = ?,
  guest_name  = ?,
  guest_email = ?,
  start_date  = ?,
  end_date    = ?,
  total_price = ?,
  status      = ?,
  updated_at  = CURRENT_TIMESTAMP(6)
WHERE id = ?
`

const deleteBookingSQL = `DELETE FROM bookings WHERE id = ?`

// -----------------------------------------------------------------------------
// REVIEWS
// -----------------------------------------------------------------------------

const selectReviewsSQL = `
SELECT id, listing_id, reviewer_name, rating, comment, created_at
FROM reviews
`

const orderReviewsSQL = ` ORDER BY created_at DESC, id DESC`

const insertReviewSQL = `
INSERT INTO reviews
  (listing_id, reviewer_name, rating, comment)
VALUES
  (?, ?, ?, ?)
`

const updateReviewSQL = `
UPDATE reviews SET
  listing_id    = ?,
  reviewer_name = ?,
  rating        = ?,
  comment       = ?
WHERE id = ?
`

const deleteReviewSQL = `DELETE FROM reviews WHERE id = ?`

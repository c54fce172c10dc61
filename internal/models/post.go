package models

import (
	"time"

	"github.com/lib/pq"
)

// Post is a property listing owned by exactly one user.
type Post struct {
	ID          int            `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Price       int            `db:"price" json:"price"`
	Images      pq.StringArray `db:"images" json:"images"`
	Address     string         `db:"address" json:"address"`
	City        string         `db:"city" json:"city"`
	Bedrooms    int            `db:"bedrooms" json:"bedrooms"`
	Bathrooms   int            `db:"bathrooms" json:"bathrooms"`
	Latitude    string         `db:"latitude" json:"latitude"`
	Longitude   string         `db:"longitude" json:"longitude"`
	Type        string         `db:"type" json:"type"`
	Property    string         `db:"property" json:"property"`
	Description string         `db:"description" json:"description"`
	UserID      int            `db:"user_id" json:"userId"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`

	// IsSaved is only set for authenticated callers; anonymous callers
	// receive no annotation at all.
	IsSaved *bool        `db:"-" json:"isSaved,omitempty"`
	User    *UserSummary `db:"-" json:"user,omitempty"`
}

// PostFilter is a conjunction of optional search criteria. Zero values mean
// the criterion is not applied; the price range always applies with its
// defaults.
type PostFilter struct {
	City      string
	Type      string
	Property  string
	Bedrooms  int
	Bathrooms int
	MinPrice  int
	MaxPrice  int
}

// DefaultMaxPrice is the open upper bound used when maxPrice is unspecified.
const DefaultMaxPrice = 10000000

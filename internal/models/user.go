package models

import "time"

// User is a registered account. The password hash never leaves the API.
type User struct {
	ID          int       `db:"id" json:"id"`
	Email       string    `db:"email" json:"email"`
	Password    string    `db:"password" json:"-"`
	FirstName   string    `db:"first_name" json:"firstName"`
	LastName    string    `db:"last_name" json:"lastName"`
	Avatar      string    `db:"avatar" json:"avatar"`
	PhoneNumber string    `db:"phone_number" json:"phoneNumber"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// UserSummary is the narrow projection attached to posts and chats.
type UserSummary struct {
	ID          int    `db:"id" json:"id"`
	FirstName   string `db:"first_name" json:"firstName"`
	LastName    string `db:"last_name" json:"lastName"`
	Avatar      string `db:"avatar" json:"avatar"`
	PhoneNumber string `db:"phone_number" json:"phoneNumber,omitempty"`
}

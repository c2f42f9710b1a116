package models

import "time"

// User represents an application account stored in the users table. Only the
// verification flag participates in tutor search; authentication lives in a
// separate system.
type User struct {
	ID              string    `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`
	FullName        string    `db:"full_name" json:"full_name"`
	IsEmailVerified bool      `db:"is_email_verified" json:"is_email_verified"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

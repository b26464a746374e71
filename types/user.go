package types

import "time"

// User represents an account in the system.
// It contains identity, profile, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID ID `json:"id" db:"id"`

	// Fullname is the user's display or full name.
	Fullname string `json:"fullname" db:"fullname"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's unique email address, used for login.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password"`

	// ImagePhoto is the stored filename of the user's profile image.
	ImagePhoto string `json:"image_photo" db:"image_photo"`

	// Phone is the user's phone number, if provided.
	Phone *string `json:"phone" db:"phone"`

	// Address is the user's address, if provided.
	Address *string `json:"address" db:"address"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserSummary is the reduced user listing used by selection dropdowns.
type UserSummary struct {
	ID       ID     `json:"id" db:"id"`
	Fullname string `json:"fullname" db:"fullname"`
}

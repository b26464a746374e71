package types

// Farmer is a farm owner registered under a user account.
type Farmer struct {
	ID       ID      `json:"id" db:"id"`
	UserID   ID      `json:"user_id" db:"user_id"`
	FullName string  `json:"full_name" db:"full_name"`
	Gender   string  `json:"gender" db:"gender"`
	Phone    *string `json:"phone" db:"phone"`
	Email    *string `json:"email" db:"email"`
	Address  *string `json:"address" db:"address"`
}

package models

import "time"

// Expense is a single dated spending record.
type Expense struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	SpentDate string    `json:"spent_date"`
	Category  string    `json:"category"`
	Amount    int64     `json:"amount"`
	Memo      string    `json:"memo"`
	CreatedAt time.Time `json:"created_at"`
}

// User is a registered account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

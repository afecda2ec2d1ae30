package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// User is a registered account. The password hash never leaves the server.
	User struct {
		ID           int64     `json:"id"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
	}

	// Expense is a single spending record owned by one user.
	// Expenses are created and deleted, never edited in place.
	Expense struct {
		ID          int64     `json:"id"`
		UserID      int64     `json:"-"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		CreatedAt   time.Time `json:"created_at"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyCategory      = errors.New("empty category")
	ErrCategoryTooLong    = errors.New("category too long (max 64 characters)")
	ErrDescriptionTooLong = errors.New("description too long (max 255 characters)")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmptyPassword      = errors.New("empty password")
)

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Category) > 64 {
		return ErrCategoryTooLong
	}
	if len(e.Description) > 255 {
		return ErrDescriptionTooLong
	}
	if e.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateCredentials checks registration/login input before it reaches
// storage or hashing.
func ValidateCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") || len(email) > 255 {
		return ErrInvalidEmail
	}
	if password == "" {
		return ErrEmptyPassword
	}
	return nil
}

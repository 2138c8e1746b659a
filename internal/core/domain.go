package core

import (
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	// TransactionType is the direction of a monetary event.
	TransactionType string

	// User is an account holder. PasswordHash is never serialized.
	User struct {
		ID           int64     `json:"id"`
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	// Category is a named grouping of transactions owned by a user.
	Category struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		UserID int64  `json:"userId"`
	}

	// Transaction is a single monetary event. Category and User are
	// populated on reads that join the owning rows.
	Transaction struct {
		ID         int64           `json:"id"`
		Title      string          `json:"title"`
		Amount     float64         `json:"amount"`
		Type       TransactionType `json:"type"`
		UserID     int64           `json:"userId"`
		CategoryID int64           `json:"categoryId"`
		CreatedAt  time.Time       `json:"createdAt"`
		Category   *Category       `json:"category,omitempty"`
		User       *User           `json:"user,omitempty"`
	}

	// TransactionUpdate carries the fields of a partial update. Nil
	// pointers mean "leave unchanged".
	TransactionUpdate struct {
		Title      *string
		Amount     *float64
		Type       *TransactionType
		CategoryID *int64
	}
)

// Valid reports whether the type is one of the two enumerated values.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Validate checks the invariants enforced before a transaction reaches
// the store: non-empty title, positive amount, enumerated type. The sign
// of the stored amount is reconciled with Type for display only.
func (t Transaction) Validate() error {
	ve := NewValidationError()
	if strings.TrimSpace(t.Title) == "" {
		ve.Add("title", "must not be empty")
	}
	if t.Amount <= 0 {
		ve.Add("amount", "must be a positive number")
	}
	if !t.Type.Valid() {
		ve.Add("type", `must be "income" or "expense"`)
	}
	if t.CategoryID <= 0 {
		ve.Add("categoryId", "must reference a category")
	}
	return ve.OrNil()
}

// Validate checks the update fields that were actually supplied.
func (u TransactionUpdate) Validate() error {
	ve := NewValidationError()
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		ve.Add("title", "must not be empty")
	}
	if u.Amount != nil && *u.Amount <= 0 {
		ve.Add("amount", "must be a positive number")
	}
	if u.Type != nil && !u.Type.Valid() {
		ve.Add("type", `must be "income" or "expense"`)
	}
	if u.CategoryID != nil && *u.CategoryID <= 0 {
		ve.Add("categoryId", "must reference a category")
	}
	return ve.OrNil()
}

// Empty reports whether the update carries no fields at all.
func (u TransactionUpdate) Empty() bool {
	return u.Title == nil && u.Amount == nil && u.Type == nil && u.CategoryID == nil
}

// Validate checks category invariants at the service boundary.
func (c Category) Validate() error {
	ve := NewValidationError()
	if strings.TrimSpace(c.Name) == "" {
		ve.Add("name", "must not be empty")
	}
	return ve.OrNil()
}

// ValidEmail is a deliberately loose check: one "@" with something on
// both sides. Anything stricter belongs in a confirmation mail flow.
func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\n")
}

// SignedAmount returns the amount with the sign implied by the type:
// negative for expenses, positive for income.
func (t Transaction) SignedAmount() float64 {
	amt := t.Amount
	if amt < 0 {
		amt = -amt
	}
	if t.Type == Expense {
		return -amt
	}
	return amt
}

package core

import (
	"strings"
	"time"
)

type (
	// CreditCard holds the billing parameters the invoice engine derives
	// cycles from. ClosingDay and DueDay are days of month (1-31); when a
	// month is shorter they clamp to its last day. The available limit is
	// never stored: it is recomputed from the outstanding invoice balance.
	CreditCard struct {
		ID         int64
		UserID     int64
		Name       string
		LimitCents int64
		ClosingDay int
		DueDay     int
	}

	// Transaction is a single card charge. Amounts are signed cents;
	// purchases are positive. Immutable once recorded.
	Transaction struct {
		ID          int64
		CardID      int64
		Date        time.Time
		Description string
		Amount      Money
	}

	// User owns cards. Registration stores only the bcrypt hash.
	User struct {
		ID           int64
		Name         string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}
)

// Validate rejects malformed billing parameters at the boundary so the
// date arithmetic deeper in never sees them.
func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Validationf("card name is empty")
	}
	if len(c.Name) > 100 {
		return Validationf("card name too long (max 100 characters)")
	}
	if c.LimitCents <= 0 {
		return Validationf("card limit must be positive")
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return Validationf("closing day %d out of range 1-31", c.ClosingDay)
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return Validationf("due day %d out of range 1-31", c.DueDay)
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.CardID == 0 {
		return Validationf("transaction has no card")
	}
	if t.Date.IsZero() {
		return Validationf("transaction date is zero")
	}
	if strings.TrimSpace(t.Description) == "" {
		return Validationf("transaction description is empty")
	}
	if len(t.Description) > 200 {
		return Validationf("transaction description too long (max 200 characters)")
	}
	if t.Amount.Cents == 0 {
		return Validationf("transaction amount is zero")
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return Validationf("user name is empty")
	}
	email := strings.TrimSpace(u.Email)
	if email == "" || !strings.Contains(email, "@") {
		return Validationf("invalid email %q", u.Email)
	}
	if u.PasswordHash == "" {
		return Validationf("user password hash is empty")
	}
	return nil
}

// NewDate builds a midnight-UTC date. All billing arithmetic works on
// whole days in UTC.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// DateOnly truncates a timestamp to its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

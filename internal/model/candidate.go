// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date wire format used everywhere in the app.
// Expense dates carry no time-of-day component.
const DateLayout = "2006-01-02"

// ExpenseCandidate is a single transaction extracted from free text, awaiting
// human review. It is transient: candidates live only inside a review session
// until they are committed as Expense rows or discarded.
type ExpenseCandidate struct {
	Item          string  `json:"item"`
	Amount        int64   `json:"amount"`
	CategoryLabel string  `json:"category"`
	CategoryID    *int64  `json:"categoryId"`
	Date          string  `json:"date"`
	Confidence    float64 `json:"confidence"`
	Notes         string  `json:"notes,omitempty"`
	NeedsReview   bool    `json:"needsReview,omitempty"`
}

// NormalizeConfidence maps a raw confidence value onto [0,1]. Upstream model
// output sometimes arrives on a 0-100 scale; anything above 1 is treated as a
// percentage. This is the single normalization rule for the whole app.
func NormalizeConfidence(c float64) float64 {
	if c > 1 {
		c /= 100
	}
	if c > 1 {
		return 1
	}
	if c < 0 {
		return 0
	}
	return c
}

// Validate reports whether the candidate satisfies the commit precondition:
// a non-empty item and a strictly positive amount.
func (c *ExpenseCandidate) Validate() error {
	if strings.TrimSpace(c.Item) == "" {
		return fmt.Errorf("item must not be empty")
	}
	if c.Amount <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	if _, err := time.Parse(DateLayout, c.Date); err != nil {
		return fmt.Errorf("date must be a valid %s date: %w", DateLayout, err)
	}
	return nil
}

// ExpenseDate parses the candidate's date string. Call Validate first when the
// candidate comes from user input.
func (c *ExpenseCandidate) ExpenseDate() (time.Time, error) {
	return time.Parse(DateLayout, c.Date)
}

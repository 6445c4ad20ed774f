package model

import "time"

// Expense is a persisted expense row. Ownership is exclusive to one user.
// Amount is in whole Rupiah; ExpenseDate is a calendar date (midnight UTC).
type Expense struct {
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	ExpenseDate time.Time `json:"expenseDate"`
	OwnerID     string    `json:"-"`
	Item        string    `json:"item"`
	Notes       string    `json:"notes"`
	CategoryID  *int64    `json:"categoryId"`
	Amount      int64     `json:"amount"`
	ID          int64     `json:"id"`
}

package tui

import "github.com/naufalhakim/catatin/internal/model"

// extractResultMsg reports the outcome of an extraction call.
type extractResultMsg struct {
	err        error
	candidates []model.ExpenseCandidate
}

// commitResultMsg reports the outcome of a commit.
type commitResultMsg struct {
	err   error
	saved int64
}

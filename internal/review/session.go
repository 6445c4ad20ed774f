// Package review holds the in-memory state machine for a quick-add session:
// the lifecycle of extracted expense candidates between extraction and commit.
package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/naufalhakim/catatin/internal/common"
	"github.com/naufalhakim/catatin/internal/model"
	"github.com/naufalhakim/catatin/internal/nlp"
)

// State identifies where a session is in its lifecycle.
type State int

const (
	// StateEmpty is the initial state: no candidates, no in-flight work.
	StateEmpty State = iota
	// StateExtracting means an extraction call is in flight.
	StateExtracting
	// StateReviewReady means candidates are loaded and editable.
	StateReviewReady
	// StateCommitting means a commit is in flight; edits are locked out.
	StateCommitting
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateExtracting:
		return "extracting"
	case StateReviewReady:
		return "review"
	case StateCommitting:
		return "committing"
	default:
		return "unknown"
	}
}

// FieldError pinpoints a validation failure on one candidate field.
type FieldError struct {
	Field   string
	Message string
	Index   int
}

func (e FieldError) Error() string {
	return fmt.Sprintf("row %d: %s %s", e.Index+1, e.Field, e.Message)
}

// ValidationError aggregates per-field failures for a whole session.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%d validation error(s)", len(e.Fields))
}

func (e *ValidationError) Unwrap() error {
	return common.ErrValidationFailed
}

// Session tracks candidates under review. It is not safe for concurrent use;
// callers serialize access (the TUI event loop and HTTP handlers both do).
type Session struct {
	sourceText string
	candidates []model.ExpenseCandidate
	// pendingCategories are labels the user typed that do not exist yet.
	// They are created at commit time together with whatever the extractor
	// proposed.
	pendingCategories []string
	state             State
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{state: StateEmpty}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// SourceText returns the text the current candidates came from.
func (s *Session) SourceText() string { return s.sourceText }

// Candidates returns the working set. The slice is shared; callers must not
// retain it across mutations.
func (s *Session) Candidates() []model.ExpenseCandidate { return s.candidates }

// PendingCategories returns labels queued for creation at commit time.
func (s *Session) PendingCategories() []string { return s.pendingCategories }

// BeginExtract moves into the extracting state. Rejected while a commit is in
// flight; re-extracting from review discards the current candidates. Blank
// input never changes state: there is nothing to extract from.
func (s *Session) BeginExtract(text string) error {
	if s.state == StateExtracting || s.state == StateCommitting {
		return fmt.Errorf("cannot extract while %s", s.state)
	}
	if strings.TrimSpace(text) == "" {
		return common.ErrEmptyInput
	}
	s.sourceText = text
	s.candidates = nil
	s.pendingCategories = nil
	s.state = StateExtracting
	return nil
}

// ExtractSucceeded loads the candidates and enters review. An empty result is
// valid and still reviewable: the user can add rows by hand.
func (s *Session) ExtractSucceeded(candidates []model.ExpenseCandidate) error {
	if s.state != StateExtracting {
		return fmt.Errorf("not extracting (state %s)", s.state)
	}
	s.candidates = candidates
	s.state = StateReviewReady
	return nil
}

// ExtractFailed returns to empty but keeps the source text so the user can
// retry without retyping.
func (s *Session) ExtractFailed() {
	if s.state == StateExtracting {
		s.state = StateEmpty
	}
}

// Update applies fn to the candidate at index i.
func (s *Session) Update(i int, fn func(*model.ExpenseCandidate)) error {
	if s.state != StateReviewReady {
		return fmt.Errorf("cannot edit while %s", s.state)
	}
	if i < 0 || i >= len(s.candidates) {
		return fmt.Errorf("candidate index %d out of range", i)
	}
	fn(&s.candidates[i])
	return nil
}

// Delete removes the candidate at index i.
func (s *Session) Delete(i int) error {
	if s.state != StateReviewReady {
		return fmt.Errorf("cannot edit while %s", s.state)
	}
	if i < 0 || i >= len(s.candidates) {
		return fmt.Errorf("candidate index %d out of range", i)
	}
	// Deleting the last row keeps the session in review; the user can
	// still add rows manually or discard.
	s.candidates = append(s.candidates[:i], s.candidates[i+1:]...)
	return nil
}

// Add appends a blank candidate dated today and returns its index.
func (s *Session) Add(now time.Time) (int, error) {
	if s.state != StateReviewReady {
		return 0, fmt.Errorf("cannot edit while %s", s.state)
	}
	s.candidates = append(s.candidates, model.ExpenseCandidate{
		CategoryLabel: "",
		Date:          nlp.DateOnly(now).Format(model.DateLayout),
		Confidence:    0,
		NeedsReview:   true,
	})
	return len(s.candidates) - 1, nil
}

// AddPendingCategory queues a brand-new category label and optionally assigns
// it to the candidate at assignIdx (pass a negative index to skip assignment).
func (s *Session) AddPendingCategory(name string, assignIdx int) error {
	if s.state != StateReviewReady {
		return fmt.Errorf("cannot edit while %s", s.state)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("category name must not be empty")
	}
	exists := false
	for _, pending := range s.pendingCategories {
		if strings.EqualFold(pending, name) {
			exists = true
			break
		}
	}
	if !exists {
		s.pendingCategories = append(s.pendingCategories, name)
	}
	if assignIdx >= 0 {
		return s.Update(assignIdx, func(c *model.ExpenseCandidate) {
			c.CategoryLabel = name
			c.CategoryID = nil
		})
	}
	return nil
}

// Validate checks every candidate against the commit preconditions and
// returns one FieldError per violation.
func (s *Session) Validate() []FieldError {
	var errs []FieldError
	for i, c := range s.candidates {
		if strings.TrimSpace(c.Item) == "" {
			errs = append(errs, FieldError{Index: i, Field: "item", Message: "must not be empty"})
		}
		if c.Amount <= 0 {
			errs = append(errs, FieldError{Index: i, Field: "amount", Message: "must be greater than zero"})
		}
		if _, err := time.Parse(model.DateLayout, c.Date); err != nil {
			errs = append(errs, FieldError{Index: i, Field: "date", Message: "must be a valid date"})
		}
		if strings.TrimSpace(c.CategoryLabel) == "" {
			errs = append(errs, FieldError{Index: i, Field: "category", Message: "must not be empty"})
		}
	}
	return errs
}

// BeginCommit validates the whole session and, if clean, locks it for commit.
// At least one candidate is required.
func (s *Session) BeginCommit() error {
	if s.state != StateReviewReady {
		return fmt.Errorf("cannot commit while %s", s.state)
	}
	if len(s.candidates) == 0 {
		return &ValidationError{Fields: []FieldError{{Field: "session", Message: "nothing to commit"}}}
	}
	if errs := s.Validate(); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	s.state = StateCommitting
	return nil
}

// CommitSucceeded clears the session back to empty.
func (s *Session) CommitSucceeded() {
	if s.state != StateCommitting {
		return
	}
	*s = Session{state: StateEmpty}
}

// CommitFailed returns to review with all edits intact so nothing is lost.
func (s *Session) CommitFailed() {
	if s.state == StateCommitting {
		s.state = StateReviewReady
	}
}

// Discard abandons the session regardless of state, except mid-commit.
func (s *Session) Discard() error {
	if s.state == StateCommitting {
		return fmt.Errorf("cannot discard while committing")
	}
	*s = Session{state: StateEmpty}
	return nil
}

// TotalAmount sums the working set.
func (s *Session) TotalAmount() int64 {
	var total int64
	for _, c := range s.candidates {
		total += c.Amount
	}
	return total
}

// AverageConfidence returns the mean confidence, or zero for an empty set.
func (s *Session) AverageConfidence() float64 {
	if len(s.candidates) == 0 {
		return 0
	}
	var sum float64
	for _, c := range s.candidates {
		sum += c.Confidence
	}
	return sum / float64(len(s.candidates))
}

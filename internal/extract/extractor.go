// Package extract turns one block of free text into structured, confidence-
// scored expense candidates via a single external model call, validating and
// coercing whatever comes back.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/naufalhakim/catatin/internal/common"
	"github.com/naufalhakim/catatin/internal/llm"
	"github.com/naufalhakim/catatin/internal/model"
	"github.com/naufalhakim/catatin/internal/nlp"
	"github.com/naufalhakim/catatin/internal/service"
)

// flaggedConfidenceCap bounds the confidence shown for candidates whose
// required fields had to be defaulted, so they always read as "needs review".
const flaggedConfidenceCap = 0.4

// Extractor orchestrates the model call and output validation.
type Extractor struct {
	client    llm.Client
	audit     service.AuditSink
	logger    *slog.Logger
	timeout   time.Duration
	retryOpts service.RetryOptions
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTimeout sets the per-call deadline for the model request.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) { e.timeout = d }
}

// WithRetryOptions overrides the retry policy for model calls.
func WithRetryOptions(opts service.RetryOptions) Option {
	return func(e *Extractor) { e.retryOpts = opts }
}

// NewExtractor creates an extractor backed by the given model client and
// audit sink.
func NewExtractor(client llm.Client, audit service.AuditSink, logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		client:  client,
		audit:   audit,
		logger:  logger,
		timeout: 30 * time.Second,
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses text into expense candidates. The supplied now anchors all
// relative date resolution. Every invocation that reaches the model is
// recorded to the audit sink, success or not; blank input is rejected before
// any network activity and leaves no audit entry.
func (e *Extractor) Extract(ctx context.Context, ownerID, text string, now time.Time) ([]model.ExpenseCandidate, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, common.ErrEmptyInput
	}

	prompt := buildPrompt(trimmed, now)
	start := time.Now()

	var raw string
	err := common.WithRetry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		out, completeErr := e.client.Complete(callCtx, prompt)
		if completeErr != nil {
			e.logger.Warn("extraction attempt failed",
				"owner_id", ownerID,
				"error", completeErr)
			return &common.RetryableError{Err: completeErr, Retryable: true}
		}
		raw = out
		return nil
	}, e.retryOpts)

	duration := time.Since(start)

	if err != nil {
		e.recordAttempt(ownerID, trimmed, "", false, err.Error(), duration)
		return nil, common.NewUserError(
			"could not reach the expense parser, please try again",
			fmt.Errorf("%w: %v", common.ErrExtractionFailed, err))
	}

	candidates, parseErr := parseCandidates(raw, now)
	if parseErr != nil {
		e.recordAttempt(ownerID, trimmed, raw, false, parseErr.Error(), duration)
		return nil, common.NewUserError(
			"could not understand the parser output, please try again",
			fmt.Errorf("%w: %v", common.ErrExtractionFailed, parseErr))
	}

	e.recordAttempt(ownerID, trimmed, raw, true, "", duration)
	e.logger.Info("extracted expense candidates",
		"owner_id", ownerID,
		"count", len(candidates),
		"duration_ms", duration.Milliseconds())

	return candidates, nil
}

// recordAttempt writes the audit entry without blocking the caller. Sink
// failures are logged and swallowed.
func (e *Extractor) recordAttempt(ownerID, input, output string, success bool, errMsg string, duration time.Duration) {
	attempt := &model.ParsingAttempt{
		OwnerID:      ownerID,
		InputText:    input,
		RawOutput:    output,
		Success:      success,
		ErrorMessage: errMsg,
		DurationMs:   duration.Milliseconds(),
		CreatedAt:    time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.audit.RecordParsingAttempt(ctx, attempt); err != nil {
			e.logger.Warn("failed to record parsing attempt", "error", err)
		}
	}()
}

// rawCandidate mirrors the JSON shape the prompt asks for. Amount stays raw
// because models occasionally emit it as a shorthand string instead of a
// number.
type rawCandidate struct {
	Item     string          `json:"item"`
	Amount   json.RawMessage `json:"amount"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	// Pointer so an explicit 0 is distinguishable from a missing field.
	Confidence *float64 `json:"confidence"`
	Notes      string   `json:"notes"`
}

// parseCandidates validates the model output as a strict candidate array.
// Individual malformed records are defaulted and flagged instead of failing
// the batch; only output that is not a record array at all is an error.
func parseCandidates(raw string, now time.Time) ([]model.ExpenseCandidate, error) {
	cleaned := llm.CleanMarkdownWrapper(raw)

	var records []rawCandidate
	if err := json.Unmarshal([]byte(cleaned), &records); err != nil {
		return nil, fmt.Errorf("output is not a candidate array: %w", err)
	}

	candidates := make([]model.ExpenseCandidate, 0, len(records))
	for _, record := range records {
		candidates = append(candidates, coerceCandidate(record, now))
	}
	return candidates, nil
}

// coerceCandidate fills defaults for missing fields and normalizes the rest.
func coerceCandidate(record rawCandidate, now time.Time) model.ExpenseCandidate {
	flagged := false

	item := strings.TrimSpace(record.Item)
	if item == "" {
		item = FallbackItem
		flagged = true
	}

	amount, ok := coerceAmount(record.Amount)
	if !ok || amount <= 0 {
		amount = max(amount, 0)
		flagged = true
	}

	category := strings.TrimSpace(record.Category)
	if category == "" {
		category = FallbackCategory
		flagged = true
	}

	date, err := nlp.ResolveDate(record.Date, now)
	if err != nil {
		date = nlp.DateOnly(now)
		flagged = true
	}

	confidence := float64(defaultConfidence)
	if record.Confidence != nil {
		confidence = *record.Confidence
	}
	confidence = model.NormalizeConfidence(confidence)
	if flagged {
		confidence = math.Min(confidence, flaggedConfidenceCap)
	}

	return model.ExpenseCandidate{
		Item:          item,
		Amount:        amount,
		CategoryLabel: category,
		Date:          date.Format(model.DateLayout),
		Confidence:    confidence,
		Notes:         strings.TrimSpace(record.Notes),
		NeedsReview:   flagged,
	}
}

// coerceAmount accepts a JSON number or an amount shorthand string. Anything
// else fails closed to zero; a zero amount never survives commit validation,
// so the record is guaranteed a human look.
func coerceAmount(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		if number < 0 || number != math.Trunc(number) {
			return 0, false
		}
		return int64(number), true
	}

	var token string
	if err := json.Unmarshal(raw, &token); err == nil {
		value, normErr := nlp.NormalizeAmount(token)
		if normErr != nil {
			return 0, false
		}
		return value, true
	}

	return 0, false
}

package extract

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naufalhakim/catatin/internal/common"
	"github.com/naufalhakim/catatin/internal/model"
	"github.com/naufalhakim/catatin/internal/service"
)

type fakeClient struct {
	complete func(ctx context.Context, prompt string) (string, error)
}

func (f *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	return f.complete(ctx, prompt)
}

func (f *fakeClient) Close() error { return nil }

type recordingSink struct {
	mu       sync.Mutex
	attempts []*model.ParsingAttempt
}

func (r *recordingSink) RecordParsingAttempt(ctx context.Context, attempt *model.ParsingAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, attempt)
	return nil
}

func (r *recordingSink) ListParsingAttempts(ctx context.Context, ownerID string, limit int) ([]model.ParsingAttempt, error) {
	return nil, nil
}

func (r *recordingSink) snapshot() []*model.ParsingAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.ParsingAttempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}

func newTestExtractor(client *fakeClient, sink *recordingSink) *Extractor {
	return NewExtractor(client, sink, slog.Default(),
		WithTimeout(time.Second),
		WithRetryOptions(service.RetryOptions{
			MaxAttempts:  1,
			InitialDelay: time.Millisecond,
			MaxDelay:     time.Millisecond,
			Multiplier:   1.0,
		}))
}

func TestExtractEmptyInput(t *testing.T) {
	client := &fakeClient{complete: func(ctx context.Context, prompt string) (string, error) {
		t.Fatal("model should not be called for empty input")
		return "", nil
	}}
	sink := &recordingSink{}
	e := newTestExtractor(client, sink)

	_, err := e.Extract(context.Background(), model.DevOwnerID, "   \n\t ", time.Now())
	assert.ErrorIs(t, err, common.ErrEmptyInput)
	assert.Empty(t, sink.snapshot(), "empty input must not produce an audit entry")
}

func TestExtractSuccess(t *testing.T) {
	now := time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC)
	client := &fakeClient{complete: func(ctx context.Context, prompt string) (string, error) {
		return "```json\n" + `[
			{"item": "Nasi goreng", "amount": 19000, "category": "Makanan", "date": "kemarin", "confidence": 85},
			{"item": "Grab ke kantor", "amount": 25000, "category": "Transportasi", "date": "2025-01-10", "confidence": 90}
		]` + "\n```", nil
	}}
	sink := &recordingSink{}
	e := newTestExtractor(client, sink)

	candidates, err := e.Extract(context.Background(), model.DevOwnerID, "nasi goreng 19rb kemarin, grab 25rb", now)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "Nasi goreng", candidates[0].Item)
	assert.Equal(t, int64(19000), candidates[0].Amount)
	assert.Equal(t, "Makanan", candidates[0].CategoryLabel)
	assert.Equal(t, "2025-01-09", candidates[0].Date)
	assert.InDelta(t, 0.85, candidates[0].Confidence, 0.001)
	assert.False(t, candidates[0].NeedsReview)

	assert.Equal(t, "2025-01-10", candidates[1].Date)

	assert.Eventually(t, func() bool {
		return len(sink.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)
	attempt := sink.snapshot()[0]
	assert.True(t, attempt.Success)
	assert.Equal(t, model.DevOwnerID, attempt.OwnerID)
	assert.Contains(t, attempt.InputText, "nasi goreng")
	assert.NotEmpty(t, attempt.RawOutput)
}

func TestExtractClientFailure(t *testing.T) {
	client := &fakeClient{complete: func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("upstream unavailable")
	}}
	sink := &recordingSink{}
	e := newTestExtractor(client, sink)

	_, err := e.Extract(context.Background(), model.DevOwnerID, "kopi 15rb", time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionFailed)

	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.NotEmpty(t, userErr.UserMessage)

	assert.Eventually(t, func() bool {
		attempts := sink.snapshot()
		return len(attempts) == 1 && !attempts[0].Success
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, sink.snapshot()[0].ErrorMessage, "upstream unavailable")
}

func TestExtractMalformedOutput(t *testing.T) {
	client := &fakeClient{complete: func(ctx context.Context, prompt string) (string, error) {
		return "sorry, I cannot help with that", nil
	}}
	sink := &recordingSink{}
	e := newTestExtractor(client, sink)

	_, err := e.Extract(context.Background(), model.DevOwnerID, "kopi 15rb", time.Now())
	assert.ErrorIs(t, err, common.ErrExtractionFailed)

	assert.Eventually(t, func() bool {
		attempts := sink.snapshot()
		return len(attempts) == 1 && !attempts[0].Success && attempts[0].RawOutput != ""
	}, time.Second, 10*time.Millisecond)
}

func TestParseCandidatesCoercion(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want model.ExpenseCandidate
	}{
		{
			name: "missing item gets fallback and flag",
			raw:  `[{"amount": 5000, "category": "Makanan", "date": "2025-01-10", "confidence": 80}]`,
			want: model.ExpenseCandidate{
				Item:          FallbackItem,
				Amount:        5000,
				CategoryLabel: "Makanan",
				Date:          "2025-01-10",
				Confidence:    flaggedConfidenceCap,
				NeedsReview:   true,
			},
		},
		{
			name: "string shorthand amount is normalized",
			raw:  `[{"item": "Pulsa", "amount": "19rb", "category": "Tagihan", "date": "2025-01-10", "confidence": 75}]`,
			want: model.ExpenseCandidate{
				Item:          "Pulsa",
				Amount:        19000,
				CategoryLabel: "Tagihan",
				Date:          "2025-01-10",
				Confidence:    0.75,
			},
		},
		{
			name: "unparseable amount falls to zero and flags",
			raw:  `[{"item": "Parkir", "amount": "beberapa ribu", "category": "Transportasi", "date": "2025-01-10", "confidence": 60}]`,
			want: model.ExpenseCandidate{
				Item:          "Parkir",
				Amount:        0,
				CategoryLabel: "Transportasi",
				Date:          "2025-01-10",
				Confidence:    flaggedConfidenceCap,
				NeedsReview:   true,
			},
		},
		{
			name: "missing category gets fallback",
			raw:  `[{"item": "Entah", "amount": 10000, "date": "2025-01-10", "confidence": 70}]`,
			want: model.ExpenseCandidate{
				Item:          "Entah",
				Amount:        10000,
				CategoryLabel: FallbackCategory,
				Date:          "2025-01-10",
				Confidence:    flaggedConfidenceCap,
				NeedsReview:   true,
			},
		},
		{
			name: "bad date defaults to today",
			raw:  `[{"item": "Kopi", "amount": 15000, "category": "Makanan", "date": "someday", "confidence": 90}]`,
			want: model.ExpenseCandidate{
				Item:          "Kopi",
				Amount:        15000,
				CategoryLabel: "Makanan",
				Date:          "2025-01-10",
				Confidence:    flaggedConfidenceCap,
				NeedsReview:   true,
			},
		},
		{
			name: "missing confidence defaults to fifty",
			raw:  `[{"item": "Kopi", "amount": 15000, "category": "Makanan", "date": "2025-01-10"}]`,
			want: model.ExpenseCandidate{
				Item:          "Kopi",
				Amount:        15000,
				CategoryLabel: "Makanan",
				Date:          "2025-01-10",
				Confidence:    0.5,
			},
		},
		{
			name: "explicit zero confidence is preserved",
			raw:  `[{"item": "Kopi", "amount": 15000, "category": "Makanan", "date": "2025-01-10", "confidence": 0}]`,
			want: model.ExpenseCandidate{
				Item:          "Kopi",
				Amount:        15000,
				CategoryLabel: "Makanan",
				Date:          "2025-01-10",
				Confidence:    0,
			},
		},
		{
			name: "fractional confidence passes through",
			raw:  `[{"item": "Kopi", "amount": 15000, "category": "Makanan", "date": "2025-01-10", "confidence": 0.95}]`,
			want: model.ExpenseCandidate{
				Item:          "Kopi",
				Amount:        15000,
				CategoryLabel: "Makanan",
				Date:          "2025-01-10",
				Confidence:    0.95,
			},
		},
		{
			name: "negative amount flags",
			raw:  `[{"item": "Refund", "amount": -5000, "category": "Lainnya", "date": "2025-01-10", "confidence": 80}]`,
			want: model.ExpenseCandidate{
				Item:          "Refund",
				Amount:        0,
				CategoryLabel: "Lainnya",
				Date:          "2025-01-10",
				Confidence:    flaggedConfidenceCap,
				NeedsReview:   true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCandidates(tt.raw, now)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestParseCandidatesRejectsNonArray(t *testing.T) {
	_, err := parseCandidates(`{"item": "Kopi"}`, time.Now())
	assert.Error(t, err)
}

func TestParseCandidatesEmptyArray(t *testing.T) {
	got, err := parseCandidates(`[]`, time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}

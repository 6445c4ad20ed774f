package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naufalhakim/catatin/internal/model"
)

func modelInReview(t *testing.T, candidates ...model.ExpenseCandidate) Model {
	t.Helper()
	m := newModel(nil, model.DevOwnerID)
	require.NoError(t, m.session.BeginExtract("some text"))
	require.NoError(t, m.session.ExtractSucceeded(candidates))
	return m
}

func TestApplyEditCategoryQueuesPendingLabel(t *testing.T) {
	hinted := int64(3)
	m := modelInReview(t, model.ExpenseCandidate{
		Item:          "Lego",
		Amount:        250000,
		CategoryLabel: "Belanja",
		CategoryID:    &hinted,
		Date:          "2025-01-10",
	})
	m.cursor = 0
	m.editField = fieldCategory
	m.editor.SetValue("Mainan")

	require.NoError(t, m.applyEdit())

	c := m.session.Candidates()[0]
	assert.Equal(t, "Mainan", c.CategoryLabel)
	assert.Nil(t, c.CategoryID, "a retyped label drops the stale hint")
	assert.Equal(t, []string{"Mainan"}, m.session.PendingCategories())

	// Retyping the same label (any case) neither duplicates the queue nor
	// touches the row again.
	m.editor.SetValue("mainan")
	require.NoError(t, m.applyEdit())
	assert.Len(t, m.session.PendingCategories(), 1)
	assert.Equal(t, "Mainan", m.session.Candidates()[0].CategoryLabel)
}

func TestApplyEditCategoryBlankIsNoop(t *testing.T) {
	m := modelInReview(t, model.ExpenseCandidate{
		Item:          "Lego",
		Amount:        250000,
		CategoryLabel: "Belanja",
		Date:          "2025-01-10",
	})
	m.cursor = 0
	m.editField = fieldCategory
	m.editor.SetValue("   ")

	require.NoError(t, m.applyEdit())
	assert.Equal(t, "Belanja", m.session.Candidates()[0].CategoryLabel)
	assert.Empty(t, m.session.PendingCategories())
}

func TestApplyEditAmountShorthand(t *testing.T) {
	m := modelInReview(t, model.ExpenseCandidate{
		Item:          "Lego",
		Amount:        250000,
		CategoryLabel: "Belanja",
		Date:          "2025-01-10",
	})
	m.cursor = 0
	m.editField = fieldAmount
	m.editor.SetValue("1,5jt")

	require.NoError(t, m.applyEdit())
	assert.Equal(t, int64(1500000), m.session.Candidates()[0].Amount)
}

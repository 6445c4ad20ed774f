package export

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naufalhakim/catatin/internal/model"
	"github.com/naufalhakim/catatin/internal/service"
)

type stubStore struct {
	service.Storage
	categories []model.Category
}

func (s *stubStore) ListCategories(ctx context.Context, ownerID string) ([]model.Category, error) {
	return s.categories, nil
}

func TestBuildRows(t *testing.T) {
	catID := int64(3)
	store := &stubStore{categories: []model.Category{
		{ID: 3, Name: "Makanan", OwnerID: model.SystemOwnerID},
	}}

	expenses := []model.Expense{
		{
			Item:        "Nasi goreng",
			Amount:      19000,
			CategoryID:  &catID,
			ExpenseDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			Notes:       "warung depan",
		},
		{
			Item:        "Parkir",
			Amount:      2000,
			ExpenseDate: time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC),
		},
	}

	rows, err := BuildRows(context.Background(), store, model.DevOwnerID, expenses)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, Row{
		Date:     "2025-01-10",
		Item:     "Nasi goreng",
		Amount:   19000,
		Category: "Makanan",
		Notes:    "warung depan",
	}, rows[0])
	assert.Empty(t, rows[1].Category, "uncategorized rows export a blank category")
}

func TestWriteCSV(t *testing.T) {
	rows := []Row{
		{Date: "2025-01-10", Item: "Nasi goreng", Amount: 19000, Category: "Makanan"},
	}

	var sb strings.Builder
	require.NoError(t, WriteCSV(&sb, rows))

	out := sb.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "date,item,amount,category,notes", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "Nasi goreng")
	assert.Contains(t, lines[1], "19000")
}

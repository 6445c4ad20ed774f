// Package export flattens expenses into rows suitable for CSV or JSON
// download.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/naufalhakim/catatin/internal/model"
	"github.com/naufalhakim/catatin/internal/service"
)

// Row is one exported expense with its category denormalized to a name.
type Row struct {
	Date     string `csv:"date" json:"date"`
	Item     string `csv:"item" json:"item"`
	Amount   int64  `csv:"amount" json:"amount"`
	Category string `csv:"category" json:"category"`
	Notes    string `csv:"notes" json:"notes"`
}

// BuildRows converts expenses into export rows, resolving category IDs to
// names through a single category listing.
func BuildRows(ctx context.Context, store service.Storage, ownerID string, expenses []model.Expense) ([]Row, error) {
	categories, err := store.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing categories for export: %w", err)
	}
	names := make(map[int64]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}

	rows := make([]Row, 0, len(expenses))
	for _, e := range expenses {
		row := Row{
			Date:   e.ExpenseDate.Format(model.DateLayout),
			Item:   e.Item,
			Amount: e.Amount,
			Notes:  e.Notes,
		}
		if e.CategoryID != nil {
			row.Category = names[*e.CategoryID]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

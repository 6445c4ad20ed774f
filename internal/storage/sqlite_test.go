package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naufalhakim/catatin/internal/common"
	"github.com/naufalhakim/catatin/internal/model"
	"github.com/naufalhakim/catatin/internal/service"
)

// Helper function to create migrated test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err, "failed to create storage")

	require.NoError(t, store.Migrate(context.Background()), "failed to migrate")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testExpense(ownerID string, item string, amount int64, date time.Time) model.Expense {
	return model.Expense{
		OwnerID:     ownerID,
		Item:        item,
		Amount:      amount,
		ExpenseDate: date,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := createTestStorage(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestMigrateSeedsSystemCategories(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	categories, err := store.ListCategories(ctx, model.DevOwnerID)
	require.NoError(t, err)
	require.Len(t, categories, len(systemCategories))
	for _, cat := range categories {
		assert.Equal(t, model.SystemOwnerID, cat.OwnerID)
		assert.True(t, cat.IsSystem())
		assert.NotEmpty(t, cat.Icon)
		assert.NotEmpty(t, cat.Color)
	}
}

func TestCreateAndLookupCategory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	created, err := store.CreateCategory(ctx, model.DevOwnerID, "Hobi", "toys", "#FF0000")
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, "Hobi", created.Name)
	assert.False(t, created.IsSystem())

	// Case-insensitive lookup.
	found, err := store.GetCategoryByName(ctx, model.DevOwnerID, "hobi")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	byID, err := store.GetCategoryByID(ctx, created.ID, model.DevOwnerID)
	require.NoError(t, err)
	assert.Equal(t, "Hobi", byID.Name)

	_, err = store.GetCategoryByName(ctx, model.DevOwnerID, "Nonexistent")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateCategoryDuplicate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.CreateCategory(ctx, model.DevOwnerID, "Hobi", "", "")
	require.NoError(t, err)

	_, err = store.CreateCategory(ctx, model.DevOwnerID, "hobi", "", "")
	assert.ErrorIs(t, err, common.ErrDuplicateEntry, "same name different case must collide")

	// Same name for a different owner is fine.
	_, err = store.CreateCategory(ctx, "other-user", "Hobi", "", "")
	assert.NoError(t, err)
}

func TestCreateCategoryDefaults(t *testing.T) {
	store := createTestStorage(t)

	created, err := store.CreateCategory(context.Background(), model.DevOwnerID, "Mainan", "", "")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCategoryIcon, created.Icon)
	assert.Equal(t, model.FallbackColor("Mainan"), created.Color)
}

func TestUserCategoryShadowsSystem(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	// "Makanan" exists as a seeded system category.
	system, err := store.GetCategoryByName(ctx, model.DevOwnerID, "Makanan")
	require.NoError(t, err)
	require.True(t, system.IsSystem())

	own, err := store.CreateCategory(ctx, model.DevOwnerID, "Makanan", "ramen_dining", "#123456")
	require.NoError(t, err)

	found, err := store.GetCategoryByName(ctx, model.DevOwnerID, "makanan")
	require.NoError(t, err)
	assert.Equal(t, own.ID, found.ID, "user category must shadow the system one")

	// Other users still see the system category.
	other, err := store.GetCategoryByName(ctx, "other-user", "Makanan")
	require.NoError(t, err)
	assert.Equal(t, system.ID, other.ID)
}

func TestDeleteCategory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	created, err := store.CreateCategory(ctx, model.DevOwnerID, "Hobi", "", "")
	require.NoError(t, err)

	// Deleting a category clears the reference on its expenses.
	expense := testExpense(model.DevOwnerID, "Lego", 250000, time.Now())
	expense.CategoryID = &created.ID
	saved, err := store.CreateExpense(ctx, &expense)
	require.NoError(t, err)

	require.NoError(t, store.DeleteCategory(ctx, created.ID, model.DevOwnerID))

	reloaded, err := store.GetExpense(ctx, saved.ID, model.DevOwnerID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CategoryID)

	// System categories cannot be deleted through a user's ID.
	system, err := store.GetCategoryByName(ctx, model.DevOwnerID, "Makanan")
	require.NoError(t, err)
	assert.ErrorIs(t, store.DeleteCategory(ctx, system.ID, model.DevOwnerID), common.ErrNotFound)
}

func TestExpenseCRUD(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	expense := testExpense(model.DevOwnerID, "Nasi goreng", 19000, date)
	expense.Notes = "warung depan"

	saved, err := store.CreateExpense(ctx, &expense)
	require.NoError(t, err)
	assert.Positive(t, saved.ID)
	assert.Equal(t, "Nasi goreng", saved.Item)
	assert.Equal(t, int64(19000), saved.Amount)
	assert.Equal(t, "warung depan", saved.Notes)

	saved.Amount = 21000
	require.NoError(t, store.UpdateExpense(ctx, saved))

	reloaded, err := store.GetExpense(ctx, saved.ID, model.DevOwnerID)
	require.NoError(t, err)
	assert.Equal(t, int64(21000), reloaded.Amount)

	require.NoError(t, store.DeleteExpense(ctx, saved.ID, model.DevOwnerID))
	_, err = store.GetExpense(ctx, saved.ID, model.DevOwnerID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestExpenseOwnerScoping(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	expense := testExpense(model.DevOwnerID, "Kopi", 15000, time.Now())
	saved, err := store.CreateExpense(ctx, &expense)
	require.NoError(t, err)

	_, err = store.GetExpense(ctx, saved.ID, "other-user")
	assert.ErrorIs(t, err, common.ErrNotFound)

	stolen := *saved
	stolen.OwnerID = "other-user"
	assert.ErrorIs(t, store.UpdateExpense(ctx, &stolen), common.ErrNotFound)
	assert.ErrorIs(t, store.DeleteExpense(ctx, saved.ID, "other-user"), common.ErrNotFound)
}

func TestListExpensesFilters(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, model.DevOwnerID, "Hobi", "", "")
	require.NoError(t, err)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		expense := testExpense(model.DevOwnerID, "Item", int64(1000*(i+1)), base.AddDate(0, 0, i))
		if i%2 == 0 {
			expense.CategoryID = &cat.ID
		}
		_, err := store.CreateExpense(ctx, &expense)
		require.NoError(t, err)
	}

	all, err := store.ListExpenses(ctx, model.DevOwnerID, service.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.True(t, all[0].ExpenseDate.After(all[4].ExpenseDate), "newest first")

	start := base.AddDate(0, 0, 2)
	end := base.AddDate(0, 0, 3)
	ranged, err := store.ListExpenses(ctx, model.DevOwnerID, service.ExpenseFilter{
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	byCat, err := store.ListExpenses(ctx, model.DevOwnerID, service.ExpenseFilter{CategoryID: &cat.ID})
	require.NoError(t, err)
	assert.Len(t, byCat, 3)

	paged, err := store.ListExpenses(ctx, model.DevOwnerID, service.ExpenseFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, paged, 2)
}

func TestCreateExpensesBatchInTx(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	count, err := tx.CreateExpenses(ctx, model.DevOwnerID, []model.Expense{
		testExpense(model.DevOwnerID, "Kopi", 15000, time.Now()),
		testExpense(model.DevOwnerID, "Roti", 12000, time.Now()),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	require.NoError(t, tx.Commit())

	all, err := store.ListExpenses(ctx, model.DevOwnerID, service.ExpenseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTxRollbackDiscardsWrites(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	_, err = tx.CreateCategory(ctx, model.DevOwnerID, "Hobi", "", "")
	require.NoError(t, err)
	_, err = tx.CreateExpenses(ctx, model.DevOwnerID, []model.Expense{
		testExpense(model.DevOwnerID, "Lego", 250000, time.Now()),
	})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	_, err = store.GetCategoryByName(ctx, model.DevOwnerID, "Hobi")
	assert.ErrorIs(t, err, common.ErrNotFound)
	all, err := store.ListExpenses(ctx, model.DevOwnerID, service.ExpenseFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestParsingAttemptAudit(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	first := &model.ParsingAttempt{
		OwnerID:   model.DevOwnerID,
		InputText: "nasi goreng 19rb",
		RawOutput: `[{"item":"Nasi goreng"}]`,
		Success:   true,
		DurationMs: 420,
		CreatedAt:  time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.RecordParsingAttempt(ctx, first))
	assert.Positive(t, first.ID)

	second := &model.ParsingAttempt{
		OwnerID:      model.DevOwnerID,
		InputText:    "???",
		Success:      false,
		ErrorMessage: "output is not a candidate array",
	}
	require.NoError(t, store.RecordParsingAttempt(ctx, second))

	attempts, err := store.ListParsingAttempts(ctx, model.DevOwnerID, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.False(t, attempts[0].Success, "newest first")
	assert.True(t, attempts[1].Success)
	assert.Equal(t, int64(420), attempts[1].DurationMs)

	other, err := store.ListParsingAttempts(ctx, "other-user", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestGetDashboard(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	makanan, err := store.GetCategoryByName(ctx, model.DevOwnerID, "Makanan")
	require.NoError(t, err)

	insert := func(item string, amount int64, date time.Time, catID *int64) {
		t.Helper()
		expense := testExpense(model.DevOwnerID, item, amount, date)
		expense.CategoryID = catID
		_, err := store.CreateExpense(ctx, &expense)
		require.NoError(t, err)
	}

	insert("Nasi goreng", 19000, now, &makanan.ID)                 // today
	insert("Kopi", 15000, now.AddDate(0, 0, -3), &makanan.ID)      // this month
	insert("Parkir", 2000, now.AddDate(0, 0, -3), nil)             // uncategorized
	insert("Belanja bulanan", 500000, now.AddDate(0, -1, 0), nil)  // last month

	summary, err := store.GetDashboard(ctx, model.DevOwnerID, now)
	require.NoError(t, err)

	assert.Equal(t, int64(36000), summary.MonthTotal)
	assert.Equal(t, int64(3), summary.MonthCount)
	assert.Equal(t, int64(19000), summary.TodayTotal)

	require.Len(t, summary.ByCategory, 2)
	assert.Equal(t, "Makanan", summary.ByCategory[0].Name, "largest total first")
	assert.Equal(t, int64(34000), summary.ByCategory[0].Total)
	assert.Equal(t, int64(2), summary.ByCategory[0].Count)
	assert.Equal(t, "Uncategorized", summary.ByCategory[1].Name)
	assert.Nil(t, summary.ByCategory[1].CategoryID)

	assert.Len(t, summary.Recent, 4)
}

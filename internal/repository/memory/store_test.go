package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshg28/stockroom/internal/domain/models"
	"github.com/harshg28/stockroom/internal/repository"
	"github.com/harshg28/stockroom/internal/repository/memory"
)

func newItem(t *testing.T, store *memory.Store, name string, qty int64) models.Item {
	t.Helper()

	item := models.Item{
		Name:         name,
		Category:     "electronics",
		Quantity:     qty,
		ReorderLevel: 2,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.InsertItem(context.Background(), &item))
	return item
}

func openIssuance(t *testing.T, store *memory.Store, itemID string, qty int64) models.Issuance {
	t.Helper()

	iss := models.Issuance{
		ItemID:         itemID,
		Quantity:       qty,
		Issuer:         models.PartyHarsh,
		Receiver:       models.PartyGaurav,
		User:           "lab bench 3",
		IssueDate:      time.Now().UTC(),
		IssueCondition: models.ConditionReturnable,
	}
	require.NoError(t, store.OpenIssuance(context.Background(), &iss))
	return iss
}

func Test_InsertItem_AssignsSequentialSerials(t *testing.T) {
	store := memory.NewStore()

	first := newItem(t, store, "resistor pack", 10)
	second := newItem(t, store, "breadboard", 4)
	third := newItem(t, store, "jumper wires", 7)

	assert.Equal(t, int64(1), first.SerialNumber)
	assert.Equal(t, int64(2), second.SerialNumber)
	assert.Equal(t, int64(3), third.SerialNumber)
}

func Test_InsertItem_ConcurrentCreatesGetDistinctContiguousSerials(t *testing.T) {
	store := memory.NewStore()
	const workers = 64

	var wg sync.WaitGroup
	serials := make(chan int64, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item := models.Item{Name: "bulk part", CreatedAt: time.Now().UTC()}
			if err := store.InsertItem(context.Background(), &item); err == nil {
				serials <- item.SerialNumber
			}
		}()
	}
	wg.Wait()
	close(serials)

	seen := make(map[int64]bool, workers)
	for serial := range serials {
		assert.False(t, seen[serial], "serial %d allocated twice", serial)
		seen[serial] = true
	}
	require.Len(t, seen, workers)
	for s := int64(1); s <= workers; s++ {
		assert.True(t, seen[s], "serial run has a gap at %d", s)
	}
}

func Test_DeleteItem_NeverReassignsSerials(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	newItem(t, store, "multimeter", 1)
	newItem(t, store, "oscilloscope", 1)
	top := newItem(t, store, "soldering iron", 1)

	require.NoError(t, store.DeleteItem(ctx, top.ID))

	next := newItem(t, store, "heat gun", 1)
	assert.Equal(t, int64(4), next.SerialNumber, "deleted serial must not be reused")
}

func Test_DeleteItem_CascadesIssuancesAndTransactions(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	item := newItem(t, store, "raspberry pi", 5)
	iss := openIssuance(t, store, item.ID, 2)

	require.NoError(t, store.DeleteItem(ctx, item.ID))

	_, err := store.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, repository.ErrItemNotFound)

	_, err = store.GetIssuance(ctx, iss.ID)
	assert.ErrorIs(t, err, repository.ErrIssuanceNotFound)

	txns, err := store.ListTransactions(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, txns)

	issuances, err := store.ListIssuances(ctx)
	require.NoError(t, err)
	assert.Empty(t, issuances)
}

func Test_ListCategories_DistinctNonEmptySorted(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	for _, category := range []string{"tools", "electronics", "", "electronics", "cables"} {
		item := models.Item{Name: "x", Category: category, CreatedAt: time.Now().UTC()}
		require.NoError(t, store.InsertItem(ctx, &item))
	}

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cables", "electronics", "tools"}, categories)
}

func Test_StockMutations_WriteMatchingLedgerEntries(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	item := newItem(t, store, "usb cable", 0)

	require.NoError(t, store.AddStock(ctx, item.ID, 10, "initial delivery", time.Now().UTC()))
	require.NoError(t, store.RemoveStock(ctx, item.ID, 4, "bench usage", time.Now().UTC()))

	current, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), current.Quantity)

	txns, err := store.ListTransactions(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	// Newest first.
	assert.Equal(t, models.DirectionOut, txns[0].Direction)
	assert.Equal(t, int64(4), txns[0].Quantity)
	assert.Equal(t, models.DirectionIn, txns[1].Direction)
	assert.Equal(t, int64(10), txns[1].Quantity)
}

func Test_RemoveStock_InsufficientLeavesEverythingUntouched(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	item := newItem(t, store, "hdmi cable", 3)

	err := store.RemoveStock(ctx, item.ID, 5, "too many", time.Now().UTC())
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)

	current, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), current.Quantity)

	txns, err := store.ListTransactions(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, txns, "a failed decrement must not write a ledger entry")
}

func Test_OpenIssuance_ConcurrentOpensExhaustStockExactly(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	item := newItem(t, store, "esp32 board", 5)
	const workers = 20

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			iss := models.Issuance{
				ItemID:    item.ID,
				Quantity:  1,
				Issuer:    models.PartyHarsh,
				Receiver:  models.PartyGaurav,
				IssueDate: time.Now().UTC(),
			}
			results <- store.OpenIssuance(ctx, &iss)
		}()
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, repository.ErrInsufficientStock):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 5, successes, "exactly enough opens to exhaust stock must win")
	assert.Equal(t, workers-5, conflicts)

	current, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), current.Quantity)

	txns, err := store.ListTransactions(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, txns, 5, "one OUT entry per successful open")
}

func Test_CloseIssuance_ConcurrentClosesRestockExactlyOnce(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	item := newItem(t, store, "power supply", 5)
	iss := openIssuance(t, store, item.ID, 3)

	const workers = 10
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CloseIssuance(ctx, iss.ID, models.ComponentOK, "back on shelf", time.Now().UTC())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, noops := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, repository.ErrAlreadyReceived):
			noops++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins, "the received guard must admit exactly one close")
	assert.Equal(t, workers-1, noops)

	current, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), current.Quantity, "stock restored exactly once")

	txns, err := store.ListTransactions(ctx, item.ID)
	require.NoError(t, err)
	inEntries := 0
	for _, txn := range txns {
		if txn.Direction == models.DirectionIn {
			inEntries++
		}
	}
	assert.Equal(t, 1, inEntries)
}

func Test_CloseIssuance_LostWritesUnitOff(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	item := newItem(t, store, "logic analyzer", 4)
	iss := openIssuance(t, store, item.ID, 2)

	closed, err := store.CloseIssuance(ctx, iss.ID, models.ComponentLost, "cannot find it", time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, closed.Received)
	assert.Equal(t, models.ComponentLost, closed.ComponentStatus)
	require.NotNil(t, closed.ReceiveDate)

	current, err := store.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), current.Quantity, "a lost unit never comes back to stock")

	txns, err := store.ListTransactions(ctx, item.ID)
	require.NoError(t, err)
	for _, txn := range txns {
		assert.NotEqual(t, models.DirectionIn, txn.Direction)
	}
}

func Test_CloseIssuance_AppendsRemark(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	item := newItem(t, store, "dev board", 3)

	iss := models.Issuance{
		ItemID:    item.ID,
		Quantity:  1,
		Issuer:    models.PartyGaurav,
		Receiver:  models.PartyHarsh,
		IssueDate: time.Now().UTC(),
		Remark:    "for the demo rig",
	}
	require.NoError(t, store.OpenIssuance(ctx, &iss))

	closed, err := store.CloseIssuance(ctx, iss.ID, models.ComponentFaulty, "USB port broken", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, "for the demo rig\nUSB port broken", closed.Remark)
}

func Test_ListIssuances_NewestFirst(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	item := newItem(t, store, "sensor kit", 10)

	older := models.Issuance{
		ItemID: item.ID, Quantity: 1,
		Issuer: models.PartyHarsh, Receiver: models.PartyGaurav,
		IssueDate: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
	}
	newer := models.Issuance{
		ItemID: item.ID, Quantity: 1,
		Issuer: models.PartyGaurav, Receiver: models.PartyHarsh,
		IssueDate: time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC),
	}
	require.NoError(t, store.OpenIssuance(ctx, &older))
	require.NoError(t, store.OpenIssuance(ctx, &newer))

	issuances, err := store.ListIssuances(ctx)
	require.NoError(t, err)
	require.Len(t, issuances, 2)
	assert.Equal(t, newer.ID, issuances[0].ID)
	assert.Equal(t, older.ID, issuances[1].ID)
}

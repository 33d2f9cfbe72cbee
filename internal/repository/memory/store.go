// Package memory holds a mutex-guarded implementation of repository.Store.
// It honors the same atomicity contract as the MongoDB store (each method is
// one critical section), which makes it usable both for tests and for
// running the service without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harshg28/stockroom/internal/domain/models"
	"github.com/harshg28/stockroom/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store keeps all state in process memory.
type Store struct {
	mu           sync.Mutex
	items        map[string]models.Item
	issuances    map[string]models.Issuance
	transactions []models.StockTransaction
	issuanceSeq  []string
	nextSerial   int64
}

// NewStore returns an empty store. The serial counter starts at 1 and only
// ever moves forward; deleting an item never frees its serial.
func NewStore() *Store {
	return &Store{
		items:      make(map[string]models.Item),
		issuances:  make(map[string]models.Issuance),
		nextSerial: 1,
	}
}

func newID() string { return primitive.NewObjectID().Hex() }

// InsertItem assigns the next serial number and stores the item. The
// read-and-reserve of the serial happens under the store lock, so concurrent
// inserts always observe distinct values.
func (s *Store) InsertItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" {
		item.ID = newID()
	}
	item.SerialNumber = s.nextSerial
	s.nextSerial++

	s.items[item.ID] = *item
	return nil
}

// GetItem fetches a single item by id.
func (s *Store) GetItem(_ context.Context, id string) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return models.Item{}, repository.ErrItemNotFound
	}
	return item, nil
}

// ListItems returns every item ordered by serial number.
func (s *Store) ListItems(_ context.Context) ([]models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].SerialNumber < items[j].SerialNumber })
	return items, nil
}

// DeleteItem removes the item and cascades its issuances and transactions.
func (s *Store) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return repository.ErrItemNotFound
	}
	delete(s.items, id)

	remaining := s.issuanceSeq[:0]
	for _, issID := range s.issuanceSeq {
		if s.issuances[issID].ItemID == id {
			delete(s.issuances, issID)
			continue
		}
		remaining = append(remaining, issID)
	}
	s.issuanceSeq = remaining

	kept := s.transactions[:0]
	for _, txn := range s.transactions {
		if txn.ItemID != id {
			kept = append(kept, txn)
		}
	}
	s.transactions = kept
	return nil
}

// ListCategories returns the distinct non-empty category names, sorted.
func (s *Store) ListCategories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	for _, item := range s.items {
		if item.Category != "" {
			seen[item.Category] = struct{}{}
		}
	}
	categories := make([]string, 0, len(seen))
	for name := range seen {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	return categories, nil
}

// AddStock adds qty to the item and appends the IN entry atomically.
func (s *Store) AddStock(_ context.Context, itemID string, qty int64, remarks string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return repository.ErrItemNotFound
	}
	item.Quantity += qty
	s.items[itemID] = item

	s.appendTransactionLocked(itemID, models.DirectionIn, qty, remarks, at)
	return nil
}

// RemoveStock is the check-and-subtract: both the guard and the subtraction
// run under the same lock hold, so racing removals cannot oversell.
func (s *Store) RemoveStock(_ context.Context, itemID string, qty int64, remarks string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.removeStockLocked(itemID, qty, remarks, at); err != nil {
		return err
	}
	return nil
}

func (s *Store) removeStockLocked(itemID string, qty int64, remarks string, at time.Time) error {
	item, ok := s.items[itemID]
	if !ok {
		return repository.ErrItemNotFound
	}
	if item.Quantity < qty {
		return repository.ErrInsufficientStock
	}
	item.Quantity -= qty
	s.items[itemID] = item

	s.appendTransactionLocked(itemID, models.DirectionOut, qty, remarks, at)
	return nil
}

func (s *Store) appendTransactionLocked(itemID string, dir models.Direction, qty int64, remarks string, at time.Time) {
	s.transactions = append(s.transactions, models.StockTransaction{
		ID:        newID(),
		ItemID:    itemID,
		Direction: dir,
		Quantity:  qty,
		Date:      at,
		Remarks:   remarks,
	})
}

// ListTransactions returns the item's ledger entries, newest first.
func (s *Store) ListTransactions(_ context.Context, itemID string) ([]models.StockTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var txns []models.StockTransaction
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if s.transactions[i].ItemID == itemID {
			txns = append(txns, s.transactions[i])
		}
	}
	return txns, nil
}

// OpenIssuance couples the conditional decrement, the issuance record and
// the OUT entry in one critical section.
func (s *Store) OpenIssuance(_ context.Context, iss *models.Issuance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if iss.ID == "" {
		iss.ID = newID()
	}

	remarks := fmt.Sprintf("issued to %s", iss.Receiver)
	if err := s.removeStockLocked(iss.ItemID, iss.Quantity, remarks, iss.IssueDate); err != nil {
		return err
	}

	s.issuances[iss.ID] = *iss
	s.issuanceSeq = append(s.issuanceSeq, iss.ID)
	return nil
}

// CloseIssuance checks and flips the received flag, conditionally restores
// stock and writes the IN entry, all under one lock hold. A repeat call sees
// the flag already set and changes nothing.
func (s *Store) CloseIssuance(_ context.Context, id string, status models.ComponentStatus, remark string, at time.Time) (models.Issuance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	iss, ok := s.issuances[id]
	if !ok {
		return models.Issuance{}, repository.ErrIssuanceNotFound
	}
	if iss.Received {
		return models.Issuance{}, repository.ErrAlreadyReceived
	}

	iss.Received = true
	iss.ComponentStatus = status
	iss.Remark = models.AppendRemark(iss.Remark, remark)
	receiveDate := at
	iss.ReceiveDate = &receiveDate
	s.issuances[id] = iss

	if status.RestoresStock() {
		if item, ok := s.items[iss.ItemID]; ok {
			item.Quantity += iss.Quantity
			s.items[iss.ItemID] = item
			s.appendTransactionLocked(iss.ItemID, models.DirectionIn, iss.Quantity, fmt.Sprintf("returned %s", status), at)
		}
	}

	return iss, nil
}

// GetIssuance fetches a single issuance by id.
func (s *Store) GetIssuance(_ context.Context, id string) (models.Issuance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	iss, ok := s.issuances[id]
	if !ok {
		return models.Issuance{}, repository.ErrIssuanceNotFound
	}
	return iss, nil
}

// ListIssuances returns all issuances, newest issue date first.
func (s *Store) ListIssuances(_ context.Context) ([]models.Issuance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issuances := make([]models.Issuance, 0, len(s.issuanceSeq))
	for i := len(s.issuanceSeq) - 1; i >= 0; i-- {
		issuances = append(issuances, s.issuances[s.issuanceSeq[i]])
	}
	sort.SliceStable(issuances, func(i, j int) bool {
		return issuances[i].IssueDate.After(issuances[j].IssueDate)
	})
	return issuances, nil
}

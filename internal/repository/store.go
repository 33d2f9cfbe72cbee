package repository

import (
	"context"
	"errors"
	"time"

	"github.com/harshg28/stockroom/internal/domain/models"
)

// Storage sentinels. Conflict errors are business outcomes the caller acts
// on; anything else bubbling out of a store is a persistence failure.
var (
	ErrItemNotFound      = errors.New("item not found")
	ErrIssuanceNotFound  = errors.New("issuance not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlreadyReceived   = errors.New("issuance already received")
	ErrDuplicateSerial   = errors.New("serial number already taken")
)

// Store is the durable state the inventory core runs against. Every method
// that mutates stock is atomic with the ledger entry it writes: a quantity
// change and its transaction row either both land or neither does, and the
// conditional decrement is a single check-and-subtract so two racing writers
// cannot oversell. Both the MongoDB and the in-memory implementations honor
// the same contract.
type Store interface {
	// InsertItem persists a new item, assigning it the next serial number.
	// Serial allocation and insert retry internally on allocation races;
	// the caller never sees a duplicate or a gap it caused.
	InsertItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id string) (models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	// DeleteItem removes the item and cascades its issuances and
	// transactions. Serial numbers of remaining items are never reassigned.
	DeleteItem(ctx context.Context, id string) error
	// ListCategories returns the distinct non-empty categories in order.
	ListCategories(ctx context.Context) ([]string, error)

	// AddStock adds qty (> 0) to the item and appends an IN entry.
	AddStock(ctx context.Context, itemID string, qty int64, remarks string, at time.Time) error
	// RemoveStock subtracts qty if the current quantity covers it, and
	// appends an OUT entry; otherwise fails with ErrInsufficientStock and
	// changes nothing.
	RemoveStock(ctx context.Context, itemID string, qty int64, remarks string, at time.Time) error
	ListTransactions(ctx context.Context, itemID string) ([]models.StockTransaction, error)

	// OpenIssuance decrements the item's stock, inserts the issuance and
	// records the OUT entry as one unit. On ErrInsufficientStock no record
	// is created.
	OpenIssuance(ctx context.Context, iss *models.Issuance) error
	// CloseIssuance flips the received flag (guarded, exactly once), stamps
	// the receive date, appends the remark and, when the component status
	// restores stock, increments the item and records the IN entry — all as
	// one unit. A second call fails with ErrAlreadyReceived and changes
	// nothing.
	CloseIssuance(ctx context.Context, id string, status models.ComponentStatus, remark string, at time.Time) (models.Issuance, error)
	GetIssuance(ctx context.Context, id string) (models.Issuance, error)
	// ListIssuances returns issuances ordered by issue date, newest first.
	ListIssuances(ctx context.Context) ([]models.Issuance, error)
}

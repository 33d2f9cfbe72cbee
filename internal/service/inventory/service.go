// Package inventory holds item management and the stock ledger surface.
// Quantity only ever moves through the store's atomic operations; the
// service validates input, stamps times and logs.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/harshg28/stockroom/internal/domain/models"
	"github.com/harshg28/stockroom/internal/repository"
)

// ErrInvalidItem indicates the item fields could not be accepted.
var ErrInvalidItem = errors.New("invalid item")

// CreateItemInput carries the caller-supplied fields for a new item. The
// serial number is never part of the input; the store assigns it.
type CreateItemInput struct {
	Name         string
	Category     string
	Quantity     int64
	ReorderLevel int64
	UnitPrice    float64
	Location     string
	IsImported   bool
}

// Service implements the item management operations.
type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires an inventory service instance.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// CreateItem validates the fields and persists a new item. The store
// allocates the serial number atomically, so concurrent creates (manual or
// imported) each get a distinct sequential value.
func (s *Service) CreateItem(ctx context.Context, input CreateItemInput) (models.Item, error) {
	switch {
	case input.Name == "":
		return models.Item{}, fmt.Errorf("%w: name is required", ErrInvalidItem)
	case input.Quantity < 0:
		return models.Item{}, fmt.Errorf("%w: quantity cannot be negative", ErrInvalidItem)
	case input.ReorderLevel < 0:
		return models.Item{}, fmt.Errorf("%w: reorder level cannot be negative", ErrInvalidItem)
	case input.UnitPrice < 0:
		return models.Item{}, fmt.Errorf("%w: unit price cannot be negative", ErrInvalidItem)
	}

	item := models.Item{
		Name:         input.Name,
		Category:     input.Category,
		Quantity:     input.Quantity,
		ReorderLevel: input.ReorderLevel,
		UnitPrice:    input.UnitPrice,
		Location:     input.Location,
		CreatedAt:    s.now().UTC(),
		IsImported:   input.IsImported,
	}

	if err := s.store.InsertItem(ctx, &item); err != nil {
		return models.Item{}, err
	}

	s.logger.Info("item created",
		zap.String("item_id", item.ID),
		zap.Int64("serial_no", item.SerialNumber),
		zap.String("name", item.Name),
		zap.Bool("imported", item.IsImported))

	return item, nil
}

// GetItem fetches one item.
func (s *Service) GetItem(ctx context.Context, id string) (models.Item, error) {
	return s.store.GetItem(ctx, id)
}

// ListItems returns all items ordered by serial number.
func (s *Service) ListItems(ctx context.Context) ([]models.Item, error) {
	return s.store.ListItems(ctx)
}

// DeleteItem removes an item, cascading its issuances and transactions.
// Remaining serial numbers keep their values; gaps are acceptable because
// printed labels must stay valid.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.logger.Info("item deleted", zap.String("item_id", id))
	return nil
}

// ListCategories returns the distinct non-empty categories in order.
func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	return s.store.ListCategories(ctx)
}

// AddStock records a manual stock-in movement.
func (s *Service) AddStock(ctx context.Context, itemID string, qty int64, remarks string) (models.Item, error) {
	if err := models.ValidateQuantity(qty); err != nil {
		return models.Item{}, err
	}
	if err := s.store.AddStock(ctx, itemID, qty, remarks, s.now().UTC()); err != nil {
		return models.Item{}, err
	}
	s.logger.Info("stock added", zap.String("item_id", itemID), zap.Int64("qty", qty))
	return s.store.GetItem(ctx, itemID)
}

// RemoveStock records a manual stock-out movement. The store refuses to go
// below zero; the caller gets repository.ErrInsufficientStock.
func (s *Service) RemoveStock(ctx context.Context, itemID string, qty int64, remarks string) (models.Item, error) {
	if err := models.ValidateQuantity(qty); err != nil {
		return models.Item{}, err
	}
	if err := s.store.RemoveStock(ctx, itemID, qty, remarks, s.now().UTC()); err != nil {
		return models.Item{}, err
	}
	s.logger.Info("stock removed", zap.String("item_id", itemID), zap.Int64("qty", qty))
	return s.store.GetItem(ctx, itemID)
}

// Transactions returns the item's ledger entries, newest first.
func (s *Service) Transactions(ctx context.Context, itemID string) ([]models.StockTransaction, error) {
	if _, err := s.store.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, itemID)
}

// LowStockItems returns the items currently at or below their reorder
// level, out-of-stock ones included.
func (s *Service) LowStockItems(ctx context.Context) ([]models.Item, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	var low []models.Item
	for _, item := range items {
		if item.StockStatus() != models.StockStatusIn {
			low = append(low, item)
		}
	}
	return low, nil
}

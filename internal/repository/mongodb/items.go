package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harshg28/stockroom/internal/domain/models"
	"github.com/harshg28/stockroom/internal/repository"
)

// maxSerialRetries bounds the allocate-insert retry loop. A lost race is
// rare; hitting the bound means something other than contention is wrong.
const maxSerialRetries = 5

// InsertItem allocates the next serial number and persists the item. When
// the unique index rejects the serial (a lost allocation race), the counter
// is re-synced and the allocate-insert step retried.
func (s *Store) InsertItem(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = primitive.NewObjectID().Hex()
	}

	for attempt := 0; attempt < maxSerialRetries; attempt++ {
		serial, err := s.nextSerial(ctx)
		if err != nil {
			return err
		}
		item.SerialNumber = serial

		_, err = s.items().InsertOne(ctx, item)
		if err == nil {
			return nil
		}
		if mongo.IsDuplicateKeyError(err) {
			if syncErr := s.syncSerialCounter(ctx); syncErr != nil {
				return syncErr
			}
			continue
		}
		return fmt.Errorf("insert item: %w", err)
	}

	return fmt.Errorf("insert item after %d attempts: %w", maxSerialRetries, repository.ErrDuplicateSerial)
}

// GetItem fetches a single item by id.
func (s *Store) GetItem(ctx context.Context, id string) (models.Item, error) {
	var item models.Item
	err := s.items().FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Item{}, repository.ErrItemNotFound
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("find item: %w", err)
	}
	return item, nil
}

// ListItems returns every item ordered by serial number.
func (s *Store) ListItems(ctx context.Context) ([]models.Item, error) {
	opts := optionsFindSorted("serial_no", 1)
	cur, err := s.items().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer cur.Close(ctx)

	var items []models.Item
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}

// DeleteItem removes the item and cascades its issuances and transactions in
// one transaction.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	return s.withTxn(ctx, func(sc mongo.SessionContext) error {
		res, err := s.items().DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		if res.DeletedCount == 0 {
			return repository.ErrItemNotFound
		}

		if _, err := s.issuances().DeleteMany(sc, bson.M{"item_id": id}); err != nil {
			return fmt.Errorf("cascade issuances: %w", err)
		}
		if _, err := s.transactions().DeleteMany(sc, bson.M{"item_id": id}); err != nil {
			return fmt.Errorf("cascade transactions: %w", err)
		}
		return nil
	})
}

// ListCategories returns the distinct non-empty category names, sorted.
func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	values, err := s.items().Distinct(ctx, "category", bson.M{"category": bson.M{"$nin": bson.A{"", nil}}})
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok && name != "" {
			categories = append(categories, name)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

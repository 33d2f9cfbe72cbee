package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harshg28/stockroom/internal/domain/models"
	"github.com/harshg28/stockroom/internal/repository"
)

func optionsFindSorted(field string, order int) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: order}})
}

// incrementStock applies a relative $inc; it never reads and writes back an
// absolute value, so concurrent adjustments compose.
func (s *Store) incrementStock(ctx context.Context, itemID string, qty int64) error {
	res, err := s.items().UpdateOne(ctx,
		bson.M{"_id": itemID},
		bson.M{"$inc": bson.M{"quantity": qty}},
	)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrItemNotFound
	}
	return nil
}

// decrementStock is the authoritative check-and-subtract: the quantity guard
// sits in the update filter, so the read of the current value and the
// subtraction are one atomic step. First committer wins; the loser matches
// nothing and nothing is applied.
func (s *Store) decrementStock(ctx context.Context, itemID string, qty int64) error {
	res, err := s.items().UpdateOne(ctx,
		bson.M{"_id": itemID, "quantity": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"quantity": -qty}},
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if res.MatchedCount == 0 {
		count, err := s.items().CountDocuments(ctx, bson.M{"_id": itemID})
		if err != nil {
			return fmt.Errorf("check item existence: %w", err)
		}
		if count == 0 {
			return repository.ErrItemNotFound
		}
		return repository.ErrInsufficientStock
	}
	return nil
}

func (s *Store) appendTransaction(ctx context.Context, txn models.StockTransaction) error {
	if txn.ID == "" {
		txn.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.transactions().InsertOne(ctx, txn); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

// AddStock adds qty to the item and records the IN entry in one transaction.
func (s *Store) AddStock(ctx context.Context, itemID string, qty int64, remarks string, at time.Time) error {
	return s.withTxn(ctx, func(sc mongo.SessionContext) error {
		if err := s.incrementStock(sc, itemID, qty); err != nil {
			return err
		}
		return s.appendTransaction(sc, models.StockTransaction{
			ItemID:    itemID,
			Direction: models.DirectionIn,
			Quantity:  qty,
			Date:      at,
			Remarks:   remarks,
		})
	})
}

// RemoveStock subtracts qty if covered and records the OUT entry in one
// transaction; on ErrInsufficientStock the ledger is untouched.
func (s *Store) RemoveStock(ctx context.Context, itemID string, qty int64, remarks string, at time.Time) error {
	return s.withTxn(ctx, func(sc mongo.SessionContext) error {
		if err := s.decrementStock(sc, itemID, qty); err != nil {
			return err
		}
		return s.appendTransaction(sc, models.StockTransaction{
			ItemID:    itemID,
			Direction: models.DirectionOut,
			Quantity:  qty,
			Date:      at,
			Remarks:   remarks,
		})
	})
}

// ListTransactions returns the item's ledger entries, newest first.
func (s *Store) ListTransactions(ctx context.Context, itemID string) ([]models.StockTransaction, error) {
	cur, err := s.transactions().Find(ctx, bson.M{"item_id": itemID}, optionsFindSorted("date", -1))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer cur.Close(ctx)

	var txns []models.StockTransaction
	if err := cur.All(ctx, &txns); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return txns, nil
}

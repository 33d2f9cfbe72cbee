package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harshg28/stockroom/internal/domain/models"
	"github.com/harshg28/stockroom/internal/repository"
)

// OpenIssuance decrements stock, inserts the issuance and writes the OUT
// entry as one transaction. A failed decrement aborts before any record is
// created, so stock and loan records cannot drift apart.
func (s *Store) OpenIssuance(ctx context.Context, iss *models.Issuance) error {
	if iss.ID == "" {
		iss.ID = primitive.NewObjectID().Hex()
	}

	return s.withTxn(ctx, func(sc mongo.SessionContext) error {
		if err := s.decrementStock(sc, iss.ItemID, iss.Quantity); err != nil {
			return err
		}
		if _, err := s.issuances().InsertOne(sc, iss); err != nil {
			return fmt.Errorf("insert issuance: %w", err)
		}
		return s.appendTransaction(sc, models.StockTransaction{
			ItemID:    iss.ItemID,
			Direction: models.DirectionOut,
			Quantity:  iss.Quantity,
			Date:      iss.IssueDate,
			Remarks:   fmt.Sprintf("issued to %s", iss.Receiver),
		})
	})
}

// CloseIssuance transitions the record to received and conditionally
// restores stock in one transaction. The received guard lives in the update
// filter, so two racing closes resolve to exactly one restock; the loser
// matches nothing and gets ErrAlreadyReceived.
func (s *Store) CloseIssuance(ctx context.Context, id string, status models.ComponentStatus, remark string, at time.Time) (models.Issuance, error) {
	var closed models.Issuance

	err := s.withTxn(ctx, func(sc mongo.SessionContext) error {
		var iss models.Issuance
		err := s.issuances().FindOne(sc, bson.M{"_id": id}).Decode(&iss)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.ErrIssuanceNotFound
		}
		if err != nil {
			return fmt.Errorf("find issuance: %w", err)
		}
		if iss.Received {
			return repository.ErrAlreadyReceived
		}

		newRemark := models.AppendRemark(iss.Remark, remark)
		res, err := s.issuances().UpdateOne(sc,
			bson.M{"_id": id, "received": false},
			bson.M{"$set": bson.M{
				"received":         true,
				"component_status": status,
				"receive_date":     at,
				"remark":           newRemark,
			}},
		)
		if err != nil {
			return fmt.Errorf("update issuance: %w", err)
		}
		if res.MatchedCount == 0 {
			return repository.ErrAlreadyReceived
		}

		if status.RestoresStock() {
			if err := s.incrementStock(sc, iss.ItemID, iss.Quantity); err != nil {
				return err
			}
			if err := s.appendTransaction(sc, models.StockTransaction{
				ItemID:    iss.ItemID,
				Direction: models.DirectionIn,
				Quantity:  iss.Quantity,
				Date:      at,
				Remarks:   fmt.Sprintf("returned %s", status),
			}); err != nil {
				return err
			}
		}

		iss.Received = true
		iss.ComponentStatus = status
		iss.ReceiveDate = &at
		iss.Remark = newRemark
		closed = iss
		return nil
	})
	if err != nil {
		return models.Issuance{}, err
	}
	return closed, nil
}

// GetIssuance fetches a single issuance by id.
func (s *Store) GetIssuance(ctx context.Context, id string) (models.Issuance, error) {
	var iss models.Issuance
	err := s.issuances().FindOne(ctx, bson.M{"_id": id}).Decode(&iss)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Issuance{}, repository.ErrIssuanceNotFound
	}
	if err != nil {
		return models.Issuance{}, fmt.Errorf("find issuance: %w", err)
	}
	return iss, nil
}

// ListIssuances returns all issuances, newest issue date first.
func (s *Store) ListIssuances(ctx context.Context) ([]models.Issuance, error) {
	cur, err := s.issuances().Find(ctx, bson.M{}, optionsFindSorted("issue_date", -1))
	if err != nil {
		return nil, fmt.Errorf("list issuances: %w", err)
	}
	defer cur.Close(ctx)

	var issuances []models.Issuance
	if err := cur.All(ctx, &issuances); err != nil {
		return nil, fmt.Errorf("decode issuances: %w", err)
	}
	return issuances, nil
}

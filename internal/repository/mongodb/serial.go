package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const serialCounterID = "item_serial"

// nextSerial reserves the next serial number with a single atomic
// read-and-increment on the counter document. Concurrent allocators each
// observe a distinct value; the counter is monotonic and serials are never
// reassigned after a delete.
func (s *Store) nextSerial(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters().FindOneAndUpdate(ctx,
		bson.M{"_id": serialCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("advance serial counter: %w", err)
	}

	return counter.Seq, nil
}

// syncSerialCounter raises the counter to the highest serial number already
// present, so the next allocation is max+1. Run at startup and again when an
// insert loses a uniqueness race against rows written outside the counter.
func (s *Store) syncSerialCounter(ctx context.Context) error {
	opts := options.FindOne().SetSort(bson.D{{Key: "serial_no", Value: -1}})

	var top struct {
		SerialNumber int64 `bson:"serial_no"`
	}
	err := s.items().FindOne(ctx, bson.M{}, opts).Decode(&top)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read max serial: %w", err)
	}

	_, err = s.counters().UpdateOne(ctx,
		bson.M{"_id": serialCounterID},
		bson.M{"$max": bson.M{"seq": top.SerialNumber}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("sync serial counter: %w", err)
	}
	return nil
}

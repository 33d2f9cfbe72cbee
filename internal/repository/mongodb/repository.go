package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harshg28/stockroom/internal/repository"
)

const (
	itemsCollection        = "items"
	issuancesCollection    = "issuances"
	transactionsCollection = "stock_transactions"
	countersCollection     = "counters"
)

var _ repository.Store = (*Store)(nil)

// Store implements repository.Store on MongoDB. Multi-document operations
// (stock mutation + ledger entry, issuance open/close) run inside a session
// transaction, so the deployment must be a replica set.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to MongoDB, verifies the connection and prepares the
// indexes the core invariants rely on (unique serial numbers in particular).
func NewStore(ctx context.Context, uri string, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s := &Store{
		client: client,
		db:     client.Database(dbName),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	if err := s.syncSerialCounter(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.items().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "serial_no", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create serial index: %w", err)
	}

	_, err = s.issuances().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "item_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create issuance item index: %w", err)
	}

	_, err = s.transactions().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "item_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create transaction item index: %w", err)
	}

	return nil
}

func (s *Store) items() *mongo.Collection        { return s.db.Collection(itemsCollection) }
func (s *Store) issuances() *mongo.Collection    { return s.db.Collection(issuancesCollection) }
func (s *Store) transactions() *mongo.Collection { return s.db.Collection(transactionsCollection) }
func (s *Store) counters() *mongo.Collection     { return s.db.Collection(countersCollection) }

// withTxn runs fn inside a session transaction. The driver retries transient
// commit conflicts; domain sentinels returned by fn abort and surface as-is.
func (s *Store) withTxn(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

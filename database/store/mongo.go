package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxTxnAttempts bounds commit retries on transient transaction errors.
const maxTxnAttempts = 5

// MongoStore implements Store on a MongoDB database using multi-document
// transactions (requires a replica set).
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore returns a MongoStore over the named database.
func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{db: client.Database(dbName)}
}

func (s *MongoStore) RunTransaction(ctx context.Context, fn func(tx Txn) error) error {
	sess, err := s.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	var lastErr error
	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
			if err := sc.StartTransaction(); err != nil {
				return err
			}
			if err := fn(&mongoTxn{sc: sc, db: s.db}); err != nil {
				_ = sc.AbortTransaction(sc)
				return err
			}
			return sc.CommitTransaction(sc)
		})
		if err == nil {
			return nil
		}
		if isTransient(err) {
			lastErr = err
			continue
		}
		return err
	}
	return fmt.Errorf("%w: %v", ErrTxnConflict, lastErr)
}

// isTransient reports whether the error carries a mongo retry label.
func isTransient(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.HasErrorLabel("TransientTransactionError") ||
			cmdErr.HasErrorLabel("UnknownTransactionCommitResult")
	}
	return false
}

func (s *MongoStore) Get(ctx context.Context, collection, id string, out any) (bool, error) {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return true, nil
}

func (s *MongoStore) Find(ctx context.Context, collection string, filter map[string]any, out any) error {
	cur, err := s.db.Collection(collection).Find(ctx, bson.M(filter))
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s query: %w", collection, err)
	}
	return nil
}

// mongoTxn routes reads and writes through the session context so they take
// part in the enclosing transaction.
type mongoTxn struct {
	sc mongo.SessionContext
	db *mongo.Database
}

func (t *mongoTxn) Get(collection, id string, out any) (bool, error) {
	err := t.db.Collection(collection).FindOne(t.sc, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return true, nil
}

func (t *mongoTxn) Set(collection, id string, doc any) error {
	opts := options.Replace().SetUpsert(true)
	_, err := t.db.Collection(collection).ReplaceOne(t.sc, bson.M{"_id": id}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (t *mongoTxn) Delete(collection, id string) error {
	_, err := t.db.Collection(collection).DeleteOne(t.sc, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

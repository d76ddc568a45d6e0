package store

import (
	"context"
	"errors"

	"github.com/Rana718/posseed/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Store is the document persistence the seeder writes through. Every call is
// an independent, immediately committed operation.
type Store interface {
	EnsureIndex(ctx context.Context, spec types.IndexSpec) error

	InsertOne(ctx context.Context, collection string, document interface{}) error
	InsertMany(ctx context.Context, collection string, documents []interface{}) error

	// FindOne decodes the first match into out or returns ErrNotFound.
	FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error
	// Find decodes up to limit matches (0 = no limit) into out, a pointer to a slice.
	Find(ctx context.Context, collection string, filter bson.M, limit int64, out interface{}) error
	Count(ctx context.Context, collection string, filter bson.M) (int64, error)

	UpdateByID(ctx context.Context, collection string, id primitive.ObjectID, set bson.M) error
	// Upsert applies set to the first match, or inserts filter+setOnInsert+set.
	Upsert(ctx context.Context, collection string, filter, set, setOnInsert bson.M) error

	Close() error
}

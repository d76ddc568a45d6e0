package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rana718/posseed/internal/store"
	"github.com/Rana718/posseed/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Adapter struct {
	client   *mongo.Client
	database *mongo.Database
	dbName   string
	fallback string
	logger   *zap.Logger
}

var _ store.Store = (*Adapter)(nil)

// New returns an unconnected adapter. fallbackDB is used when the connection
// string names no database.
func New(fallbackDB string, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{fallback: fallbackDB, logger: logger}
}

func (a *Adapter) Connect(ctx context.Context, url string) error {
	clientOpts := options.Client().ApplyURI(url)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	a.client = client
	a.dbName = ExtractDBName(url, clientOpts, a.fallback)
	a.database = client.Database(a.dbName)

	a.logger.Debug("connected to mongodb", zap.String("database", a.dbName))
	return nil
}

// ExtractDBName takes the database from the URI path, then from the auth
// source, then falls back. An explicit /admin path is used as is; an
// authSource of admin is skipped.
func ExtractDBName(url string, opts *options.ClientOptions, fallback string) string {
	if len(url) > 0 {
		parts := strings.Split(url, "/")
		if len(parts) > 3 {
			dbPart := parts[len(parts)-1]
			if idx := strings.Index(dbPart, "?"); idx >= 0 {
				dbPart = dbPart[:idx]
			}
			if dbPart != "" {
				return dbPart
			}
		}
	}

	if opts != nil && opts.Auth != nil && opts.Auth.AuthSource != "" && opts.Auth.AuthSource != "admin" {
		return opts.Auth.AuthSource
	}

	return fallback
}

func (a *Adapter) DatabaseName() string {
	return a.dbName
}

func (a *Adapter) Close() error {
	if a.client != nil {
		return a.client.Disconnect(context.Background())
	}
	return nil
}

func (a *Adapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx, nil)
}

// ListCollections returns the collection names of the connected database.
func (a *Adapter) ListCollections(ctx context.Context) ([]string, error) {
	if a.database == nil {
		return nil, fmt.Errorf("database not connected")
	}
	names, err := a.database.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}

func (a *Adapter) EnsureIndex(ctx context.Context, spec types.IndexSpec) error {
	keys := bson.D{}
	for _, k := range spec.Keys {
		keys = append(keys, bson.E{Key: k, Value: 1})
	}

	model := mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetUnique(spec.Unique),
	}
	name, err := a.database.Collection(spec.Collection).Indexes().CreateOne(ctx, model)
	if err != nil {
		return fmt.Errorf("failed to create index on %s: %w", spec.Collection, err)
	}
	a.logger.Debug("index ensured", zap.String("collection", spec.Collection), zap.String("index", name))
	return nil
}

func (a *Adapter) InsertOne(ctx context.Context, collection string, document interface{}) error {
	if _, err := a.database.Collection(collection).InsertOne(ctx, document); err != nil {
		return wrapWriteError(collection, err)
	}
	return nil
}

func (a *Adapter) InsertMany(ctx context.Context, collection string, documents []interface{}) error {
	if len(documents) == 0 {
		return nil
	}
	if _, err := a.database.Collection(collection).InsertMany(ctx, documents); err != nil {
		return wrapWriteError(collection, err)
	}
	return nil
}

func (a *Adapter) FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	err := a.database.Collection(collection).FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", collection, err)
	}
	return nil
}

func (a *Adapter) Find(ctx context.Context, collection string, filter bson.M, limit int64, out interface{}) error {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := a.database.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return nil
}

func (a *Adapter) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	n, err := a.database.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

func (a *Adapter) UpdateByID(ctx context.Context, collection string, id primitive.ObjectID, set bson.M) error {
	res, err := a.database.Collection(collection).UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return wrapWriteError(collection, err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (a *Adapter) Upsert(ctx context.Context, collection string, filter, set, setOnInsert bson.M) error {
	update := bson.M{"$set": set}
	if len(setOnInsert) > 0 {
		update["$setOnInsert"] = setOnInsert
	}
	_, err := a.database.Collection(collection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return wrapWriteError(collection, err)
	}
	return nil
}

func wrapWriteError(collection string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to write %s: %v: %w", collection, err, store.ErrDuplicateKey)
	}
	return fmt.Errorf("failed to write %s: %w", collection, err)
}

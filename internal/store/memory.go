package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/Rana718/posseed/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store used for dry runs and tests. It understands
// equality filters, dotted paths into arrays of sub-documents and unique
// indexes, which is all the seeder asks of a database.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]bson.M
	indexes     map[string][]types.IndexSpec
}

func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string][]bson.M),
		indexes:     make(map[string][]types.IndexSpec),
	}
}

func (m *Memory) EnsureIndex(ctx context.Context, spec types.IndexSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.indexes[spec.Collection] {
		if strings.Join(existing.Keys, ",") == strings.Join(spec.Keys, ",") {
			if existing.Unique != spec.Unique {
				return fmt.Errorf("index on %s(%s) already exists with different options",
					spec.Collection, strings.Join(spec.Keys, ","))
			}
			return nil
		}
	}

	if spec.Unique {
		seen := make(map[string]bool)
		for _, doc := range m.collections[spec.Collection] {
			key := indexKey(doc, spec.Keys)
			if seen[key] {
				return fmt.Errorf("cannot build unique index on %s: %w", spec.Collection, ErrDuplicateKey)
			}
			seen[key] = true
		}
	}

	m.indexes[spec.Collection] = append(m.indexes[spec.Collection], spec)
	return nil
}

func (m *Memory) InsertOne(ctx context.Context, collection string, document interface{}) error {
	return m.InsertMany(ctx, collection, []interface{}{document})
}

func (m *Memory) InsertMany(ctx context.Context, collection string, documents []interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, document := range documents {
		doc, err := toDocument(document)
		if err != nil {
			return err
		}
		if _, ok := doc["_id"]; !ok {
			doc["_id"] = primitive.NewObjectID()
		}
		if err := m.checkUnique(collection, doc, -1); err != nil {
			return err
		}
		m.collections[collection] = append(m.collections[collection], doc)
	}
	return nil
}

func (m *Memory) FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, doc := range m.collections[collection] {
		if matches(doc, filter) {
			return decode(doc, out)
		}
	}
	return ErrNotFound
}

func (m *Memory) Find(ctx context.Context, collection string, filter bson.M, limit int64, out interface{}) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	slice := reflect.ValueOf(out)
	if slice.Kind() != reflect.Ptr || slice.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("find output must be a pointer to a slice, got %T", out)
	}
	elemType := slice.Elem().Type().Elem()
	result := reflect.MakeSlice(slice.Elem().Type(), 0, 0)

	for _, doc := range m.collections[collection] {
		if limit > 0 && int64(result.Len()) >= limit {
			break
		}
		if !matches(doc, filter) {
			continue
		}
		elem := reflect.New(elemType)
		if err := decode(doc, elem.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, elem.Elem())
	}

	slice.Elem().Set(result)
	return nil
}

func (m *Memory) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, doc := range m.collections[collection] {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) UpdateByID(ctx context.Context, collection string, id primitive.ObjectID, set bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, doc := range m.collections[collection] {
		if !valuesEqual(doc["_id"], id) {
			continue
		}
		return m.apply(collection, i, set)
	}
	return ErrNotFound
}

func (m *Memory) Upsert(ctx context.Context, collection string, filter, set, setOnInsert bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, doc := range m.collections[collection] {
		if matches(doc, filter) {
			return m.apply(collection, i, set)
		}
	}

	fresh := bson.M{}
	for k, v := range filter {
		fresh[k] = v
	}
	for k, v := range setOnInsert {
		fresh[k] = v
	}
	for k, v := range set {
		fresh[k] = v
	}
	doc, err := toDocument(fresh)
	if err != nil {
		return err
	}
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = primitive.NewObjectID()
	}
	if err := m.checkUnique(collection, doc, -1); err != nil {
		return err
	}
	m.collections[collection] = append(m.collections[collection], doc)
	return nil
}

// DeleteByID removes a document. Only the memory store exposes it; the seeder
// never deletes.
func (m *Memory) DeleteByID(collection string, id primitive.ObjectID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.collections[collection]
	for i, doc := range docs {
		if valuesEqual(doc["_id"], id) {
			m.collections[collection] = append(docs[:i], docs[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Memory) Close() error { return nil }

func (m *Memory) apply(collection string, idx int, set bson.M) error {
	patch, err := toDocument(set)
	if err != nil {
		return err
	}
	updated := bson.M{}
	for k, v := range m.collections[collection][idx] {
		updated[k] = v
	}
	for k, v := range patch {
		updated[k] = v
	}
	if err := m.checkUnique(collection, updated, idx); err != nil {
		return err
	}
	m.collections[collection][idx] = updated
	return nil
}

func (m *Memory) checkUnique(collection string, doc bson.M, skip int) error {
	for _, spec := range m.indexes[collection] {
		if !spec.Unique {
			continue
		}
		key := indexKey(doc, spec.Keys)
		for i, other := range m.collections[collection] {
			if i == skip {
				continue
			}
			if indexKey(other, spec.Keys) == key {
				return fmt.Errorf("%s index %s dup key %s: %w",
					collection, strings.Join(spec.Keys, "_"), key, ErrDuplicateKey)
			}
		}
	}
	return nil
}

func indexKey(doc bson.M, keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%v", normalize(doc[k]))
	}
	return strings.Join(parts, "|")
}

func toDocument(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

func decode(doc bson.M, out interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return bson.Unmarshal(raw, out)
}

func matches(doc bson.M, filter bson.M) bool {
	for key, want := range filter {
		candidates := lookup(doc, strings.Split(key, "."))
		if len(candidates) == 0 {
			if want != nil {
				return false
			}
			continue
		}
		found := false
		for _, c := range candidates {
			if valuesEqual(c, want) {
				found = true
				break
			}
			if arr, ok := c.(primitive.A); ok {
				for _, el := range arr {
					if valuesEqual(el, want) {
						found = true
						break
					}
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// lookup resolves a dotted path, fanning out over arrays the way MongoDB does.
func lookup(value interface{}, path []string) []interface{} {
	if len(path) == 0 {
		return []interface{}{value}
	}
	switch v := value.(type) {
	case bson.M:
		child, ok := v[path[0]]
		if !ok {
			return nil
		}
		return lookup(child, path[1:])
	case primitive.D:
		for _, e := range v {
			if e.Key == path[0] {
				return lookup(e.Value, path[1:])
			}
		}
		return nil
	case primitive.A:
		var out []interface{}
		for _, el := range v {
			out = append(out, lookup(el, path)...)
		}
		return out
	default:
		return nil
	}
}

func valuesEqual(a, b interface{}) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func normalize(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case *primitive.ObjectID:
		if n == nil {
			return nil
		}
		return *n
	case primitive.DateTime:
		return n.Time().UTC()
	case time.Time:
		return primitive.NewDateTimeFromTime(n).Time().UTC()
	default:
		return v
	}
}

package export

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/posseed/internal/store"
	_ "github.com/mattn/go-sqlite3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	FormatJSON   = "json"
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// Snapshot is a point-in-time copy of the seeded collections.
type Snapshot struct {
	Timestamp   string              `json:"timestamp"`
	Version     string              `json:"version"`
	Collections map[string][]bson.M `json:"collections"`
	Comment     string              `json:"comment"`
}

type Exporter struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
	qb     squirrel.StatementBuilderType
}

func New(st store.Store, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		store:  st,
		logger: logger,
		now:    time.Now,
		qb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Export reads every named collection and writes them under dir in the given
// format. It returns the path of the file or directory written, or "" when
// all collections were empty.
func (e *Exporter) Export(ctx context.Context, collections []string, dir, format string) (string, error) {
	snap, err := e.Collect(ctx, collections)
	if err != nil {
		return "", err
	}
	if len(snap.Collections) == 0 {
		return "", nil
	}

	switch format {
	case FormatCSV:
		return e.toCSV(snap, dir)
	case FormatSQLite:
		return e.toSQLite(ctx, snap, dir)
	case FormatJSON, "":
		return e.toJSON(snap, dir)
	default:
		return "", fmt.Errorf("unsupported export format: %s. Supported formats: [json csv sqlite]", format)
	}
}

// Collect fetches the collections concurrently. The first collection that
// fails to load fails the whole snapshot.
func (e *Exporter) Collect(ctx context.Context, collections []string) (*Snapshot, error) {
	snap := &Snapshot{
		Timestamp:   e.now().Format("2006-01-02 15:04:05"),
		Version:     "1.0",
		Collections: make(map[string][]bson.M, len(collections)),
		Comment:     "posseed export",
	}

	type result struct {
		name string
		docs []bson.M
		err  error
	}

	results := make(chan result, len(collections))
	var wg sync.WaitGroup

	for _, name := range collections {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			var docs []bson.M
			err := e.store.Find(ctx, name, bson.M{}, 0, &docs)
			results <- result{name, docs, err}
		}(name)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	for r := range results {
		if r.err != nil {
			e.logger.Error("failed to read collection", zap.String("collection", r.name), zap.Error(r.err))
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to read collection %s: %w", r.name, r.err)
			}
			continue
		}
		if len(r.docs) > 0 {
			snap.Collections[r.name] = r.docs
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (e *Exporter) toJSON(snap *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	filePath := filepath.Join(dir, fmt.Sprintf("export_%s.json", e.stamp()))

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return filePath, nil
}

func (e *Exporter) toCSV(snap *Snapshot, dir string) (string, error) {
	dirPath := filepath.Join(dir, fmt.Sprintf("export_%s_csv", e.stamp()))
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create CSV directory: %w", err)
	}

	for name, docs := range snap.Collections {
		if err := writeCSV(filepath.Join(dirPath, name+".csv"), docs); err != nil {
			return "", fmt.Errorf("failed to write CSV for %s: %w", name, err)
		}
	}
	return dirPath, nil
}

func writeCSV(path string, docs []bson.M) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	headers := Columns(docs)
	writer := csv.NewWriter(file)
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, doc := range docs {
		values := make([]string, len(headers))
		for i, header := range headers {
			values[i] = Cell(doc[header])
		}
		if err := writer.Write(values); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (e *Exporter) toSQLite(ctx context.Context, snap *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	filePath := filepath.Join(dir, fmt.Sprintf("export_%s.db", e.stamp()))

	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create SQLite database: %w", err)
	}
	defer db.Close()

	names := make([]string, 0, len(snap.Collections))
	for name := range snap.Collections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		docs := snap.Collections[name]
		columns := Columns(docs)

		createSQL := fmt.Sprintf("CREATE TABLE %q (%s)", name, buildColumnDefs(columns))
		if _, err := db.ExecContext(ctx, createSQL); err != nil {
			return "", fmt.Errorf("failed to create table %s: %w", name, err)
		}

		quoted := make([]string, len(columns))
		for i, col := range columns {
			quoted[i] = fmt.Sprintf("%q", col)
		}

		for n, doc := range docs {
			values := make([]interface{}, len(columns))
			for i, col := range columns {
				values[i] = Cell(doc[col])
			}
			insert := e.qb.Insert(fmt.Sprintf("%q", name)).Columns(quoted...).Values(values...)
			if _, err := insert.RunWith(db).ExecContext(ctx); err != nil {
				return "", fmt.Errorf("failed to insert row %d into %s: %w", n, name, err)
			}
		}
		e.logger.Debug("table exported", zap.String("table", name), zap.Int("rows", len(docs)))
	}

	return filePath, nil
}

func (e *Exporter) stamp() string {
	return e.now().Format("2006-01-02_15-04-05")
}

// Columns returns the sorted union of top-level keys, with _id first.
func Columns(docs []bson.M) []string {
	seen := map[string]bool{}
	for _, doc := range docs {
		for key := range doc {
			seen[key] = true
		}
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		if key != "_id" {
			columns = append(columns, key)
		}
	}
	sort.Strings(columns)
	if seen["_id"] {
		columns = append([]string{"_id"}, columns...)
	}
	return columns
}

// Cell flattens a document value into one text field. Nested documents and
// arrays become JSON.
func Cell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case primitive.D:
		return Cell(val.Map())
	case bson.M, primitive.A, map[string]interface{}, []interface{}:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func buildColumnDefs(columns []string) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = fmt.Sprintf("%q TEXT", col)
	}
	return strings.Join(defs, ", ")
}

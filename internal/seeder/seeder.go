package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/Rana718/posseed/internal/metrics"
	"github.com/Rana718/posseed/internal/store"
	"github.com/Rana718/posseed/internal/types"
	"github.com/fatih/color"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	store     store.Store
	config    SeedConfig
	generator *DataGenerator
	tokens    TokenSource
	now       func() time.Time
	logger    *zap.Logger
	metrics   *metrics.Recorder
	report    *Report
	roles     map[string]types.Role
}

type Option func(*Seeder)

func WithLogger(l *zap.Logger) Option {
	return func(s *Seeder) { s.logger = l }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Seeder) { s.metrics = m }
}

func WithTokens(t TokenSource) Option {
	return func(s *Seeder) { s.tokens = t }
}

func WithClock(now func() time.Time) Option {
	return func(s *Seeder) { s.now = now }
}

func New(st store.Store, cfg SeedConfig, opts ...Option) *Seeder {
	if cfg.Suppliers <= 0 {
		cfg.Suppliers = 2
	}
	if cfg.Categories <= 0 {
		cfg.Categories = 4
	}
	if cfg.RecipeLines <= 0 {
		cfg.RecipeLines = 4
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.TableMode == "" {
		cfg.TableMode = TableLatestPending
	}

	s := &Seeder{
		store:     st,
		config:    cfg,
		generator: NewDataGenerator(cfg.Seed),
		tokens:    RandomTokens(),
		now:       func() time.Time { return time.Now().UTC() },
		logger:    zap.NewNop(),
		metrics:   metrics.NewRecorder(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Seeder) Metrics() *metrics.Recorder {
	return s.metrics
}

// Seed runs the whole pipeline: reference data, then each tenant's catalog
// followed by its orders. The first error aborts the run; whatever was written
// before it stays in the database.
func (s *Seeder) Seed(ctx context.Context) (*Report, error) {
	started := s.now()
	s.report = newReport(s.config.Seed, s.config.TableMode, started)
	color.Cyan("🌱 Starting POS seeding (seed %d)...", s.config.Seed)

	if err := s.bootstrap(ctx); err != nil {
		return s.report, err
	}

	color.Cyan("🏗️  Creating %d restaurants with outlets, inventory, menus, users, tables and orders...", s.config.Restaurants)
	for i := 0; i < s.config.Restaurants; i++ {
		tenant, err := s.generateTenant(ctx)
		if err != nil {
			return s.report, fmt.Errorf("failed to generate restaurant %d: %w", i+1, err)
		}
		if err := s.synthesizeOrders(ctx, tenant); err != nil {
			return s.report, fmt.Errorf("failed to synthesize orders for %s: %w", tenant.Restaurant.Name, err)
		}
		s.report.Restaurants = append(s.report.Restaurants, tenant.Restaurant.Name)
	}

	s.report.Duration = s.now().Sub(started)
	s.metrics.RunDuration.Set(s.report.Duration.Seconds())
	return s.report, nil
}

// Bootstrap only ensures indexes, roles and the privileged operator.
func (s *Seeder) Bootstrap(ctx context.Context) (*Report, error) {
	started := s.now()
	s.report = newReport(s.config.Seed, s.config.TableMode, started)
	if err := s.bootstrap(ctx); err != nil {
		return s.report, err
	}
	s.report.Duration = s.now().Sub(started)
	return s.report, nil
}

func (s *Seeder) bootstrap(ctx context.Context) error {
	s.EnsureIndexes(ctx)

	roles, err := s.SeedRoles(ctx)
	if err != nil {
		return err
	}
	s.roles = roles

	created, err := s.EnsureSuperAdmin(ctx, roles[types.RoleSuperAdmin])
	if err != nil {
		return err
	}
	s.report.OperatorCreated = created
	return nil
}

func (s *Seeder) insertOne(ctx context.Context, collection string, doc interface{}) error {
	if err := s.store.InsertOne(ctx, collection, doc); err != nil {
		return err
	}
	s.created(collection, 1)
	return nil
}

func (s *Seeder) insertMany(ctx context.Context, collection string, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	if err := s.store.InsertMany(ctx, collection, docs); err != nil {
		return err
	}
	s.created(collection, len(docs))
	return nil
}

func (s *Seeder) created(collection string, n int) {
	s.report.Created[collection] += n
	s.metrics.DocumentsCreated.WithLabelValues(collection).Add(float64(n))
}

func (s *Seeder) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

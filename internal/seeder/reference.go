package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rana718/posseed/internal/store"
	"github.com/Rana718/posseed/internal/types"
	"github.com/fatih/color"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type RoleDefinition struct {
	Name        string
	Description string
	Scope       string
}

var DefaultRoles = []RoleDefinition{
	{Name: types.RoleSuperAdmin, Description: "Full access", Scope: types.ScopeGlobal},
	{Name: types.RoleAdmin, Description: "Restaurant admin", Scope: types.ScopeRestaurant},
	{Name: types.RoleCashier, Description: "Cashier - create orders & payments", Scope: types.ScopeRestaurant},
}

// EnsureIndexes creates the uniqueness constraints. A failure here usually
// means an index of the same name but a different shape already exists, so it
// is reported and the run goes on.
func (s *Seeder) EnsureIndexes(ctx context.Context) {
	color.Cyan("🔑 Ensuring indexes...")
	for _, spec := range types.RequiredIndexes {
		if err := s.store.EnsureIndex(ctx, spec); err != nil {
			msg := fmt.Sprintf("%s: %v", spec.Collection, err)
			s.report.IndexWarnings = append(s.report.IndexWarnings, msg)
			s.metrics.IndexWarnings.Inc()
			s.logger.Warn("index creation failed", zap.String("collection", spec.Collection), zap.Error(err))
			color.Yellow("⚠️  Index creation warning: %s", msg)
		}
	}
}

// SeedRoles upserts every default role by name and returns them keyed by name.
func (s *Seeder) SeedRoles(ctx context.Context) (map[string]types.Role, error) {
	color.Cyan("👥 Seeding roles...")
	now := s.now()

	roles := make(map[string]types.Role, len(DefaultRoles))
	for _, def := range DefaultRoles {
		filter := bson.M{"name": def.Name}
		set := bson.M{
			"name":        def.Name,
			"description": def.Description,
			"permissions": []string{},
			"scope":       def.Scope,
			"updatedAt":   now,
		}
		if err := s.store.Upsert(ctx, types.CollRoles, filter, set, bson.M{"createdAt": now}); err != nil {
			return nil, fmt.Errorf("failed to upsert role %s: %w", def.Name, err)
		}

		var role types.Role
		if err := s.store.FindOne(ctx, types.CollRoles, filter, &role); err != nil {
			return nil, fmt.Errorf("failed to read back role %s: %w", def.Name, err)
		}
		roles[def.Name] = role
		s.report.Roles = append(s.report.Roles, def.Name)
	}

	color.Green("✅ Roles ready: %d", len(roles))
	return roles, nil
}

// EnsureSuperAdmin creates the privileged operator if its email is unknown.
// An existing account is left alone, password included.
func (s *Seeder) EnsureSuperAdmin(ctx context.Context, role types.Role) (bool, error) {
	op := s.config.SuperAdmin

	var existing types.User
	err := s.store.FindOne(ctx, types.CollUsers, bson.M{"email": op.Email}, &existing)
	if err == nil {
		color.White("ℹ️  SuperAdmin exists: %s", op.Email)
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("failed to look up SuperAdmin: %w", err)
	}

	color.Cyan("👤 Creating SuperAdmin user: %s", op.Email)
	hash, err := s.hashPassword(op.Password)
	if err != nil {
		return false, err
	}

	now := s.now()
	user := types.User{
		ID:           primitive.NewObjectID(),
		Email:        op.Email,
		Name:         op.Name,
		PasswordHash: hash,
		Roles:        []primitive.ObjectID{role.ID},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.insertOne(ctx, types.CollUsers, user); err != nil {
		return false, fmt.Errorf("failed to create SuperAdmin: %w", err)
	}
	return true, nil
}

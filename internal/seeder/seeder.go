package seeder

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/almada-laundry/almada/internal/database"
	"github.com/almada-laundry/almada/internal/entity"
)

// Module exposes the seeder to the CLI.
var Module = fx.Options(
	fx.Provide(New),
)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// All runs every seeder in dependency order.
func (s *Seeder) All(ctx context.Context) error {
	if err := s.Laundries(ctx); err != nil {
		return err
	}
	if err := s.Services(ctx); err != nil {
		return err
	}
	if err := s.Users(ctx); err != nil {
		return err
	}
	return s.Orders(ctx)
}

// Laundries seeds the demo laundry if it is missing.
func (s *Seeder) Laundries(ctx context.Context) error {
	now := time.Now().UTC()
	laundry := entity.Laundry{
		ID:        1,
		Name:      "Almada Laundry",
		Address:   "Jl. Almada No. 1",
		Phone:     "+628123456789",
		CreatedAt: now,
	}
	_, err := s.db.NewInsert().Model(&laundry).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	return err
}

// Services seeds the standard service catalogue.
func (s *Seeder) Services(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []entity.ServiceType{
		{ID: 1, Name: "Wash & Fold", PricePerKg: "7000", CreatedAt: now},
		{ID: 2, Name: "Wash & Iron", PricePerKg: "10000", CreatedAt: now},
		{ID: 3, Name: "Dry Clean", PricePerKg: "15000", CreatedAt: now},
	}
	for i := range samples {
		_, err := s.db.NewInsert().Model(&samples[i]).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

// Users seeds an owner account with a default password.
func (s *Seeder) Users(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("almada-dev"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := entity.User{
		Name:         "Owner",
		Email:        "owner@almada.local",
		PasswordHash: string(hash),
		Role:         entity.RoleOwner,
		LaundryID:    1,
		CreatedAt:    time.Now().UTC(),
	}
	_, err = s.db.NewInsert().Model(&user).
		On("CONFLICT (email) DO NOTHING").
		Exec(ctx)
	return err
}

// Orders seeds example orders if they are missing.
func (s *Seeder) Orders(ctx context.Context) error {
	now := time.Now().UTC()
	customer := entity.Customer{ID: 1, Name: "Budi Santoso", Phone: "+628111111111", CreatedAt: now}
	if _, err := s.db.NewInsert().Model(&customer).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx); err != nil {
		return err
	}

	samples := []entity.Order{
		{
			Barcode: "ALM-SEED0001", CustomerID: 1, LaundryID: 1, ServiceID: 1,
			Weight: "3.5", TotalPrice: "24500", Status: entity.StatusPending,
			OrderDate: now, CreatedAt: now, UpdatedAt: now,
		},
		{
			Barcode: "ALM-SEED0002", CustomerID: 1, LaundryID: 1, ServiceID: 2,
			Weight: "2", TotalPrice: "20000", Status: entity.StatusReadyPicked,
			OrderDate: now, CreatedAt: now, UpdatedAt: now,
		},
		{
			Barcode: "ALM-SEED0003", CustomerID: 1, LaundryID: 1, ServiceID: 1,
			Weight: "5", TotalPrice: "35000", Status: entity.StatusCompleted,
			OrderDate: now.AddDate(0, 0, -7), CreatedAt: now, UpdatedAt: now,
		},
	}
	for i := range samples {
		_, err := s.db.NewInsert().Model(&samples[i]).
			On("CONFLICT (barcode) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded orders", zap.Int("count", len(samples)))
	}
	return nil
}

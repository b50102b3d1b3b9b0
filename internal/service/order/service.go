package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/almada-laundry/almada/internal/cache"
	"github.com/almada-laundry/almada/internal/config"
	"github.com/almada-laundry/almada/internal/entity"
	"github.com/almada-laundry/almada/internal/messaging"
	repo "github.com/almada-laundry/almada/internal/repository/order"
	"github.com/almada-laundry/almada/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/almada-laundry/almada/service/order")

// CreateInput carries everything needed to register a new order.
type CreateInput struct {
	CustomerName  string
	CustomerPhone string
	Username      string
	LaundryID     int64
	ServiceID     int64
	Weight        string
	TotalPrice    string
	Note          string
	OrderDate     time.Time
}

// Service encapsulates business logic around orders.
type Service struct {
	repo      *repo.Repository
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:      p.Repository,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}
}

// Get retrieves an order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if order, err := s.getFromCache(ctx, id); err == nil {
		return order, nil
	} else if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		if s.logger != nil {
			s.logger.Warn("orders cache read failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		if s.logger != nil {
			s.logger.Warn("orders cache write failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	return order, nil
}

// GetByBarcode resolves a scanned token to its order. Scans are the hot
// lookup path at the counter, so misses stay cheap: a missing token maps to a
// clean not-found instead of an internal error.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (*entity.Order, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, errorbank.BadRequest("barcode is required")
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.GetByBarcode", trace.WithAttributes(attribute.String("order.barcode", barcode)))
	defer span.End()

	order, err := s.repo.GetByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("no order for this barcode")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	return order, nil
}

// Create registers a new order: the customer is upserted, a barcode token is
// minted, and the order starts in pending.
func (s *Service) Create(ctx context.Context, input CreateInput) (*entity.Order, error) {
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, errorbank.BadRequest("customer name is required")
	}
	if input.ServiceID == 0 {
		return nil, errorbank.BadRequest("service is required")
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create")
	defer span.End()

	customer := &entity.Customer{
		Name:     strings.TrimSpace(input.CustomerName),
		Phone:    strings.TrimSpace(input.CustomerPhone),
		Username: strings.TrimSpace(input.Username),
	}
	if err := s.repo.EnsureCustomer(ctx, customer); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "customer upsert failed")
		return nil, errorbank.Internal("failed to register customer", errorbank.WithCause(err))
	}

	now := time.Now().UTC()
	order := &entity.Order{
		Barcode:    mintBarcode(),
		CustomerID: customer.ID,
		LaundryID:  input.LaundryID,
		ServiceID:  input.ServiceID,
		Weight:     input.Weight,
		TotalPrice: input.TotalPrice,
		Note:       input.Note,
		Status:     entity.StatusPending,
		OrderDate:  input.OrderDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	created, err := s.repo.GetByID(ctx, order.ID)
	if err != nil {
		// The row exists; return what we have rather than failing the create.
		created = order
		created.Customer = customer
	}

	if err := s.storeInCache(ctx, created); err != nil {
		if s.logger != nil {
			s.logger.Warn("orders cache write failed", zap.Int64("id", created.ID), zap.Error(err))
		}
	}

	s.publishStatusChanged(ctx, created, "", created.Status)
	return created, nil
}

// List returns a page of orders for the requested scope and filters.
func (s *Service) List(ctx context.Context, filter repo.ListFilter) ([]entity.Order, int, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	if filter.Status != "" && !filter.Status.Known() {
		return nil, 0, errorbank.BadRequest("unknown status filter", errorbank.WithDetail("status", string(filter.Status)))
	}

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, 0, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, total, nil
}

// UpdateStatus assigns a status. Any defined status may follow any other:
// staff use this as a manual override, so an unusual jump only logs a
// warning. Unknown status strings are rejected before touching storage.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status entity.Status) (*entity.Order, error) {
	if !status.Known() {
		return nil, errorbank.BadRequest("unknown status", errorbank.WithDetail("status", string(status)))
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status", string(status)),
	))
	defer span.End()

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if current.Status != status && !current.Status.UsualTransition(status) && s.logger != nil {
		s.logger.Warn("unusual status transition",
			zap.Int64("id", id),
			zap.String("from", string(current.Status)),
			zap.String("to", string(status)),
		)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update status", errorbank.WithCause(err))
	}

	s.invalidateCache(ctx, id)
	s.publishStatusChanged(ctx, updated, current.Status, status)
	return updated, nil
}

// Delete removes an order and drops its cache entry.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to delete order", errorbank.WithCause(err))
	}
	s.invalidateCache(ctx, id)
	return nil
}

// Stats aggregates the dashboard counters.
func (s *Service) Stats(ctx context.Context) (*repo.Stats, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Stats")
	defer span.End()

	stats, err := s.repo.AggregateStats(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to aggregate stats", errorbank.WithCause(err))
	}
	return stats, nil
}

// mintBarcode produces the opaque token encoded into the printed QR code.
func mintBarcode() string {
	return "ALM-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *Service) publishStatusChanged(ctx context.Context, order *entity.Order, from, to entity.Status) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := StatusChangedEvent{
		ID:        order.ID,
		Barcode:   order.Barcode,
		From:      string(from),
		To:        string(to),
		ChangedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal status changed", zap.Error(err))
		}
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("order-%d", order.ID)), payload); err != nil {
		if s.logger != nil {
			s.logger.Error("publish status changed", zap.Error(err))
		}
	}
}

func (s *Service) cacheKey(id int64) string {
	return fmt.Sprintf("orders:%d", id)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(order.ID), bytes, s.cacheTTL)
}

func (s *Service) invalidateCache(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil && s.logger != nil {
		s.logger.Warn("orders cache delete failed", zap.Int64("id", id), zap.Error(err))
	}
}

// StatusChangedEvent is emitted whenever an order enters a status, including
// the initial pending on create (From empty).
type StatusChangedEvent struct {
	ID        int64     `json:"id"`
	Barcode   string    `json:"barcode"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

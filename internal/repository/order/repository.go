package order

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/almada-laundry/almada/internal/database"
	"github.com/almada-laundry/almada/internal/entity"
)

var repoTracer = otel.Tracer("github.com/almada-laundry/almada/repository/order")

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// ListFilter narrows the order list view.
type ListFilter struct {
	Scope  entity.Scope
	Status entity.Status
	Search string
	Page   int
	Limit  int
}

// Stats aggregates dashboard counters straight from storage.
type Stats struct {
	Total        int
	ByStatus     map[entity.Status]int
	TodayOrders  int
	TodayRevenue int64
}

// Repository encapsulates read/write access for orders.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create persists a new order using the write connection.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.String("order.barcode", order.Barcode)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(order).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches an order with its relations by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).
		Relation("Customer").
		Relation("Laundry").
		Relation("Service").
		Where("o.id = ?", id).
		Scan(ctx)
	return r.checked(span, order, err)
}

// GetByBarcode resolves the scanned token to an order.
func (r *Repository) GetByBarcode(ctx context.Context, barcode string) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByBarcode", trace.WithAttributes(attribute.String("order.barcode", barcode)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).
		Relation("Customer").
		Relation("Laundry").
		Relation("Service").
		Where("o.barcode = ?", barcode).
		Scan(ctx)
	return r.checked(span, order, err)
}

func (r *Repository) checked(span trace.Span, order *entity.Order, err error) (*entity.Order, error) {
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// List returns one page of orders plus the total matching count. The scope
// filter partitions on the terminal-by-convention statuses.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]entity.Order, int, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List", trace.WithAttributes(
		attribute.String("filter.scope", string(filter.Scope)),
		attribute.String("filter.status", string(filter.Status)),
	))
	defer span.End()

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	var orders []entity.Order
	q := r.reader.NewSelect().Model(&orders).
		Relation("Customer").
		Relation("Laundry").
		Relation("Service")

	switch filter.Scope {
	case entity.ScopeHistory:
		q = q.Where("o.status IN (?)", bun.In([]entity.Status{entity.StatusCompleted, entity.StatusCancelled}))
	case entity.ScopeActive:
		q = q.Where("o.status NOT IN (?)", bun.In([]entity.Status{entity.StatusCompleted, entity.StatusCancelled}))
	}
	if filter.Status != "" {
		q = q.Where("o.status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Join("LEFT JOIN customers AS c ON c.id = o.customer_id").
			Where("(o.barcode LIKE ? OR c.name LIKE ?)", pattern, pattern)
	}

	total, err := q.Order("o.created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		ScanAndCount(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus assigns a new status. No transition table is enforced here:
// the server contract allows staff to set any status from any other.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status entity.Status) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status", string(status)),
	))
	defer span.End()

	res, err := r.writer.NewUpdate().Model((*entity.Order)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes an order permanently.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().Model((*entity.Order)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AggregateStats computes dashboard counters. Revenue is summed in Go because
// total_price is stored as transport text and CAST syntax differs across the
// supported dialects.
func (r *Repository) AggregateStats(ctx context.Context) (*Stats, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.AggregateStats")
	defer span.End()

	stats := &Stats{ByStatus: make(map[entity.Status]int)}

	var rows []struct {
		Status entity.Status `bun:"status"`
		Count  int           `bun:"count"`
	}
	err := r.reader.NewSelect().Model((*entity.Order)(nil)).
		ColumnExpr("status").
		ColumnExpr("COUNT(*) AS count").
		GroupExpr("status").
		Scan(ctx, &rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "status counts failed")
		return nil, err
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
		stats.Total += row.Count
	}

	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	var today []struct {
		TotalPrice string `bun:"total_price"`
	}
	err = r.reader.NewSelect().Model((*entity.Order)(nil)).
		Column("total_price").
		Where("created_at >= ?", dayStart).
		Scan(ctx, &today)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "today stats failed")
		return nil, err
	}
	stats.TodayOrders = len(today)
	for _, row := range today {
		if amount, err := strconv.ParseInt(row.TotalPrice, 10, 64); err == nil {
			stats.TodayRevenue += amount
		}
	}

	return stats, nil
}

// EnsureCustomer finds a customer by name+phone or inserts one.
func (r *Repository) EnsureCustomer(ctx context.Context, customer *entity.Customer) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.EnsureCustomer")
	defer span.End()

	existing := new(entity.Customer)
	err := r.reader.NewSelect().Model(existing).
		Where("name = ?", customer.Name).
		Where("phone = ?", customer.Phone).
		Limit(1).
		Scan(ctx)
	if err == nil {
		*customer = *existing
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		return err
	}
	_, err = r.writer.NewInsert().Model(customer).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert customer failed")
	}
	return err
}

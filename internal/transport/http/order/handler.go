package order

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/almada-laundry/almada/internal/dto"
	"github.com/almada-laundry/almada/internal/entity"
	"github.com/almada-laundry/almada/internal/presentation/http/response"
	repo "github.com/almada-laundry/almada/internal/repository/order"
	service "github.com/almada-laundry/almada/internal/service/order"
	printservice "github.com/almada-laundry/almada/internal/service/print"
	"github.com/almada-laundry/almada/internal/transport/http/middleware"
	"github.com/almada-laundry/almada/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/almada-laundry/almada/transport/http/order")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc   *service.Service
	print *printservice.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service, print *printservice.Service) *Handler {
	return &Handler{svc: svc, print: print}
}

// Register routes with provided Echo group.
func Register(e *echo.Echo, h *Handler, auth *middleware.Auth) {
	g := e.Group("/orders", auth.Require)
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/stats", h.stats)
	g.GET("/barcode/:code", h.getByBarcode)
	g.GET("/:id", h.getByID)
	g.PATCH("/:id/status", h.updateStatus)
	g.DELETE("/:id", h.remove)
	g.POST("/:id/label", h.printLabel)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	filter := repo.ListFilter{
		Scope:  entity.Scope(c.QueryParam("scope")),
		Status: entity.Status(c.QueryParam("status")),
		Search: c.QueryParam("search"),
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list", trace.WithAttributes(
		attribute.String("scope", string(filter.Scope)),
	))
	defer span.End()

	orders, total, err := h.svc.List(ctx, filter)
	if err != nil {
		return b.WithError(err).Build()
	}

	payload := dto.OrderListResponse{
		Orders: make([]dto.OrderResponse, 0, len(orders)),
		Page:   filter.Page,
		Limit:  filter.Limit,
		Total:  total,
	}
	for i := range orders {
		payload.Orders = append(payload.Orders, toDTO(&orders[i]))
	}
	return b.WithData(payload).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		CustomerName  string `json:"customer_name"`
		CustomerPhone string `json:"customer_phone"`
		Username      string `json:"username"`
		ServiceID     int64  `json:"service_id"`
		Weight        string `json:"weight"`
		TotalPrice    string `json:"total_price"`
		Note          string `json:"note"`
		OrderDate     string `json:"order_date"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	input := service.CreateInput{
		CustomerName:  payload.CustomerName,
		CustomerPhone: payload.CustomerPhone,
		Username:      payload.Username,
		LaundryID:     middleware.SessionFrom(c).LaundryID,
		ServiceID:     payload.ServiceID,
		Weight:        payload.Weight,
		TotalPrice:    payload.TotalPrice,
		Note:          payload.Note,
	}
	if payload.OrderDate != "" {
		when, err := time.Parse(time.RFC3339, payload.OrderDate)
		if err != nil {
			return b.WithError(errorbank.BadRequest("invalid order_date", errorbank.WithCause(err))).Build()
		}
		input.OrderDate = when.UTC()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create")
	defer span.End()

	order, err := h.svc.Create(ctx, input)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toDTO(order)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(order)).Build()
}

func (h *Handler) getByBarcode(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByBarcode")
	defer span.End()

	order, err := h.svc.GetByBarcode(ctx, c.Param("code"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(order)).Build()
}

func (h *Handler) updateStatus(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if payload.Status == "" {
		return b.WithError(errorbank.BadRequest("status is required")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.updateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status", payload.Status),
	))
	defer span.End()

	order, err := h.svc.UpdateStatus(ctx, id, entity.Status(payload.Status))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(order)).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]int64{"deleted": id}).Build()
}

func (h *Handler) stats(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.stats")
	defer span.End()

	stats, err := h.svc.Stats(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	payload := dto.OrderStatsResponse{
		TotalOrders:    stats.Total,
		OrdersByStatus: make(map[string]int, len(stats.ByStatus)),
		TodayOrders:    stats.TodayOrders,
		TodayRevenue:   stats.TodayRevenue,
	}
	for status, count := range stats.ByStatus {
		payload.OrdersByStatus[string(status)] = count
		if status.Classify() == entity.ScopeHistory {
			payload.HistoryOrders += count
		} else {
			payload.ActiveOrders += count
		}
	}
	return b.WithData(payload).Build()
}

func (h *Handler) printLabel(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.printLabel", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	if err := h.print.PrintLabel(ctx, order); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]string{"printed": order.Barcode}).Build()
}

func toDTO(order *entity.Order) dto.OrderResponse {
	present := order.Status.Present()
	resp := dto.OrderResponse{
		ID:         order.ID,
		Barcode:    order.Barcode,
		Service:    "",
		Weight:     order.Weight,
		TotalPrice: order.TotalPrice,
		Note:       order.Note,
		Status:     string(order.Status),
		Scope:      string(order.Status.Classify()),
		Display: dto.StatusDisplay{
			Icon:  present.Icon,
			Color: present.Color,
			Label: present.Label,
		},
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	if order.Customer != nil {
		resp.Customer = dto.CustomerInfo{
			Name:     order.Customer.Name,
			Phone:    order.Customer.Phone,
			Username: order.Customer.Username,
		}
	}
	if order.Laundry != nil {
		resp.Laundry = dto.LaundryInfo{
			Name:  order.Laundry.Name,
			Phone: order.Laundry.Phone,
		}
	}
	if order.Service != nil {
		resp.Service = order.Service.Name
	}
	if !order.OrderDate.IsZero() {
		when := order.OrderDate
		resp.OrderDate = &when
	}
	return resp
}

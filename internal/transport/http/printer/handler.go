package printer

import (
	"errors"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/almada-laundry/almada/internal/presentation/http/response"
	printerconn "github.com/almada-laundry/almada/internal/print/printer"
	service "github.com/almada-laundry/almada/internal/service/print"
	"github.com/almada-laundry/almada/internal/transport/http/middleware"
	"github.com/almada-laundry/almada/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/almada-laundry/almada/transport/http/printer")

// Handler exposes printer connection endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a printer Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, auth *middleware.Auth) {
	g := e.Group("/printer", auth.Require)
	g.GET("/status", h.status)
	g.POST("/connect", h.connect)
	g.POST("/select", h.selectDevice)
	g.POST("/disconnect", h.disconnect)
}

type deviceDTO struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type statusDTO struct {
	State  string     `json:"state"`
	Device *deviceDTO `json:"device,omitempty"`
}

func (h *Handler) status(c echo.Context) error {
	b := response.New(c)

	m := h.svc.Manager()
	payload := statusDTO{State: m.State().String()}
	if device, ok := m.ConnectedDevice(); ok {
		payload.Device = &deviceDTO{Name: device.Name, Address: device.Address}
	}
	return b.WithData(payload).Build()
}

func (h *Handler) connect(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "printer.connect")
	defer span.End()

	candidates, err := h.svc.Manager().Connect(ctx)
	if err != nil {
		return b.WithError(mapConnectError(err)).Build()
	}

	payload := struct {
		State      string      `json:"state"`
		Candidates []deviceDTO `json:"candidates,omitempty"`
	}{State: h.svc.Manager().State().String()}
	for _, d := range candidates {
		payload.Candidates = append(payload.Candidates, deviceDTO{Name: d.Name, Address: d.Address})
	}
	return b.WithData(payload).Build()
}

func (h *Handler) selectDevice(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		Address string `json:"address"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if payload.Address == "" {
		return b.WithError(errorbank.BadRequest("address is required")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "printer.select")
	defer span.End()

	if err := h.svc.Manager().Select(ctx, payload.Address); err != nil {
		return b.WithError(mapConnectError(err)).Build()
	}
	return b.WithData(statusDTO{State: h.svc.Manager().State().String()}).Build()
}

func (h *Handler) disconnect(c echo.Context) error {
	b := response.New(c)

	h.svc.Manager().Disconnect()
	return b.WithData(statusDTO{State: h.svc.Manager().State().String()}).Build()
}

func mapConnectError(err error) error {
	switch {
	case errors.Is(err, printerconn.ErrConnectInFlight):
		return errorbank.Conflict("connection attempt already running")
	case errors.Is(err, printerconn.ErrPermissionDenied):
		return errorbank.Forbidden("printer access denied")
	case errors.Is(err, printerconn.ErrNoBondedDevices):
		return errorbank.NotFound("no bonded printers found")
	case errors.Is(err, printerconn.ErrNoSelection):
		return errorbank.BadRequest("no device selection pending")
	case errors.Is(err, printerconn.ErrNotConnected):
		return errorbank.Unprocessable("printer not connected")
	default:
		return errorbank.Internal("printer connection failed", errorbank.WithCause(err))
	}
}

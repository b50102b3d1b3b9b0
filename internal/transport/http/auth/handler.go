package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/almada-laundry/almada/internal/dto"
	"github.com/almada-laundry/almada/internal/entity"
	"github.com/almada-laundry/almada/internal/presentation/http/response"
	sessionrepo "github.com/almada-laundry/almada/internal/repository/session"
	service "github.com/almada-laundry/almada/internal/service/auth"
	"github.com/almada-laundry/almada/internal/transport/http/middleware"
	"github.com/almada-laundry/almada/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/almada-laundry/almada/transport/http/auth")

// Handler exposes account and session endpoints over HTTP.
type Handler struct {
	svc      *service.Service
	sessions *sessionrepo.Repository
}

// NewHandler constructs an auth Handler.
func NewHandler(svc *service.Service, sessions *sessionrepo.Repository) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler, auth *middleware.Auth) {
	g := e.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/logout", h.logout, auth.Require)
	g.GET("/profile", h.profile, auth.Require)
}

func (h *Handler) register(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Role      string `json:"role"`
		LaundryID int64  `json:"laundry_id"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.register")
	defer span.End()

	sess, err := h.svc.Register(ctx, service.RegisterInput{
		Name:      payload.Name,
		Email:     payload.Email,
		Password:  payload.Password,
		Role:      entity.Role(payload.Role),
		LaundryID: payload.LaundryID,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toAuthDTO(sess)).Build()
}

func (h *Handler) login(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.login")
	defer span.End()

	sess, err := h.svc.Login(ctx, payload.Email, payload.Password)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toAuthDTO(sess)).Build()
}

func (h *Handler) logout(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.logout")
	defer span.End()

	if err := h.svc.Logout(ctx, middleware.TokenFrom(c)); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]string{"status": "logged out"}).Build()
}

func (h *Handler) profile(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.profile")
	defer span.End()

	sess := middleware.SessionFrom(c)
	address, err := h.sessions.PrinterAddress(ctx)
	if err != nil {
		return b.WithError(errorbank.Internal("failed to load printer address", errorbank.WithCause(err))).Build()
	}
	return b.WithData(dto.ProfileResponse{
		Name:           sess.Name,
		Role:           string(sess.Role),
		LaundryID:      sess.LaundryID,
		LaundryName:    sess.LaundryName,
		PrinterAddress: address,
	}).Build()
}

func toAuthDTO(sess *entity.Session) dto.AuthResponse {
	return dto.AuthResponse{
		Token:       sess.Token,
		Name:        sess.Name,
		Role:        string(sess.Role),
		LaundryID:   sess.LaundryID,
		LaundryName: sess.LaundryName,
	}
}

package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/almada-laundry/almada/internal/entity"
	"github.com/almada-laundry/almada/internal/presentation/http/response"
	authservice "github.com/almada-laundry/almada/internal/service/auth"
	"github.com/almada-laundry/almada/pkg/errorbank"
)

const sessionContextKey = "almada.session"

// Auth resolves bearer tokens to sessions for protected routes.
type Auth struct {
	svc *authservice.Service
}

// NewAuth constructs the middleware.
func NewAuth(svc *authservice.Service) *Auth {
	return &Auth{svc: svc}
}

// Require rejects requests without a valid bearer session and stores the
// session on the request context for handlers.
func (a *Auth) Require(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return response.New(c).WithError(errorbank.Unauthorized("missing bearer token")).Build()
		}
		sess, err := a.svc.Authenticate(c.Request().Context(), token)
		if err != nil {
			return response.New(c).WithError(err).Build()
		}
		c.Set(sessionContextKey, sess)
		return next(c)
	}
}

// SessionFrom returns the authenticated session, or an empty session when the
// route was not protected (handlers behind Require always get a real one).
func SessionFrom(c echo.Context) *entity.Session {
	if sess, ok := c.Get(sessionContextKey).(*entity.Session); ok {
		return sess
	}
	return &entity.Session{}
}

// TokenFrom extracts the raw bearer token from the request.
func TokenFrom(c echo.Context) string {
	return bearerToken(c)
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

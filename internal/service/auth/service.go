package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/almada-laundry/almada/internal/entity"
	sessionrepo "github.com/almada-laundry/almada/internal/repository/session"
	userrepo "github.com/almada-laundry/almada/internal/repository/user"
	"github.com/almada-laundry/almada/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/almada-laundry/almada/service/auth")

// Service implements staff sign-in and session handling.
type Service struct {
	users    *userrepo.Repository
	sessions *sessionrepo.Repository
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Users    *userrepo.Repository
	Sessions *sessionrepo.Repository
	Logger   *zap.Logger
}

// NewService wires a new auth Service.
func NewService(p Params) *Service {
	return &Service{
		users:    p.Users,
		sessions: p.Sessions,
		logger:   p.Logger,
	}
}

// RegisterInput carries a new staff account request.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Role      entity.Role
	LaundryID int64
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*entity.Session, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Name == "" || input.Email == "" {
		return nil, errorbank.BadRequest("name and email are required")
	}
	if len(input.Password) < 8 {
		return nil, errorbank.BadRequest("password must be at least 8 characters")
	}
	if input.Role != entity.RoleOwner && input.Role != entity.RoleStaff {
		return nil, errorbank.BadRequest("role must be owner or staff")
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, errorbank.Conflict("email already registered")
	} else if !errors.Is(err, userrepo.ErrNotFound) {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to check account", errorbank.WithCause(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errorbank.Internal("failed to hash password", errorbank.WithCause(err))
	}

	user := &entity.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         input.Role,
		LaundryID:    input.LaundryID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create account", errorbank.WithCause(err))
	}

	// Reload for the laundry relation; login path needs it anyway.
	user, err = s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, errorbank.Internal("failed to load account", errorbank.WithCause(err))
	}
	return s.issueSession(ctx, user)
}

// Login verifies credentials and issues a fresh session.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.Session, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, userrepo.ErrNotFound) {
		return nil, errorbank.Unauthorized("invalid email or password")
	}
	if err != nil {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to load account", errorbank.WithCause(err))
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errorbank.Unauthorized("invalid email or password")
	}
	return s.issueSession(ctx, user)
}

// Logout clears the session; an already-absent token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if err := s.sessions.Clear(ctx, token); err != nil {
		span.RecordError(err)
		return errorbank.Internal("failed to clear session", errorbank.WithCause(err))
	}
	return nil
}

// Authenticate resolves a bearer token to its session.
func (s *Service) Authenticate(ctx context.Context, token string) (*entity.Session, error) {
	sess, err := s.sessions.Get(ctx, token)
	if errors.Is(err, sessionrepo.ErrNotFound) {
		return nil, errorbank.Unauthorized("invalid or expired session")
	}
	if err != nil {
		return nil, errorbank.Internal("failed to load session", errorbank.WithCause(err))
	}
	return sess, nil
}

func (s *Service) issueSession(ctx context.Context, user *entity.User) (*entity.Session, error) {
	laundryName := ""
	if user.Laundry != nil {
		laundryName = user.Laundry.Name
	}
	sess := &entity.Session{
		Token:       uuid.NewString(),
		UserID:      user.ID,
		Name:        user.Name,
		Role:        user.Role,
		LaundryID:   user.LaundryID,
		LaundryName: laundryName,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, errorbank.Internal("failed to save session", errorbank.WithCause(err))
	}
	if s.logger != nil {
		s.logger.Info("session issued", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	}
	return sess, nil
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/almada-laundry/almada/internal/cache"
	"github.com/almada-laundry/almada/internal/config"
	"github.com/almada-laundry/almada/internal/entity"
)

var repoTracer = otel.Tracer("github.com/almada-laundry/almada/repository/session")

// ErrNotFound is returned when no session exists for a token.
var ErrNotFound = errors.New("session not found")

// Repository persists sessions in the key-value store. It replaces the
// original app's process-global session singleton with an injected
// dependency: every component that needs the principal receives this.
type Repository struct {
	store cache.Store
	ttl   time.Duration
}

// NewRepository wires a session repository over the configured cache backend.
func NewRepository(store cache.Store, cfg config.Config) *Repository {
	return &Repository{
		store: store,
		ttl:   cfg.Auth.SessionTTL,
	}
}

func sessionKey(token string) string {
	return "sessions:" + token
}

// Get loads the session for a bearer token.
func (r *Repository) Get(ctx context.Context, token string) (*entity.Session, error) {
	ctx, span := repoTracer.Start(ctx, "SessionRepository.Get")
	defer span.End()

	if token == "" {
		return nil, ErrNotFound
	}
	raw, err := r.store.Get(ctx, sessionKey(token))
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	var sess entity.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &sess, nil
}

// Save stores or refreshes a session under its token.
func (r *Repository) Save(ctx context.Context, sess *entity.Session) error {
	ctx, span := repoTracer.Start(ctx, "SessionRepository.Save")
	defer span.End()

	if sess == nil || sess.Token == "" {
		return errors.New("session token is required")
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, sessionKey(sess.Token), raw, r.ttl)
}

// Clear removes the session for a token; clearing an absent token is a no-op.
func (r *Repository) Clear(ctx context.Context, token string) error {
	ctx, span := repoTracer.Start(ctx, "SessionRepository.Clear")
	defer span.End()

	return r.store.Delete(ctx, sessionKey(token))
}

// printerAddressKey holds the station-level remembered printer. The printer
// is physical and shared by whoever is signed in on the device, so it lives
// under one well-known key rather than per session.
const printerAddressKey = "printer:remembered_address"

// PrinterAddress returns the remembered printer address, empty when none.
func (r *Repository) PrinterAddress(ctx context.Context) (string, error) {
	raw, err := r.store.Get(ctx, printerAddressKey)
	if errors.Is(err, cache.ErrCacheMiss) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// SavePrinterAddress persists the remembered printer. A year-long TTL keeps
// the key effectively permanent while still reclaimable from redis.
func (r *Repository) SavePrinterAddress(ctx context.Context, address string) error {
	if address == "" {
		return r.store.Delete(ctx, printerAddressKey)
	}
	return r.store.Set(ctx, printerAddressKey, []byte(address), 365*24*time.Hour)
}

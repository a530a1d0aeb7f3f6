package handlers

import (
	"context"
	"time"

	"github.com/atharvsharma432199/phone-api/internal/domain"
	"github.com/atharvsharma432199/phone-api/internal/services"
)

// Lookuper resolves phone queries on behalf of an API key.
type Lookuper interface {
	Lookup(ctx context.Context, apiKey, query string) (*services.LookupResult, error)
	RecordRateLimited(ctx context.Context, apiKey, query string)
}

// KeyManager is the administrative key surface.
type KeyManager interface {
	Create(ctx context.Context, in services.CreateKeyInput) (*domain.APIKey, error)
	Get(ctx context.Context, key string) (*domain.APIKey, error)
	List(ctx context.Context) ([]domain.APIKey, error)
	Delete(ctx context.Context, key string) (bool, error)
	SetActive(ctx context.Context, key string, active bool) error
	RecentUsage(ctx context.Context, key string, limit int) ([]domain.UsageLog, error)
}

// StatusReporter produces the service status snapshot.
type StatusReporter interface {
	Snapshot(ctx context.Context) (*services.Status, error)
}

// Reinitializer rebuilds the record store.
type Reinitializer interface {
	Reinitialize(ctx context.Context) error
}

// CredentialValidator checks admin credentials.
type CredentialValidator interface {
	Validate(ctx context.Context, username, password string) (bool, error)
}

// Handlers groups the HTTP endpoints. Nil dependencies are only allowed for
// routes that are not mounted.
type Handlers struct {
	lookup Lookuper
	keys   KeyManager
	status StatusReporter
	init   Reinitializer
	admins CredentialValidator

	// initTimeout extends the write deadline of the initdb request.
	initTimeout time.Duration
}

// Deps are the services behind the handlers.
type Deps struct {
	Lookup      Lookuper
	Keys        KeyManager
	Status      StatusReporter
	Init        Reinitializer
	Admins      CredentialValidator
	InitTimeout time.Duration
}

// New binds handlers to their services.
func New(d Deps) *Handlers {
	return &Handlers{
		lookup:      d.Lookup,
		keys:        d.Keys,
		status:      d.Status,
		init:        d.Init,
		admins:      d.Admins,
		initTimeout: d.InitTimeout,
	}
}

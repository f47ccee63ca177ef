package backend

import (
	"context"

	"kitty/internal/amqp"
	"kitty/internal/services"
	"kitty/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store, the optional event client and the
// cleanup function releasing both.
type BackendResult struct {
	Store store.Store
	// Events is nil when AMQP is not configured or unreachable.
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Publisher returns Events as a services.Publisher, or a nil interface when
// events are disabled.
func (r *BackendResult) Publisher() services.Publisher {
	if r.Events == nil {
		return nil
	}
	return r.Events
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Ledger events; an empty URL disables them
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	// RequireEvents turns an unreachable broker into an error instead of a
	// warning. The worker cannot run without it.
	RequireEvents bool

	// Memory backend specific
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

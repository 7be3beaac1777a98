// Package audit implements the entity audit trail. An Interceptor observes
// committed create, update and delete operations on tracked entities and
// writes one redacted ActivityLog record per operation.
//
// Every record passes through the same pipeline: excluded fields are dropped,
// sensitive fields are masked, foreign keys are replaced by the display label
// of the row they point to, and everything else passes through unchanged.
// Nothing in this package returns an error to the code that performed the
// mutation. Failures are logged and counted instead.
//
// Persisted records can also be copied to secondary destinations (webhook,
// NDJSON file, Redis stream, object storage) through the Shipper interface.
package audit

import (
	"context"
	"time"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
)

// Entity is implemented by every tracked model.
type Entity interface {
	// AuditType is the short type name, e.g. "Alumno".
	AuditType() string
	// AuditID is the primary key.
	AuditID() int64
	// AuditFields is a flat column -> value map with nil for NULL columns.
	AuditFields() map[string]any
}

// Excluder is implemented by entities that hide columns beyond the baseline exclusions.
type Excluder interface {
	AuditExcluded() []string
}

// Actor identifies who triggered a mutation. A nil UserID records a
// system-triggered event.
type Actor struct {
	UserID    *int64
	RequestID string
}

// SystemActor is the actor for mutations not tied to an authenticated user.
var SystemActor = Actor{}

// Observer receives lifecycle events after the mutation has committed.
type Observer interface {
	HandleCreated(ctx context.Context, actor Actor, e Entity)
	HandleUpdated(ctx context.Context, actor Actor, before, after Entity)
	HandleDeleted(ctx context.Context, actor Actor, e Entity)
}

// Event is one lifecycle notification. Before is nil for creations and After
// is nil for deletions. A zero OccurredAt is replaced by the interceptor clock.
type Event struct {
	Action     models.ActivityAction
	Actor      Actor
	Before     Entity
	After      Entity
	OccurredAt time.Time
}

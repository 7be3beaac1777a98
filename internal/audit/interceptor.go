package audit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/safego"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/telemetry"
)

const shipTimeout = 30 * time.Second

// Options configures record metadata.
type Options struct {
	// TypeNamespace prefixes loggable_type ("models" -> "models.Alumno"). Empty means no prefix.
	TypeNamespace string
	// Server is written to json_log.metadata.server; empty means os.Hostname().
	Server string
	// Database is written to json_log.metadata.database.
	Database string
	// Now is the clock used when an event carries no OccurredAt.
	Now func() time.Time
}

// Interceptor builds and persists one ActivityLog record per lifecycle event.
// It is safe for concurrent use.
type Interceptor struct {
	writer   RecordWriter
	registry *Registry
	resolver *Resolver
	rules    atomic.Pointer[Rules]
	shipper  Shipper
	ships    safego.Group
	opts     Options
}

var _ Observer = (*Interceptor)(nil)

// NewInterceptor returns an interceptor that persists records through writer
// and resolves foreign keys through lookup.
func NewInterceptor(writer RecordWriter, registry *Registry, lookup LabelLookup, vocab Vocabulary, opts Options) *Interceptor {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Server == "" {
		opts.Server, _ = os.Hostname()
	}
	i := &Interceptor{
		writer:   writer,
		registry: registry,
		resolver: NewResolver(registry, lookup),
		opts:     opts,
	}
	i.rules.Store(NewRules(vocab))
	return i
}

// WithShipper copies every persisted record to s. Call before the interceptor is in use.
func (i *Interceptor) WithShipper(s Shipper) *Interceptor {
	i.shipper = s
	return i
}

// SetVocabulary swaps the classification rules. Events already being handled
// finish with the previous rules.
func (i *Interceptor) SetVocabulary(v Vocabulary) {
	i.rules.Store(NewRules(v))
}

func (i *Interceptor) HandleCreated(ctx context.Context, actor Actor, e Entity) {
	i.Handle(ctx, Event{Action: models.ActionCreated, Actor: actor, After: e})
}

func (i *Interceptor) HandleUpdated(ctx context.Context, actor Actor, before, after Entity) {
	i.Handle(ctx, Event{Action: models.ActionUpdated, Actor: actor, Before: before, After: after})
}

func (i *Interceptor) HandleDeleted(ctx context.Context, actor Actor, e Entity) {
	i.Handle(ctx, Event{Action: models.ActionDeleted, Actor: actor, Before: e})
}

// Handle records ev. It never panics and never reports an error; failures are
// logged and counted in audit_write_failures_total.
func (i *Interceptor) Handle(ctx context.Context, ev Event) {
	// entity stays empty when the snapshot itself panics, e.g. a typed nil pointer.
	var entity string
	defer func() {
		if p := recover(); p != nil {
			telemetry.AuditWriteFailuresTotal.WithLabelValues(entity).Inc()
			slog.Error("audit: recovered panic while recording event",
				"entity", entity, "action", ev.Action, "panic", p)
		}
	}()

	subject := ev.After
	if ev.Action == models.ActionDeleted {
		subject = ev.Before
	}
	if subject == nil || (ev.Action == models.ActionUpdated && ev.Before == nil) {
		slog.Warn("audit: event without entity snapshot ignored", "action", ev.Action)
		return
	}
	entity = i.entityLabel(subject.AuditType())

	// The mutation is already committed, so the record is written even if the
	// caller's request context has been cancelled.
	ctx = context.WithoutCancel(ctx)

	builder := NewChangeSetBuilder(i.rules.Load(), i.resolver)
	var data models.ChangeData
	switch ev.Action {
	case models.ActionCreated:
		data = builder.Created(ctx, subject)
	case models.ActionUpdated:
		var changed bool
		if data, changed = builder.Updated(ctx, ev.Before, ev.After); !changed {
			return
		}
	case models.ActionDeleted:
		data = builder.Deleted(ctx, subject)
	default:
		slog.Warn("audit: unknown action ignored", "action", ev.Action)
		return
	}

	record := i.newRecord(ev, subject, entity, data)
	if err := i.writer.CreateActivityLog(ctx, record); err != nil {
		telemetry.AuditWriteFailuresTotal.WithLabelValues(entity).Inc()
		slog.Error("audit: failed to persist activity log",
			"loggable_type", record.LoggableType,
			"loggable_id", record.LoggableID,
			"action", record.Action,
			"request_id", ev.Actor.RequestID,
			"error", err)
		return
	}
	telemetry.AuditRecordsWrittenTotal.WithLabelValues(entity, string(record.Action)).Inc()
	i.ship(record)
}

func (i *Interceptor) newRecord(ev Event, subject Entity, entity string, data models.ChangeData) *models.ActivityLog {
	occurred := ev.OccurredAt
	if occurred.IsZero() {
		occurred = i.opts.Now()
	}
	typ := subject.AuditType()
	description := fmt.Sprintf("%s %s: ID %d", typ, ev.Action.Verb(), subject.AuditID())

	return &models.ActivityLog{
		UserID:       ev.Actor.UserID,
		LoggableType: i.qualifiedType(typ),
		LoggableID:   subject.AuditID(),
		Action:       ev.Action,
		Entity:       entity,
		Description:  description,
		Datetime:     occurred,
		JSONLog: models.JSONLog{
			Data:        data,
			Action:      string(ev.Action),
			Entity:      entity,
			Metadata:    models.LogMetadata{Server: i.opts.Server, Database: i.opts.Database},
			Timestamp:   occurred,
			Description: description,
		},
	}
}

func (i *Interceptor) qualifiedType(typ string) string {
	if i.opts.TypeNamespace == "" {
		return typ
	}
	return i.opts.TypeNamespace + "." + typ
}

// entityLabel returns the plural label for typ, falling back to the lower-cased
// type name with an "s" for types missing from the registry.
func (i *Interceptor) entityLabel(typ string) string {
	if d, ok := i.registry.Lookup(typ); ok {
		return d.Plural
	}
	return strings.ToLower(typ) + "s"
}

// ship copies record to the configured shipper in the background.
func (i *Interceptor) ship(record *models.ActivityLog) {
	if i.shipper == nil {
		return
	}
	i.ships.Go("audit-ship", func() {
		ctx, cancel := context.WithTimeout(context.Background(), shipTimeout)
		defer cancel()
		if err := i.shipper.Ship(ctx, record); err != nil {
			slog.Warn("audit: failed to ship activity log", "id", record.ID, "error", err)
		}
	})
}

// Close waits for in-flight shipments, then closes the shipper. When ctx ends
// first the shipper is left open so running shipments can finish against it;
// anything still in flight at process exit is dropped.
func (i *Interceptor) Close(ctx context.Context) error {
	if err := i.ships.Wait(ctx); err != nil {
		slog.Warn("audit: shipments still in flight at shutdown, shipper left open", "error", err)
		return fmt.Errorf("waiting for audit shipments: %w", err)
	}
	if i.shipper != nil {
		return i.shipper.Close()
	}
	return nil
}

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/telemetry"
)

// LabelLookup fetches the display label of one row. found is false when the
// row does not exist.
type LabelLookup interface {
	LookupLabel(ctx context.Context, d Descriptor, id int64) (label string, found bool, err error)
}

// LabelLookupFunc adapts a function to LabelLookup.
type LabelLookupFunc func(ctx context.Context, d Descriptor, id int64) (string, bool, error)

func (f LabelLookupFunc) LookupLabel(ctx context.Context, d Descriptor, id int64) (string, bool, error) {
	return f(ctx, d, id)
}

// Failure reasons recorded in audit_label_resolution_failures_total.
const (
	reasonUnknownType = "unknown_type"
	reasonInvalidID   = "invalid_id"
	reasonNotFound    = "not_found"
	reasonEmptyLabel  = "empty_label"
	reasonLookupError = "lookup_error"
	reasonPanic       = "panic"
)

// Resolver replaces foreign-key values with the label of the referenced row.
type Resolver struct {
	registry *Registry
	lookup   LabelLookup
}

// NewResolver returns a resolver backed by lookup. A nil lookup resolves every
// registered foreign key to the unknown label.
func NewResolver(registry *Registry, lookup LabelLookup) *Resolver {
	return &Resolver{registry: registry, lookup: lookup}
}

// Resolve returns the label for the row that field/value points to. It never
// fails: a nil value, an unregistered type, a non-integer id, a missing row,
// an empty label, a lookup error or a panic all yield rules.UnknownLabel().
func (r *Resolver) Resolve(ctx context.Context, rules *Rules, field string, value any) (label string) {
	unknown := rules.UnknownLabel()
	if value == nil {
		return unknown
	}

	typ, d, ok := r.registry.ReferencedType(field, rules.ForeignKeySuffix())
	if !ok {
		return r.fail(typ, field, reasonUnknownType, nil, unknown)
	}
	id, ok := toID(value)
	if !ok {
		return r.fail(typ, field, reasonInvalidID, fmt.Errorf("unsupported id value %v (%T)", value, value), unknown)
	}
	if r.lookup == nil {
		return r.fail(typ, field, reasonLookupError, fmt.Errorf("no label lookup configured"), unknown)
	}

	defer func() {
		if p := recover(); p != nil {
			label = r.fail(typ, field, reasonPanic, fmt.Errorf("%v", p), unknown)
		}
	}()

	got, found, err := r.lookup.LookupLabel(ctx, d, id)
	switch {
	case err != nil:
		return r.fail(typ, field, reasonLookupError, err, unknown)
	case !found:
		return r.fail(typ, field, reasonNotFound, nil, unknown)
	case strings.TrimSpace(got) == "":
		return r.fail(typ, field, reasonEmptyLabel, nil, unknown)
	}
	return got
}

func (r *Resolver) fail(typ, field, reason string, err error, unknown string) string {
	telemetry.AuditLabelResolutionFailuresTotal.WithLabelValues(typ, reason).Inc()
	attrs := []any{"field", field, "type", typ, "reason", reason}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	slog.Debug("audit: foreign key resolved to unknown label", attrs...)
	return unknown
}

// toID converts a scanned or decoded key to a positive int64.
func toID(v any) (int64, bool) {
	var id int64
	switch n := v.(type) {
	case int:
		id = int64(n)
	case int8:
		id = int64(n)
	case int16:
		id = int64(n)
	case int32:
		id = int64(n)
	case int64:
		id = n
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		id = int64(n)
	case uint8:
		id = int64(n)
	case uint16:
		id = int64(n)
	case uint32:
		id = int64(n)
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		id = int64(n)
	case float32:
		return floatID(float64(n))
	case float64:
		return floatID(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		id = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		id = i
	case []byte:
		i, err := strconv.ParseInt(strings.TrimSpace(string(n)), 10, 64)
		if err != nil {
			return 0, false
		}
		id = i
	default:
		return 0, false
	}
	return id, id > 0
}

func floatID(f float64) (int64, bool) {
	if f != math.Trunc(f) || f <= 0 || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

package audit

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Descriptor describes a tracked entity type.
type Descriptor struct {
	// Type is the short type name, e.g. "FactorRiesgo".
	Type string
	// Table is the table holding the rows.
	Table string
	// Label is the SQL expression that names a row for foreign-key resolution.
	Label string
	// Plural is the pluralised snake_case label written to activity_logs.entity.
	Plural string
}

// Registry maps type names to descriptors. It is populated at startup from
// the known models; no reflection or naming-convention lookup is involved.
type Registry struct {
	mu     sync.RWMutex
	byType map[string]Descriptor
}

// NewRegistry returns a registry holding ds.
func NewRegistry(ds ...Descriptor) (*Registry, error) {
	r := &Registry{byType: make(map[string]Descriptor, len(ds))}
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds d. Type, Table and Label are required and a type may only be registered once.
func (r *Registry) Register(d Descriptor) error {
	if d.Type == "" || d.Table == "" || d.Label == "" {
		return fmt.Errorf("audit descriptor %q: type, table and label are required", d.Type)
	}
	if d.Plural == "" {
		d.Plural = d.Table
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byType[d.Type]; dup {
		return fmt.Errorf("audit descriptor %q registered twice", d.Type)
	}
	r.byType[d.Type] = d
	return nil
}

// Lookup returns the descriptor registered for typ.
func (r *Registry) Lookup(typ string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byType[typ]
	return d, ok
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// ReferencedType derives the entity a foreign-key field points to: the suffix
// is stripped and the rest studly-cased ("factor_riesgo_id" -> "FactorRiesgo").
// When that type is unknown and the name ends in "s", the lookup is retried
// without it. The derived name is returned even when nothing matched.
func (r *Registry) ReferencedType(field, suffix string) (string, Descriptor, bool) {
	base := strings.TrimSuffix(strings.ToLower(field), strings.ToLower(suffix))
	typ := Studly(base)
	if d, ok := r.Lookup(typ); ok {
		return typ, d, true
	}
	if single, ok := strings.CutSuffix(base, "s"); ok && single != "" {
		if d, ok := r.Lookup(Studly(single)); ok {
			return d.Type, d, true
		}
	}
	return typ, Descriptor{}, false
}

// Studly converts snake_case to StudlyCase ("alumno_factor_riesgo" -> "AlumnoFactorRiesgo").
func Studly(s string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' }) {
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

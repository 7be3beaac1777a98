package audit

import (
	"context"
	"sort"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
)

var equateTime = cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })

// Diff returns the sorted names of the fields whose values differ between
// before and after. A field present on only one side counts as changed.
// time.Time values are compared by instant, not by location.
func Diff(before, after map[string]any) []string {
	keys := make(map[string]struct{}, len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	var dirty []string
	for k := range keys {
		b, inBefore := before[k]
		a, inAfter := after[k]
		if inBefore != inAfter || !equal(b, a) {
			dirty = append(dirty, k)
		}
	}
	sort.Strings(dirty)
	return dirty
}

// equal compares two column values. Values cmp cannot handle compare unequal.
func equal(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return cmp.Equal(a, b, equateTime)
}

// ChangeSetBuilder turns entity snapshots into redacted change sets.
type ChangeSetBuilder struct {
	rules    *Rules
	resolver *Resolver
}

// NewChangeSetBuilder returns a builder applying rules, with foreign keys resolved by resolver.
func NewChangeSetBuilder(rules *Rules, resolver *Resolver) ChangeSetBuilder {
	return ChangeSetBuilder{rules: rules, resolver: resolver}
}

// Created returns {new: every non-excluded field}.
func (b ChangeSetBuilder) Created(ctx context.Context, e Entity) models.ChangeData {
	fields := e.AuditFields()
	return models.ChangeData{New: b.project(ctx, fields, b.visible(e, fields))}
}

// Deleted returns {old: every non-excluded field of the pre-deletion snapshot}.
func (b ChangeSetBuilder) Deleted(ctx context.Context, e Entity) models.ChangeData {
	fields := e.AuditFields()
	return models.ChangeData{Old: b.project(ctx, fields, b.visible(e, fields))}
}

// Updated returns {old, new} restricted to the non-excluded fields that
// changed. ok is false when no such field exists. Old and new values are
// resolved independently, so a changed foreign key shows both labels.
func (b ChangeSetBuilder) Updated(ctx context.Context, before, after Entity) (data models.ChangeData, ok bool) {
	oldFields, newFields := before.AuditFields(), after.AuditFields()
	extra := excludedFor(after)

	var dirty []string
	for _, f := range Diff(oldFields, newFields) {
		if !b.rules.skip(f, extra) {
			dirty = append(dirty, f)
		}
	}
	if len(dirty) == 0 {
		return models.ChangeData{}, false
	}
	return models.ChangeData{
		Old: b.project(ctx, oldFields, dirty),
		New: b.project(ctx, newFields, dirty),
	}, true
}

// visible lists the fields of e that survive exclusion.
func (b ChangeSetBuilder) visible(e Entity, fields map[string]any) []string {
	extra := excludedFor(e)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if !b.rules.skip(k, extra) {
			keys = append(keys, k)
		}
	}
	return keys
}

// project applies masking and foreign-key resolution to the named fields.
func (b ChangeSetBuilder) project(ctx context.Context, fields map[string]any, keys []string) models.FieldMap {
	out := make(models.FieldMap, len(keys))
	for _, k := range keys {
		v := fields[k]
		switch b.rules.Classify(k) {
		case ClassSensitive:
			out[k] = b.rules.Mask(k, v)
		case ClassForeignKey:
			out[k] = b.resolver.Resolve(ctx, b.rules, k, v)
		default:
			out[k] = v
		}
	}
	return out
}

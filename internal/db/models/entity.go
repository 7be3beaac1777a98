// Package models - entity.go holds the helpers shared by the tracked entities.
//
// Every tracked entity exposes the same small method set, consumed by the audit
// interceptor and the generic tracked repository:
//
//	AuditType() string            // short type name, "Alumno"
//	AuditID() int64               // primary key
//	AuditFields() map[string]any  // column -> value, nil for NULL
//	TableName() string            // table and pluralised entity label
//	LabelExpr() string            // SQL expression naming a row for FK resolution
package models

// deref returns the pointed-to value or nil, so NULL columns surface as nil in AuditFields.
func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// Package models - activity_log.go defines the ActivityLog record written by the
// audit interceptor for every create, update and delete of a tracked entity.
package models

import "time"

// ActivityAction is the lifecycle event that produced an activity log entry
type ActivityAction string

const (
	ActionCreated ActivityAction = "CREATED"
	ActionUpdated ActivityAction = "UPDATED"
	ActionDeleted ActivityAction = "DELETED"
)

// Verb returns the lower-case past participle used in descriptions ("created").
func (a ActivityAction) Verb() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionUpdated:
		return "updated"
	case ActionDeleted:
		return "deleted"
	}
	return string(a)
}

// Valid reports whether a is one of the three recorded actions.
func (a ActivityAction) Valid() bool {
	return a == ActionCreated || a == ActionUpdated || a == ActionDeleted
}

// FieldMap is a flat field -> value map after exclusion, masking and label resolution.
type FieldMap map[string]any

// ChangeData holds the before/after field maps. Old is absent for creations,
// New is absent for deletions.
type ChangeData struct {
	Old FieldMap `json:"old,omitempty"`
	New FieldMap `json:"new,omitempty"`
}

// LogMetadata identifies where the record was produced
type LogMetadata struct {
	Server   string `json:"server"`
	Database string `json:"database"`
}

// JSONLog is the structured payload stored in activity_logs.json_log
type JSONLog struct {
	Data        ChangeData  `json:"data"`
	Action      string      `json:"action"`
	Entity      string      `json:"entity"`
	Metadata    LogMetadata `json:"metadata"`
	Timestamp   time.Time   `json:"timestamp"`
	Description string      `json:"description"`
}

// ActivityLog is an immutable audit record. Once written it is never updated or deleted.
type ActivityLog struct {
	ID           int64          `json:"id"`
	UserID       *int64         `json:"user_id"` // Nullable for system-triggered events
	LoggableType string         `json:"loggable_type"`
	LoggableID   int64          `json:"loggable_id"`
	Action       ActivityAction `json:"action"`
	Entity       string         `json:"entity"`
	Description  string         `json:"description"`
	JSONLog      JSONLog        `json:"json_log"`
	Datetime     time.Time      `json:"datetime"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// activity_log_repository.go implements ActivityLogRepository, the append-only
// store for audit records with filtered, paginated reads. It has no update or
// delete methods.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
)

// ActivityLogRepository handles activity_logs database operations
type ActivityLogRepository struct {
	db *sql.DB
}

// NewActivityLogRepository creates a new ActivityLogRepository
func NewActivityLogRepository(db *sql.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// ActivityLogFilters contains filters for querying activity logs. Nil fields
// are not applied; all set fields must match.
type ActivityLogFilters struct {
	UserID       *int64
	LoggableType *string
	LoggableID   *int64
	// Entity, Action and Description match as case-insensitive substrings.
	Entity      *string
	Action      *string
	Description *string
	// DatetimeFrom and DatetimeTo bound datetime inclusively.
	DatetimeFrom *time.Time
	DatetimeTo   *time.Time
}

// ActivityLogSort selects the ordering of List results.
type ActivityLogSort struct {
	Field string
	Desc  bool
}

// DefaultActivityLogSort orders newest first.
var DefaultActivityLogSort = ActivityLogSort{Field: "datetime", Desc: true}

var activityLogSortColumns = map[string]string{
	"datetime":      "datetime",
	"action":        "action",
	"entity":        "entity",
	"loggable_type": "loggable_type",
}

// orderBy returns the ORDER BY clause for s. Unknown fields use the default
// sort; id DESC is always appended so pages are stable.
func (s ActivityLogSort) orderBy() string {
	col, ok := activityLogSortColumns[s.Field]
	desc := s.Desc
	if !ok {
		col, desc = DefaultActivityLogSort.Field, DefaultActivityLogSort.Desc
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id DESC", col, dir)
}

const activityLogColumns = `id, user_id, loggable_type, loggable_id, action, entity, description, json_log, datetime, created_at, updated_at`

// CreateActivityLog appends a record and fills in ID, CreatedAt and UpdatedAt.
func (r *ActivityLogRepository) CreateActivityLog(ctx context.Context, log *models.ActivityLog) error {
	if !log.Action.Valid() {
		return fmt.Errorf("invalid activity action %q", log.Action)
	}
	payload, err := json.Marshal(log.JSONLog)
	if err != nil {
		return fmt.Errorf("failed to marshal json_log: %w", err)
	}

	query := `
		INSERT INTO activity_logs (user_id, loggable_type, loggable_id, action, entity, description, json_log, datetime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		log.UserID,
		log.LoggableType,
		log.LoggableID,
		string(log.Action),
		log.Entity,
		log.Description,
		payload,
		log.Datetime,
	).Scan(&log.ID, &log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}
	return nil
}

// ListActivityLogs retrieves activity logs matching filters, with the total
// number of matches ignoring limit and offset.
func (r *ActivityLogRepository) ListActivityLogs(ctx context.Context, filters ActivityLogFilters, sort ActivityLogSort, limit, offset int) ([]*models.ActivityLog, int, error) {
	where, args := filters.where()

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count activity logs: %w", err)
	}

	query := `SELECT ` + activityLogColumns + ` FROM activity_logs` + where + sort.orderBy() +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*models.ActivityLog, 0)
	for rows.Next() {
		log, err := scanActivityLog(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, log)
	}
	return logs, total, rows.Err()
}

// GetActivityLog retrieves a single record by ID. It returns nil, nil when no
// such record exists.
func (r *ActivityLogRepository) GetActivityLog(ctx context.Context, id int64) (*models.ActivityLog, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+activityLogColumns+` FROM activity_logs WHERE id = $1`, id)
	log, err := scanActivityLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return log, nil
}

// CountByEntityAction returns the number of records per entity and action.
func (r *ActivityLogRepository) CountByEntityAction(ctx context.Context) (map[string]map[models.ActivityAction]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT entity, action, COUNT(*)
		FROM activity_logs
		GROUP BY entity, action
		ORDER BY entity, action
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count activity logs: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]map[models.ActivityAction]int)
	for rows.Next() {
		var (
			entity, action string
			n              int
		)
		if err := rows.Scan(&entity, &action, &n); err != nil {
			return nil, err
		}
		if counts[entity] == nil {
			counts[entity] = make(map[models.ActivityAction]int)
		}
		counts[entity][models.ActivityAction(action)] = n
	}
	return counts, rows.Err()
}

// where builds the WHERE clause for f with $n placeholders starting at 1.
func (f ActivityLogFilters) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(format string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(format, len(args)))
	}

	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.LoggableType != nil {
		add("loggable_type = $%d", *f.LoggableType)
	}
	if f.LoggableID != nil {
		add("loggable_id = $%d", *f.LoggableID)
	}
	if f.Entity != nil {
		add("entity ILIKE $%d", "%"+escapeLike(*f.Entity)+"%")
	}
	if f.Action != nil {
		add("action ILIKE $%d", "%"+escapeLike(*f.Action)+"%")
	}
	if f.Description != nil {
		add("description ILIKE $%d", "%"+escapeLike(*f.Description)+"%")
	}
	if f.DatetimeFrom != nil {
		add("datetime >= $%d", *f.DatetimeFrom)
	}
	if f.DatetimeTo != nil {
		add("datetime <= $%d", *f.DatetimeTo)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// escapeLike escapes the LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivityLog(row rowScanner) (*models.ActivityLog, error) {
	log := &models.ActivityLog{}
	var (
		action  string
		payload []byte
	)
	err := row.Scan(
		&log.ID,
		&log.UserID,
		&log.LoggableType,
		&log.LoggableID,
		&action,
		&log.Entity,
		&log.Description,
		&payload,
		&log.Datetime,
		&log.CreatedAt,
		&log.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	log.Action = models.ActivityAction(action)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &log.JSONLog); err != nil {
			return nil, fmt.Errorf("failed to decode json_log for activity log %d: %w", log.ID, err)
		}
	}
	return log, nil
}

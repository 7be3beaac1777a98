// tracked_repository.go implements TrackedRepository, the persistence layer for
// every audited entity. Column lists come from the model's AuditFields, so no
// per-entity SQL is written by hand. Lifecycle events are emitted to an
// audit.Observer after the statement or transaction has committed.

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/audit"
)

// ErrNotFound is returned by Update and Delete when the row does not exist.
var ErrNotFound = errors.New("record not found")

// Tracked is the method set shared by every audited model.
type Tracked interface {
	audit.Entity
	TableName() string
	LabelExpr() string
}

// TrackedPtr constrains P to *T where *T is Tracked.
type TrackedPtr[T any] interface {
	*T
	Tracked
}

// serverManaged columns are never written from the model.
var serverManaged = map[string]bool{"id": true, "created_at": true, "updated_at": true}

// TrackedRepository provides CRUD for one entity type and reports every
// committed mutation to its observer.
type TrackedRepository[T any, P TrackedPtr[T]] struct {
	db       *sqlx.DB
	observer audit.Observer
	table    string
	columns  []string
}

// NewTrackedRepository creates a repository for T. A nil observer disables auditing.
func NewTrackedRepository[T any, P TrackedPtr[T]](db *sqlx.DB, observer audit.Observer) *TrackedRepository[T, P] {
	var zero T
	p := P(&zero)

	var cols []string
	for col := range p.AuditFields() {
		if !serverManaged[col] {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)

	return &TrackedRepository[T, P]{
		db:       db,
		observer: observer,
		table:    p.TableName(),
		columns:  cols,
	}
}

// Descriptor returns the audit registry entry for T.
func (r *TrackedRepository[T, P]) Descriptor() audit.Descriptor {
	return DescriptorFor[T, P]()
}

// values returns e's column values in r.columns order.
func (r *TrackedRepository[T, P]) values(e P) []any {
	fields := e.AuditFields()
	args := make([]any, len(r.columns))
	for i, col := range r.columns {
		args[i] = fields[col]
	}
	return args
}

// Create inserts e and refreshes it from the returned row, then reports the creation.
func (r *TrackedRepository[T, P]) Create(ctx context.Context, actor audit.Actor, e P) error {
	placeholders := make([]string, len(r.columns))
	for i := range r.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING *`,
		r.table, strings.Join(r.columns, ", "), strings.Join(placeholders, ", "))

	if err := r.db.QueryRowxContext(ctx, query, r.values(e)...).StructScan(e); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", r.table, err)
	}

	if r.observer != nil {
		created := *e
		r.observer.HandleCreated(ctx, actor, P(&created))
	}
	return nil
}

// Update writes e over the row with the same id. The prior row is locked and
// read in the same transaction, and both snapshots are reported after commit.
func (r *TrackedRepository[T, P]) Update(ctx context.Context, actor audit.Actor, e P) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	before, err := r.lockRow(ctx, tx, e.AuditID())
	if err != nil {
		return err
	}

	sets := make([]string, len(r.columns))
	for i, col := range r.columns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	args := append(r.values(e), e.AuditID())
	query := fmt.Sprintf(`UPDATE %s SET %s, updated_at = NOW() WHERE id = $%d RETURNING *`,
		r.table, strings.Join(sets, ", "), len(args))

	if err := tx.QueryRowxContext(ctx, query, args...).StructScan(e); err != nil {
		return fmt.Errorf("failed to update %s: %w", r.table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update of %s: %w", r.table, err)
	}

	if r.observer != nil {
		after := *e
		r.observer.HandleUpdated(ctx, actor, P(before), P(&after))
	}
	return nil
}

// Delete removes the row with id and reports its last state after commit.
func (r *TrackedRepository[T, P]) Delete(ctx context.Context, actor audit.Actor, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	before, err := r.lockRow(ctx, tx, id)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", r.table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete from %s: %w", r.table, err)
	}

	if r.observer != nil {
		r.observer.HandleDeleted(ctx, actor, P(before))
	}
	return nil
}

// lockRow reads the row with id FOR UPDATE, returning ErrNotFound when absent.
func (r *TrackedRepository[T, P]) lockRow(ctx context.Context, tx *sqlx.Tx, id int64) (*T, error) {
	row := new(T)
	err := tx.GetContext(ctx, row, fmt.Sprintf(`SELECT * FROM %s WHERE id = $1 FOR UPDATE`, r.table), id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %d: %w", r.table, id, err)
	}
	return row, nil
}

// Get retrieves the row with id. It returns nil, nil when no such row exists.
func (r *TrackedRepository[T, P]) Get(ctx context.Context, id int64) (*T, error) {
	row := new(T)
	err := r.db.GetContext(ctx, row, fmt.Sprintf(`SELECT * FROM %s WHERE id = $1`, r.table), id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// List returns a page of rows ordered by id together with the total row count.
func (r *TrackedRepository[T, P]) List(ctx context.Context, limit, offset int) ([]T, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)); err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", r.table, err)
	}

	rows := make([]T, 0)
	query := fmt.Sprintf(`SELECT * FROM %s ORDER BY id LIMIT $1 OFFSET $2`, r.table)
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", r.table, err)
	}
	return rows, total, nil
}

package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/audit"
)

// LabelRepository resolves foreign keys to display labels with a single-row
// SELECT of the descriptor's label expression.
type LabelRepository struct {
	db *sqlx.DB
}

// NewLabelRepository creates a new LabelRepository
func NewLabelRepository(db *sqlx.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

var _ audit.LabelLookup = (*LabelRepository)(nil)

// LookupLabel implements audit.LabelLookup. A NULL label is reported as found
// and empty.
func (r *LabelRepository) LookupLabel(ctx context.Context, d audit.Descriptor, id int64) (string, bool, error) {
	var label sql.NullString
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, d.Label, d.Table)
	err := r.db.GetContext(ctx, &label, query, id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return label.String, true, nil
}

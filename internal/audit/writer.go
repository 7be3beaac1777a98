package audit

import (
	"context"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
)

// RecordWriter persists activity log records. The implementation assigns
// record.ID and the write timestamps.
type RecordWriter interface {
	CreateActivityLog(ctx context.Context, record *models.ActivityLog) error
}

// RecordWriterFunc adapts a function to RecordWriter.
type RecordWriterFunc func(ctx context.Context, record *models.ActivityLog) error

func (f RecordWriterFunc) CreateActivityLog(ctx context.Context, record *models.ActivityLog) error {
	return f(ctx, record)
}

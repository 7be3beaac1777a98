package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/storage"
	"github.com/Pvngu/tecnm-monorepo-sub000/pkg/checksum"
)

const defaultArchivePrefix = "activity-logs"

// ArchiveShipper writes each record once to object storage at
// <prefix>/YYYY/MM/DD/<id>.json, dated by the record's UTC datetime.
// Existing objects are never overwritten.
type ArchiveShipper struct {
	store  storage.Storage
	prefix string
}

// NewArchiveShipper creates an archive shipper on store.
func NewArchiveShipper(store storage.Storage, prefix string) (*ArchiveShipper, error) {
	if store == nil {
		return nil, fmt.Errorf("storage backend is required")
	}
	if prefix == "" {
		prefix = defaultArchivePrefix
	}
	return &ArchiveShipper{store: store, prefix: prefix}, nil
}

// ObjectPath returns the storage path for record.
func (as *ArchiveShipper) ObjectPath(record *models.ActivityLog) string {
	return path.Join(as.prefix, record.Datetime.UTC().Format("2006/01/02"), fmt.Sprintf("%d.json", record.ID))
}

func (as *ArchiveShipper) Ship(ctx context.Context, record *models.ActivityLog) error {
	if record.ID == 0 {
		return fmt.Errorf("refusing to archive unpersisted activity log")
	}
	key := as.ObjectPath(record)

	exists, err := as.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check archive object: %w", err)
	}
	if exists {
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal activity log: %w", err)
	}
	result, err := as.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("failed to upload archive object: %w", err)
	}
	if want := checksum.Sum(data); result.Checksum != want {
		return fmt.Errorf("archive checksum mismatch for %s: got %s, want %s", key, result.Checksum, want)
	}
	return nil
}

// Close is a no-op; the storage backend is owned by the caller.
func (as *ArchiveShipper) Close() error { return nil }

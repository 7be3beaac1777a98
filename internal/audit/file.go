package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/config"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
)

// FileShipper appends records to a file as newline-delimited JSON, rotating
// the file once it grows past MaxSizeMB.
type FileShipper struct {
	path       string
	maxBytes   int64
	maxBackups int

	mu   sync.Mutex
	file *os.File
}

// NewFileShipper creates a new file shipper
func NewFileShipper(cfg *config.AuditFileConfig) (*FileShipper, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("file path is required")
	}
	file, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	return &FileShipper{
		path:       cfg.Path,
		maxBytes:   int64(cfg.MaxSizeMB) * 1024 * 1024,
		maxBackups: cfg.MaxBackups,
		file:       file,
	}, nil
}

// Ship writes a record as one JSON line
func (fs *FileShipper) Ship(ctx context.Context, record *models.ActivityLog) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal activity log: %w", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.maxBytes > 0 {
		if info, err := fs.file.Stat(); err == nil && info.Size() >= fs.maxBytes {
			if err := fs.rotate(); err != nil {
				slog.Warn("failed to rotate audit log file", "path", fs.path, "error", err)
			}
		}
	}

	if _, err := fs.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write activity log: %w", err)
	}
	return nil
}

// rotate shifts path.N to path.N+1, moves the live file to path.1 and reopens
// path. Backups beyond maxBackups are removed.
func (fs *FileShipper) rotate() error {
	if err := fs.file.Close(); err != nil {
		return err
	}

	for i := fs.maxBackups - 1; i >= 1; i-- {
		_ = os.Rename(fmt.Sprintf("%s.%d", fs.path, i), fmt.Sprintf("%s.%d", fs.path, i+1))
	}
	if fs.maxBackups > 0 {
		_ = os.Rename(fs.path, fs.path+".1")
		_ = os.Remove(fmt.Sprintf("%s.%d", fs.path, fs.maxBackups+1))
	} else {
		_ = os.Remove(fs.path)
	}

	file, err := os.OpenFile(fs.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	fs.file = file
	return nil
}

// Close closes the file
func (fs *FileShipper) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.file.Close()
}

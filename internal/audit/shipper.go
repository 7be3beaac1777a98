package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/config"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/storage"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/telemetry"
)

// Shipper copies persisted activity log records to a secondary destination.
// Shipping is best-effort; the activity_logs table stays the system of record.
type Shipper interface {
	// Ship sends a record to the destination
	Ship(ctx context.Context, record *models.ActivityLog) error
	// Close flushes pending records and releases resources
	Close() error
}

// ShipperDeps carries the shared clients that some shipper types need.
type ShipperDeps struct {
	// Redis is required by the "redis" shipper.
	Redis StreamAdder
	// Storage is required by the "archive" shipper.
	Storage storage.Storage
}

type namedShipper struct {
	name string
	Shipper
}

// MultiShipper ships to multiple destinations
type MultiShipper struct {
	shippers []namedShipper
	mu       sync.RWMutex
}

// NewMultiShipper builds the enabled shippers in cfgs. If any shipper fails to
// build, the ones already built are closed and the error is returned.
func NewMultiShipper(cfgs []config.AuditShipperConfig, deps ShipperDeps) (*MultiShipper, error) {
	ms := &MultiShipper{}

	for _, cfg := range cfgs {
		if !cfg.Enabled {
			continue
		}

		var (
			shipper Shipper
			err     error
		)
		switch cfg.Type {
		case "webhook":
			if cfg.Webhook == nil {
				err = fmt.Errorf("webhook config is required for webhook shipper")
				break
			}
			shipper, err = NewWebhookShipper(cfg.Webhook)
		case "file":
			if cfg.File == nil {
				err = fmt.Errorf("file config is required for file shipper")
				break
			}
			shipper, err = NewFileShipper(cfg.File)
		case "redis":
			if cfg.Redis == nil {
				err = fmt.Errorf("redis config is required for redis shipper")
				break
			}
			shipper, err = NewRedisShipper(deps.Redis, cfg.Redis)
		case "archive":
			var prefix string
			if cfg.Archive != nil {
				prefix = cfg.Archive.Prefix
			}
			shipper, err = NewArchiveShipper(deps.Storage, prefix)
		default:
			err = fmt.Errorf("unknown shipper type: %s", cfg.Type)
		}

		if err != nil {
			_ = ms.Close()
			return nil, fmt.Errorf("failed to create %s shipper: %w", cfg.Type, err)
		}
		ms.Add(cfg.Type, shipper)
	}

	return ms, nil
}

// Add registers s under name, which labels its failures in audit_ship_failures_total.
func (ms *MultiShipper) Add(name string, s Shipper) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.shippers = append(ms.shippers, namedShipper{name: name, Shipper: s})
}

// Len returns the number of configured shippers.
func (ms *MultiShipper) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.shippers)
}

// Ship sends the record to every shipper. A failing shipper does not stop the
// others; all failures are returned joined.
func (ms *MultiShipper) Ship(ctx context.Context, record *models.ActivityLog) error {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var errs []error
	for _, s := range ms.shippers {
		if err := s.Ship(ctx, record); err != nil {
			telemetry.AuditShipFailuresTotal.WithLabelValues(s.name).Inc()
			slog.Warn("audit shipper error", "shipper", s.name, "id", record.ID, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes all shippers
func (ms *MultiShipper) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var errs []error
	for _, s := range ms.shippers {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

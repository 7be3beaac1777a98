package api

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/audit"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/config"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/repositories"
)

// newAuditInterceptor builds the interceptor that records every committed
// mutation of a tracked entity, resolving foreign keys with single-row
// label lookups and copying records to the configured shippers.
func newAuditInterceptor(cfg *config.Config, sqlxDB *sqlx.DB, writer audit.RecordWriter, deps audit.ShipperDeps) (*audit.Interceptor, error) {
	registry, err := repositories.NewAuditRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit registry: %w", err)
	}

	interceptor := audit.NewInterceptor(
		writer,
		registry,
		repositories.NewLabelRepository(sqlxDB),
		audit.VocabularyFromConfig(cfg.Audit.Vocabulary),
		audit.Options{
			TypeNamespace: cfg.Audit.TypeNamespace,
			Server:        cfg.Audit.ServerNameOrHost(),
			Database:      cfg.Database.Name,
		},
	)

	shippers, err := audit.NewMultiShipper(cfg.Audit.Shippers, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audit shippers: %w", err)
	}
	if shippers.Len() > 0 {
		interceptor.WithShipper(shippers)
	}

	slog.Info("audit interceptor enabled",
		"entities", len(registry.Types()),
		"shippers", shippers.Len(),
		"type_namespace", cfg.Audit.TypeNamespace)
	return interceptor, nil
}

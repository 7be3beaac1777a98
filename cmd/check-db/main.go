// Package main is a diagnostic tool for testing database connectivity and
// inspecting the audit trail. It connects with the regular configuration,
// reports the schema version and prints the number of activity log records per
// entity and action. The binary exits with a non-zero code on any failure so it
// can be embedded in health checks or CI/CD pipeline steps.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/config"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/models"
	"github.com/Pvngu/tecnm-monorepo-sub000/internal/db/repositories"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.Database.GetDSN(), 2, 1)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer database.Close()

	version, dirty, err := db.GetMigrationVersion(database)
	if err != nil {
		log.Fatalf("Failed to read migration version: %v", err)
	}
	fmt.Printf("Schema version: %d (dirty: %v)\n", version, dirty)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	counts, err := repositories.NewActivityLogRepository(database).CountByEntityAction(ctx)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	fmt.Println("\n=== ACTIVITY LOGS ===")
	if len(counts) == 0 {
		fmt.Println("No activity logs found!")
		return
	}

	entities := make([]string, 0, len(counts))
	for entity := range counts {
		entities = append(entities, entity)
	}
	sort.Strings(entities)

	total := 0
	for _, entity := range entities {
		byAction := counts[entity]
		created, updated, deleted := byAction[models.ActionCreated], byAction[models.ActionUpdated], byAction[models.ActionDeleted]
		fmt.Printf("%-24s created=%-6d updated=%-6d deleted=%-6d\n", entity, created, updated, deleted)
		total += created + updated + deleted
	}
	fmt.Printf("\nTotal records: %d\n", total)
}

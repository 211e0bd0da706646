// Command catalogcheck prints products whose category has no matching
// category record. It exits with status 2 when any are found.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/fancystore/storeadmin/internal/config"
	"github.com/fancystore/storeadmin/internal/repository/postgres"
	"github.com/fancystore/storeadmin/internal/service"
	"github.com/fancystore/storeadmin/pkg/database"
	"github.com/fancystore/storeadmin/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.NewText("catalogcheck", cfg.LogLevel, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, log)
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	catalog := service.NewCatalogService(postgres.NewProductRepository(pool), log)
	report, err := catalog.CheckConsistency(ctx)
	if err != nil {
		log.Error("consistency check failed", slog.String("error", err.Error()))
		pool.Close()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Error("failed to write report", slog.String("error", err.Error()))
	}

	if !report.Consistent() {
		pool.Close()
		os.Exit(2)
	}
}

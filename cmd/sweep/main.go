package main

import (
	"context"
	"log"
	"time"

	"github.com/OffCmfrt/exchange-return-tracking/internal/bootstrap"
	"github.com/OffCmfrt/exchange-return-tracking/internal/config"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/database"

	"github.com/fatih/color"
)

// One-shot reconciliation sweep, for cron jobs and manual operation.
func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDB(cfg.Database)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	color.Cyan("Running reconciliation sweep...")
	started := time.Now()

	updated, err := container.SweeperService.Sweep(ctx)
	if err != nil {
		color.Red("Sweep failed: %v", err)
		return
	}

	color.Green("Sweep finished in %s, %d request(s) updated", time.Since(started).Round(time.Millisecond), updated)
}

package main

import (
	"context"
	"log"
	"time"

	"github.com/OffCmfrt/exchange-return-tracking/internal/bootstrap"
	"github.com/OffCmfrt/exchange-return-tracking/internal/config"
	"github.com/OffCmfrt/exchange-return-tracking/internal/server"
	"github.com/OffCmfrt/exchange-return-tracking/internal/tracer"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDB(cfg.Database)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	// Note: In a larger app, we might use an errgroup or supervisor here
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	if cfg.Sweep.IntervalMinutes > 0 {
		go func() {
			interval := time.Duration(cfg.Sweep.IntervalMinutes) * time.Minute
			log.Printf("Background: Starting Reconciliation Sweeper (every %s)...", interval)
			container.SweeperService.Run(context.Background(), interval)
		}()
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}

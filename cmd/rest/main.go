package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"intellius-chat-be/internal/bootstrap"
	"intellius-chat-be/internal/config"
	"intellius-chat-be/internal/model"
	"intellius-chat-be/internal/server"
	"intellius-chat-be/internal/tracer"
	"intellius-chat-be/pkg/database"
	"intellius-chat-be/pkg/events"
	pktNats "intellius-chat-be/pkg/nats"
	"intellius-chat-be/pkg/secrets"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Secret store first, it may provide the database settings
	secretsCfg := config.LoadSecrets()
	var loader *secrets.Loader
	if fetcher, err := secrets.NewAWSFetcherFromEnv(ctx, secretsCfg.Region); err != nil {
		log.Printf("Warn: secret store unavailable: %v", err)
	} else {
		loader = secrets.NewLoader(secrets.NewCachedFetcher(fetcher, secretsCfg.CacheTTL))
		config.SeedFromSecrets(ctx, loader, secretsCfg.Name)
	}

	// 2. Load Configuration
	cfg := config.Load()

	// 3. Tracer
	shutdownTracer := tracer.InitTracer(tracer.Config{
		Enabled:     cfg.App.OtelEnabled,
		Endpoint:    cfg.App.OtelEndpoint,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	defer shutdownTracer(context.Background())

	// 4. Initialize Database
	gormDB, err := database.NewGormDB(cfg.Database.GormConfig())
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if cfg.Database.Driver == database.DriverSQLite {
		// Local runs have no separate migrate step.
		if err := gormDB.AutoMigrate(model.All()...); err != nil {
			log.Panicf("Unable to migrate SQLite schema: %v", err)
		}
	}

	// 5. Bootstrap Dependencies (Container)
	opts := bootstrap.Options{}
	if loader != nil {
		opts.Secrets = loader
	}
	container, err := bootstrap.NewContainer(gormDB, cfg, opts)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}
	defer container.Close()
	defer container.Logger.Sync()

	// 6. Start Background Services
	go container.WebSocketHub.Run(ctx)

	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	if container.AuditSubscriber != nil {
		err := container.AuditSubscriber.Subscribe(ctx, pktNats.SubjectPrefix+">", "chat-audit", func(ctx context.Context, event events.Event) error {
			container.Logger.Info("AUDIT", event.EventType(), event.Payload())
			return nil
		})
		if err != nil {
			log.Printf("Audit subscriber error: %v", err)
		}
	}

	// 7. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	// 8. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}

package main

import (
	"context"
	"log"

	"pattern-sphere-be/internal/bootstrap"
	"pattern-sphere-be/internal/config"
	"pattern-sphere-be/internal/pkg/logger"
	"pattern-sphere-be/internal/server"
	"pattern-sphere-be/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(cfg.Tracing)
	defer shutdownTracer(context.Background())

	// 3. Logger
	zapLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	// 4. Open the store selected by DB_DRIVER
	uowFactory, _, err := bootstrap.OpenStore(cfg)
	if err != nil {
		log.Panicf("Unable to open store: %v", err)
	}

	// 5. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(uowFactory, cfg, zapLogger)
	defer container.Close()

	// 6. Forward bus events to NATS and the websocket feed
	if err := container.ConsumerService.Consume(context.Background()); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	// 7. Initialize and run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}

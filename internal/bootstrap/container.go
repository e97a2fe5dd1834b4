package bootstrap

import (
	"context"
	"fmt"
	"log"

	"pattern-sphere-be/internal/config"
	"pattern-sphere-be/internal/controller"
	"pattern-sphere-be/internal/handler"
	"pattern-sphere-be/internal/pkg/logger"
	"pattern-sphere-be/internal/repository/memory"
	"pattern-sphere-be/internal/repository/memstore"
	"pattern-sphere-be/internal/repository/unitofwork"
	"pattern-sphere-be/internal/service"
	"pattern-sphere-be/internal/websocket"
	"pattern-sphere-be/pkg/blobstore"
	"pattern-sphere-be/pkg/database"
	"pattern-sphere-be/pkg/events"

	pktNats "pattern-sphere-be/pkg/nats"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const eventTopic = "catalog.events"

type Container struct {
	// Controllers
	FeatureController  controller.IFeatureController
	TemplateController controller.ITemplateController
	PatternController  controller.IPatternController
	LanguageController controller.ILanguageController
	ViewController     controller.IViewController
	ImageController    controller.IImageController

	EventHandler *handler.EventHandler

	// Services, exposed for the seed tool
	FeatureService  service.IFeatureService
	TemplateService service.ITemplateService

	// Background services (run by main)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

// OpenStore returns the repository factory selected by DB_DRIVER.
func OpenStore(cfg *config.Config) (unitofwork.RepositoryFactory, *gorm.DB, error) {
	switch cfg.Database.Driver {
	case "memory":
		log.Println("Using in-memory store; data is lost on exit")
		return memstore.New(), nil, nil
	case "postgres", "":
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
		if err != nil {
			return nil, nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		return unitofwork.NewRepositoryFactory(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Database.Driver)
	}
}

func NewContainer(uowFactory unitofwork.RepositoryFactory, cfg *config.Config, zapLogger logger.ILogger) *Container {
	// 1. Core facades
	blobs := blobstore.New(blobstore.Config{
		Root:         cfg.Blob.Root,
		Depth:        cfg.Blob.Depth,
		MaxBytes:     cfg.Blob.MaxBytes,
		AllowedTypes: cfg.Blob.AllowedTypes,
		PublicPrefix: cfg.Blob.PublicPrefix,
	})
	schemaCache := memory.NewSchemaCache(cfg.Cache.SchemaTTL)

	// 2. Event publishers: NATS (optional) and the websocket feed
	var natsPublisher events.Publisher
	var closers []func()
	if cfg.App.NatsURL != "" {
		p, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("Warning: NATS unavailable, bus events disabled: %v", err)
		} else {
			natsPublisher = p
			closers = append(closers, p.Close)
		}
	}

	rdb := newRedisClient(cfg.App.RedisURL)
	if rdb != nil {
		closers = append(closers, func() { rdb.Close() })
	}
	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := websocket.NewHub(rdb, logger.NewIsolatedLogger("logs/events.log"))
	hub.OnRelay(service.NewSchemaInvalidator(schemaCache))
	go hub.Run(hubCtx)
	closers = append(closers, stopHub)

	// Services publish to the in-process bus; the consumer forwards to the sinks.
	bus := events.NewBus(eventTopic)
	closers = append(closers, func() { bus.Close() })
	consumerService := service.NewConsumerService(bus, events.Fanout(natsPublisher, hub), zapLogger)

	// 3. Services
	featureService := service.NewFeatureService(uowFactory, blobs, schemaCache, bus, zapLogger)
	templateService := service.NewTemplateService(uowFactory, blobs, schemaCache, bus, zapLogger)
	patternService := service.NewPatternService(uowFactory, blobs, schemaCache, bus, zapLogger)
	languageService := service.NewLanguageService(uowFactory, bus, zapLogger)
	viewService := service.NewViewService(uowFactory, blobs, schemaCache, bus, zapLogger)
	imageService := service.NewImageService(uowFactory, blobs, zapLogger)

	// 4. Controllers
	return &Container{
		FeatureController:  controller.NewFeatureController(featureService),
		TemplateController: controller.NewTemplateController(templateService, patternService),
		PatternController:  controller.NewPatternController(patternService),
		LanguageController: controller.NewLanguageController(languageService),
		ViewController:     controller.NewViewController(viewService),
		ImageController:    controller.NewImageController(imageService),

		EventHandler: handler.NewEventHandler(hub, cfg.App.JwtSecret, zapLogger),

		FeatureService:  featureService,
		TemplateService: templateService,

		ConsumerService: consumerService,

		Logger:  zapLogger,
		closers: closers,
	}
}

// newRedisClient returns nil when no URL is configured.
func newRedisClient(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("Warning: failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("Warning: failed to connect to Redis: %v", err)
	}
	return rdb
}

// Close releases the connections opened by NewContainer, newest first.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lustro/internal/common"
	"github.com/ternarybob/lustro/internal/handlers"
	"github.com/ternarybob/lustro/internal/interfaces"
	"github.com/ternarybob/lustro/internal/services/crawler"
	"github.com/ternarybob/lustro/internal/services/events"
	"github.com/ternarybob/lustro/internal/services/pdf"
	badgerstorage "github.com/ternarybob/lustro/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Event-driven services
	EventService interfaces.EventService

	// Crawler service
	CrawlerService interfaces.CrawlerService

	// PDF export service
	PDFService interfaces.PDFService

	// HTTP handlers
	APIHandler   *handlers.APIHandler
	CrawlHandler *handlers.CrawlHandler
	PageHandler  *handlers.PageHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Initialize handlers
	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	logger.Info().
		Int("max_pages", cfg.Crawler.MaxPages).
		Int("max_links_per_page", cfg.Crawler.MaxLinksPerPage).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := badgerstorage.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes event, crawler, and PDF services
func (a *App) initServices() error {
	a.EventService = events.NewService(a.Logger)

	// Debug-level visibility of crawl events on the bus
	if err := events.SubscribeLoggerToAllEvents(a.EventService, a.Logger); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to subscribe logger to crawl events")
	}

	a.CrawlerService = crawler.NewService(
		&a.Config.Crawler,
		a.StorageManager.PageStorage(),
		a.EventService,
		a.Logger,
	)

	a.PDFService = pdf.NewService(a.Logger)

	a.Logger.Debug().Msg("Services initialized")
	return nil
}

// initHandlers initializes HTTP handlers
func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler()
	a.CrawlHandler = handlers.NewCrawlHandler(a.CrawlerService, a.Config, a.Logger)
	a.PageHandler = handlers.NewPageHandler(a.StorageManager.PageStorage(), a.PDFService, a.Logger)

	a.Logger.Debug().Msg("Handlers initialized")
	return nil
}

// Close shuts down application components in reverse initialization order
func (a *App) Close() error {
	// Close crawler service
	if a.CrawlerService != nil {
		if err := a.CrawlerService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close crawler service")
		}
	}

	// Close event service
	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	// Close storage last
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage manager")
			return err
		}
		a.Logger.Info().Msg("Storage manager closed")
	}

	return nil
}

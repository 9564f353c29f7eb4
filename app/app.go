package app

import (
	"context"
	"fmt"
	"net/http"

	"tshirt-bundle/app/controller"
	"tshirt-bundle/app/router"
	"tshirt-bundle/config"
	"tshirt-bundle/db"
	"tshirt-bundle/logger"
	"tshirt-bundle/models"
	"tshirt-bundle/repository"
	"tshirt-bundle/service"
)

// App is the wired application
type App struct {
	Handler http.Handler
	closers []func()
}

// Close releases the connections opened by Initialize
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config, log logger.ILogger) (*App, error) {
	a := &App{}

	// Card catalog: Postgres when configured, the YAML file otherwise
	var cards repository.CardRepositoryInterface
	if cfg.Database.Connection != "" {
		if err := db.InitDB(ctx, cfg.Database.Connection, log); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.closers = append(a.closers, func() { db.CloseDB() })
		cards = repository.NewCardRepository(log)
	} else {
		log.Info("app", "serving cards from file", map[string]interface{}{"path": cfg.App.CardsFile})
		cards = repository.NewFileCardRepository(cfg.App.CardsFile)
	}

	// Cart update fan-out: in-process listeners plus NATS when configured
	broadcaster := service.NewBroadcaster()
	broadcaster.Subscribe(func(e models.CartUpdateEvent) {
		log.Info("cart", "cart updated", map[string]interface{}{"source": e.SourceID, "items": e.Data.ItemCount})
	})
	notifiers := service.MultiNotifier{broadcaster}
	if cfg.Nats.URL != "" {
		nn, err := service.NewNATSNotifier(cfg.Nats.URL, cfg.Nats.Subject)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, nn.Close)
		notifiers = append(notifiers, nn)
	}

	thumbs := service.NewThumbnailService(cfg.Preview.CacheDir, cfg.Storefront.URL, cfg.Preview.ImageHosts, log)
	if err := thumbs.EnsureCacheDir(); err != nil {
		log.Warn("app", "thumbnail cache unavailable", map[string]interface{}{"error": err.Error()})
	}

	bundleController := controller.NewBundleController(controller.BundleControllerDeps{
		Bundle:    cfg.Bundle,
		Cards:     cards,
		Instances: controller.NewInstanceStore(cfg.App.InstanceTTL),
		Cart:      service.NewCartClient(cfg.Storefront.CartAddURL(), cfg.Storefront.CartTimeout, log),
		Notifier:  notifiers,
		Schedule:  service.AfterFunc,
		CartURL:   cfg.Storefront.CartURL,
		Preview:   service.NewPreviewService(cfg.App.BaseURL, cfg.Preview.ChromePath, log),
		Thumbs:    thumbs,
		Logger:    log,
	})

	mux := http.NewServeMux()
	router.SetupRoutes(mux, &router.Controllers{Bundle: bundleController})
	a.Handler = mux

	log.Info("app", "application initialized", map[string]interface{}{
		"bundle":   cfg.Bundle.ID,
		"size":     cfg.Bundle.Size,
		"price":    cfg.Bundle.PriceCents,
		"cart_add": cfg.Storefront.CartAddURL(),
	})
	return a, nil
}

package di

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/maplecart/api/internal/platform/config"
	"github.com/maplecart/api/internal/platform/media"
	"github.com/maplecart/api/internal/repositories"
	"github.com/maplecart/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon.
type Services struct {
	Catalog       services.CatalogService
	Categories    services.CategoryService
	Customers     services.CustomerService
	Orders        services.OrderService
	Counts        services.CountSynchronizer
	Notifications services.NotificationService
	Media         services.MediaService
}

// Deps carries externally constructed infrastructure into the container.
// EmailPublisher, UploadSigner, and ObjectCopier are optional; the services
// that depend on them degrade gracefully when absent.
type Deps struct {
	Registry       repositories.Registry
	EmailPublisher services.EmailJobPublisher
	UploadSigner   services.UploadURLSigner
	ObjectCopier   services.ObjectCopier
	Logger         *zap.Logger
}

// Container wires repositories, services, and background infrastructure for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services
}

// NewContainer constructs the runtime dependencies. Production wiring provides
// real implementations, tests can supply stub registries and publishers.
func NewContainer(_ context.Context, cfg config.Config, deps Deps) (*Container, error) {
	if deps.Registry == nil {
		return nil, errors.New("repositories registry is required")
	}

	svc, err := buildServices(cfg, deps)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Repositories: deps.Registry,
		Services:     svc,
	}, nil
}

// Close releases resources such as repository clients.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(cfg config.Config, deps Deps) (Services, error) {
	var svc Services
	reg := deps.Registry
	logger := eventLogger(deps.Logger)
	resolver := media.NewResolver(cfg.Media.BaseURL, cfg.Media.Placeholder)

	counts, err := services.NewCountSynchronizer(services.CountSynchronizerDeps{
		Products:   reg.Products(),
		Categories: reg.Categories(),
		Logger:     logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build count synchronizer: %w", err)
	}
	svc.Counts = counts

	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products: reg.Products(),
		Counts:   counts,
		Media:    resolver,
		Logger:   logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build catalog service: %w", err)
	}
	svc.Catalog = catalog

	categories, err := services.NewCategoryService(services.CategoryServiceDeps{
		Categories: reg.Categories(),
		Products:   reg.Products(),
		Counts:     counts,
		Media:      resolver,
		Logger:     logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build category service: %w", err)
	}
	svc.Categories = categories

	customers, err := services.NewCustomerService(services.CustomerServiceDeps{
		Customers: reg.Customers(),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build customer service: %w", err)
	}
	svc.Customers = customers

	// Order emails are optional; without a publisher orders still flow, the
	// notifications are simply skipped.
	if deps.EmailPublisher != nil && cfg.Features.EnableOrderEmails {
		notifications, err := services.NewNotificationService(services.NotificationServiceDeps{
			Publisher: deps.EmailPublisher,
			Logger:    logger,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build notification service: %w", err)
		}
		svc.Notifications = notifications
	}

	orders, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:        reg.Orders(),
		Products:      reg.Products(),
		Customers:     reg.Customers(),
		Counters:      reg.Counters(),
		Notifications: svc.Notifications,
		Logger:        logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build order service: %w", err)
	}
	svc.Orders = orders

	if deps.UploadSigner != nil && deps.ObjectCopier != nil && cfg.Storage.MediaBucket != "" {
		mediaSvc, err := services.NewMediaService(services.MediaServiceDeps{
			Signer:     deps.UploadSigner,
			Copier:     deps.ObjectCopier,
			Products:   reg.Products(),
			Categories: reg.Categories(),
			Bucket:     cfg.Storage.MediaBucket,
			Logger:     logger,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build media service: %w", err)
		}
		svc.Media = mediaSvc
	}

	return svc, nil
}

// eventLogger adapts a zap logger to the event/fields signature used across
// the service layer.
func eventLogger(logger *zap.Logger) func(ctx context.Context, event string, fields map[string]any) {
	if logger == nil {
		return func(context.Context, string, map[string]any) {}
	}
	return func(_ context.Context, event string, fields map[string]any) {
		zapFields := make([]zap.Field, 0, len(fields))
		for key, value := range fields {
			zapFields = append(zapFields, zap.Any(key, value))
		}
		logger.Info(event, zapFields...)
	}
}

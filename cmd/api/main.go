package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/core/apperror"
	"storefront/internal/core/auth"
	"storefront/internal/core/cache"
	"storefront/internal/core/config"
	"storefront/internal/core/docstore"
	"storefront/internal/core/docstore/mongostore"
	"storefront/internal/core/httpclient"
	"storefront/internal/core/httperror"
	"storefront/internal/core/logger"
	"storefront/internal/core/server"
	catalogadapter "storefront/internal/features/catalog/adapters"
	cataloghandler "storefront/internal/features/catalog/handler"
	catalogservice "storefront/internal/features/catalog/service"
	checkoutadapter "storefront/internal/features/checkout/adapters"
	checkoutdomain "storefront/internal/features/checkout/domain"
	checkouthandler "storefront/internal/features/checkout/handler"
	checkoutservice "storefront/internal/features/checkout/service"
	contentadapter "storefront/internal/features/content/adapters"
	contenthandler "storefront/internal/features/content/handler"
	contentservice "storefront/internal/features/content/service"
	messageadapter "storefront/internal/features/messages/adapters"
	messagehandler "storefront/internal/features/messages/handler"
	messageservice "storefront/internal/features/messages/service"
	orderadapter "storefront/internal/features/orders/adapters"
	orderhandler "storefront/internal/features/orders/handler"
	orderservice "storefront/internal/features/orders/service"
	paymenthandler "storefront/internal/features/payments/handler"
	paymentservice "storefront/internal/features/payments/service"
	shippingadapter "storefront/internal/features/shipping/adapters"
	shippingdomain "storefront/internal/features/shipping/domain"
	shippinghandler "storefront/internal/features/shipping/handler"
	shippingservice "storefront/internal/features/shipping/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// @title Storefront API
// @version 1.0
// @description Catalog, page content, checkout, shipping estimates, Mercado Pago reconciliation and order management for the storefront.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("store_driver", cfg.Store.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisAdapter, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisAdapter.Close()

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		l.Fatal("Failed to open document store", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			l.Warn("Failed to close document store", zap.Error(err))
		}
	}()

	// Shipping
	estimator, err := shippingdomain.NewEstimator(cfg.Shipping.OriginPostalCode)
	if err != nil {
		l.Fatal("Invalid shipping origin", zap.Error(err))
	}
	viaCEP := shippingadapter.NewViaCEPAdapter(
		cfg.Shipping.ViaCEPURL,
		httpclient.NewClient("viacep", cfg.HTTPTimeout()),
		redisAdapter,
		cfg.Shipping.PostalCacheTTL(),
	)
	shippingHdl := shippinghandler.NewShippingHandler(shippingservice.NewShippingService(viaCEP, estimator))

	// Checkout
	mercadoPago, err := checkoutadapter.NewMercadoPagoAdapter(cfg.MercadoPago, httpclient.NewClient("mercadopago", cfg.HTTPTimeout()))
	if err != nil {
		l.Fatal("Failed to initialize Mercado Pago client", zap.Error(err))
	}
	checkoutSvc := checkoutservice.NewCheckoutService(checkoutdomain.NewBuilder(cfg.BaseURL), estimator, mercadoPago)
	checkoutHdl := checkouthandler.NewCheckoutHandler(checkoutSvc)

	// Orders
	ledger := orderservice.NewLedger(orderadapter.NewDocstoreOrderRepository(store), store.Counters())
	orderHdl := orderhandler.NewOrderHandler(ledger)

	// Payments
	reconciler := paymentservice.NewReconciler(mercadoPago, ledger, redisAdapter)
	webhookHdl := paymenthandler.NewWebhookHandler(reconciler)

	// Messages
	messageHdl := messagehandler.NewMessageHandler(
		messageservice.NewMessageService(messageadapter.NewDocstoreMessageRepository(store)),
	)

	// Catalog
	catalogHdl := cataloghandler.NewCatalogHandler(catalogservice.NewCatalogService(
		catalogadapter.NewDocstoreProductRepository(store),
		catalogadapter.NewDocstoreCollectionRepository(store),
		catalogadapter.NewDocstoreHighlightRepository(store),
	))

	// Content
	contentHdl := contenthandler.NewContentHandler(contentservice.NewContentService(
		contentadapter.NewDocstorePageRepository(store),
		contentadapter.NewDocstoreCreatorRepository(store),
	))

	srv := server.New(cfg, map[string]server.Pinger{
		"redis": redisAdapter,
		"store": store,
	})

	// Register Routes
	user := auth.Required(cfg.Auth.JWTSecret)
	admin := auth.Admin(cfg.Auth.JWTSecret)

	srv.App.Get("/products", catalogHdl.ListProducts)
	srv.App.Get("/products/:id", catalogHdl.GetProduct)
	srv.App.Get("/collections", catalogHdl.ListCollections)
	srv.App.Get("/collections/:slug", catalogHdl.GetCollection)
	srv.App.Get("/highlights", catalogHdl.ListHighlights)
	srv.App.Post("/admin/products", admin, catalogHdl.CreateProduct)
	srv.App.Get("/admin/products/stream", admin, catalogHdl.StreamProducts)
	srv.App.Put("/admin/products/:id", admin, catalogHdl.UpdateProduct)
	srv.App.Delete("/admin/products/:id", admin, catalogHdl.DeleteProduct)
	srv.App.Post("/admin/collections", admin, catalogHdl.CreateCollection)
	srv.App.Get("/admin/collections/stream", admin, catalogHdl.StreamCollections)
	srv.App.Put("/admin/collections/:id", admin, catalogHdl.UpdateCollection)
	srv.App.Put("/admin/collections/:id/products", admin, catalogHdl.SetCollectionProducts)
	srv.App.Delete("/admin/collections/:id", admin, catalogHdl.DeleteCollection)
	srv.App.Post("/admin/highlights", admin, catalogHdl.AddHighlight)
	srv.App.Delete("/admin/highlights/:productId", admin, catalogHdl.RemoveHighlight)

	srv.App.Get("/content", contentHdl.ListPages)
	srv.App.Get("/content/:page", contentHdl.GetPage)
	srv.App.Get("/creators", contentHdl.ListCreators)
	srv.App.Get("/creators/:slug", contentHdl.GetCreator)
	srv.App.Get("/admin/content/stream", admin, contentHdl.StreamPages)
	srv.App.Put("/admin/content/:page", admin, contentHdl.SavePage)
	srv.App.Delete("/admin/content/:page", admin, contentHdl.DeletePage)
	srv.App.Post("/admin/creators", admin, contentHdl.CreateCreator)
	srv.App.Put("/admin/creators/:id", admin, contentHdl.UpdateCreator)
	srv.App.Delete("/admin/creators/:id", admin, contentHdl.DeleteCreator)

	srv.App.Get("/shipping/postal-codes/:cep", shippingHdl.LookupPostalCode)
	srv.App.Post("/shipping/estimate", shippingHdl.Estimate)

	srv.App.Post("/checkout/preferences", user, checkoutHdl.CreatePreference)
	srv.App.Get("/checkout/payments/:id", user, checkoutHdl.PaymentStatus)

	srv.App.Post(checkoutdomain.NotificationPath, webhookHdl.MercadoPago)

	srv.App.Get("/orders", user, orderHdl.ListMine)
	srv.App.Get("/orders/:id", user, orderHdl.GetMine)
	srv.App.Get("/admin/orders", admin, orderHdl.ListAll)
	srv.App.Get("/admin/orders/stream", admin, orderHdl.Stream)
	srv.App.Patch("/admin/orders/:id/status", admin, orderHdl.UpdateStatus)

	srv.App.Post("/messages", limiter.New(limiter.Config{
		Max:        cfg.Messages.RateLimitPerMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return httperror.Abort(c, http.StatusTooManyRequests, "Too many messages, try again later")
		},
	}), messageHdl.SendMessage)
	srv.App.Get("/admin/messages", admin, messageHdl.ListMessages)
	srv.App.Patch("/admin/messages/:id/read", admin, messageHdl.SetRead)

	go func() {
		<-ctx.Done()
		l.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}

// openStore connects the document store selected by cfg.Driver.
func openStore(ctx context.Context, cfg config.StoreConfig) (docstore.Store, error) {
	switch cfg.Driver {
	case "memory":
		logger.Get().Warn("Using the in-memory document store, data is lost on restart")
		return docstore.NewMemoryStore(), nil
	case "mongo":
	default:
		return nil, fmt.Errorf("%w: unknown STORE_DRIVER %q", apperror.ErrConfiguration, cfg.Driver)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := mongostore.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}
	if err := store.Ping(connectCtx); err != nil {
		_ = store.Close(context.Background())
		return nil, err
	}
	logger.Get().Info("Document store connected", zap.String("database", cfg.MongoDatabase))
	return store, nil
}

package app

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
	"github.com/xenking/kart-checkout/internal/domain/notify"
	"github.com/xenking/kart-checkout/internal/domain/order"
	"github.com/xenking/kart-checkout/internal/gateway/sandbox"
	"github.com/xenking/kart-checkout/internal/handler"
	kafkanotify "github.com/xenking/kart-checkout/internal/notify/kafka"
	"github.com/xenking/kart-checkout/internal/notify/lognotify"
	"github.com/xenking/kart-checkout/internal/storage/memory"
	"github.com/xenking/kart-checkout/internal/storage/postgres"
	"github.com/xenking/kart-checkout/pkg/health"
	"github.com/xenking/kart-checkout/pkg/httpmiddleware"
)

// orderStore is what the service needs from storage: saving for checkout
// and reading for the order endpoint.
type orderStore interface {
	order.Repository
	order.Reader
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("notifier", cfg.Notifier.Driver),
		zap.Bool("postgres", cfg.DatabaseURL != ""),
	)

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Storage.
	var orders orderStore
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		orders = postgres.NewOrderRepository(pool)
	} else {
		lg.Warn("No database configured, orders are kept in memory")
		orders = memory.NewOrderRepository()
	}

	// Collaborators.
	gateway, err := newGateway(cfg.Gateway, cfg.MaxChargeAmount(), lg)
	if err != nil {
		return errors.Wrap(err, "create payment gateway")
	}
	notifier, err := newNotifier(cfg.Notifier, lg)
	if err != nil {
		return errors.Wrap(err, "create notifier")
	}
	if c, ok := notifier.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				lg.Error("Close notifier", zap.Error(err))
			}
		}()
	}

	checkoutService, err := checkout.NewService(gateway, orders, notifier,
		checkout.WithTracerProvider(m.TracerProvider()),
		checkout.WithMeterProvider(m.MeterProvider()),
	)
	if err != nil {
		return errors.Wrap(err, "create checkout service")
	}

	// HTTP.
	api := otelhttp.NewHandler(handler.NewHandler(checkoutService, orders).Routes(), "checkout-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", api)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           withMiddleware(mux, zctx.From(ctx)),
	}
	healthSvc.SetReady(true)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		if ctx.Err() != nil {
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	return g.Wait()
}

// withMiddleware wraps h with the server middleware chain. LogRequests sits
// outside Recovery so that recovered panics still get a request line.
func withMiddleware(h http.Handler, lg *zap.Logger) http.Handler {
	return httpmiddleware.Wrap(h,
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.RequestID(),
		httpmiddleware.LogRequests(),
		httpmiddleware.Recovery(),
	)
}

func newGateway(cfg GatewayConfig, maxAmount decimal.Decimal, lg *zap.Logger) (*sandbox.Gateway, error) {
	blocklist := sandbox.NewBlocklist(cfg.DeclineTokens)
	if cfg.BlocklistFile != "" {
		var err error
		if blocklist, err = sandbox.LoadBlocklist(cfg.BlocklistFile, cfg.DeclineTokens...); err != nil {
			return nil, err
		}
		lg.Info("Loaded payment token blocklist",
			zap.String("file", cfg.BlocklistFile),
			zap.Int("tokens", blocklist.Len()),
		)
	}
	return sandbox.New(sandbox.Config{
		Blocklist: blocklist,
		MaxAmount: maxAmount,
	}), nil
}

func newNotifier(cfg NotifierConfig, lg *zap.Logger) (notify.Notifier, error) {
	switch cfg.Driver {
	case NotifierKafka:
		return kafkanotify.New(kafkanotify.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		}, lg.Named("kafka"))
	default:
		return lognotify.New(lg.Named("email")), nil
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/idem"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

func main() {
	cfg := config.LoadStorefront()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if cfg.AutoMigrate {
		if err := db.AutoMigrate(models.All()...); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	r := repo.New(db)
	gateway := payment.NewStripeGateway(cfg.Stripe, &http.Client{Timeout: 15 * time.Second})

	var events service.EventPublisher
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers, cfg.ServiceName)
		events = producer
	} else {
		logger.Warn("kafka disabled, domain events are not published")
	}

	var rdb *redis.Client
	finalizer := &service.Finalizer{Repo: r, Gateway: gateway, Events: events, Metrics: m}
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		finalizer.Cache = idem.New(rdb, cfg.IdemTTL)
	}
	var mailer *notify.Mailer
	if cfg.SMTP.Addr != "" {
		mailer = notify.NewMailer(cfg.SMTP)
	}
	// Without a broker nobody consumes order.finalized, so mail is sent in-process.
	if producer == nil && mailer != nil {
		finalizer.Notifier = &notify.OrderNotifier{Sender: mailer, Admins: cfg.Admins}
	}

	cart := &service.CartService{Repo: r, Events: events, Metrics: m}
	finalizer.Cart = cart

	catalog := &service.CatalogService{Repo: r, Events: events}
	if cfg.Search.URL != "" {
		es, err := search.NewClient(cfg.Search, nil)
		if err != nil {
			log.Fatalf("elasticsearch client: %v", err)
		}
		catalog.Index = search.New(es, cfg.Search.Index)
	}

	auth := &service.AuthService{
		Repo:                 r,
		JWTSecret:            cfg.JWTAccessSecret,
		RefreshSecret:        cfg.JWTRefreshSecret,
		BaseURL:              cfg.AppBaseURL,
		RequireVerifiedEmail: cfg.RequireVerifiedEmail,
	}
	if mailer != nil {
		auth.Mailer = mailer
	} else {
		logger.Warn("smtp disabled, account verification and password reset mail is not sent")
	}

	deps := &httpserver.Deps{
		Auth:    &httpserver.AuthHTTP{Svc: auth},
		Cart:    &httpserver.CartHTTP{Svc: cart},
		Catalog: &httpserver.CatalogHTTP{Svc: catalog},
		Orders: &httpserver.OrderHTTP{
			Finalizer: finalizer,
			Svc:       &service.OrderService{Repo: r, Events: events},
			Checkout:  &service.CheckoutService{Repo: r, Gateway: gateway},
		},
		Address: &httpserver.AddressHTTP{Svc: &service.AddressService{Repo: r}},
		AuthMW:  middleware.NewAutoRefreshMiddleware(cfg.JWTAccessSecret, auth),
		Metrics: m,
		Ready: func(ctx context.Context) error {
			if err := pkgdb.Ping(ctx, db); err != nil {
				return err
			}
			if rdb != nil {
				return rdb.Ping(ctx).Err()
			}
			return nil
		},
	}
	if cfg.CSRFEnabled {
		c := csrf.DefaultConfig()
		deps.CSRF = &c
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger, "/health/live", "/health/ready", "/metrics"))
	e.Use(echomw.CORS())
	e.Use(m.Middleware())

	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("storefront listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	finalizer.Drain()

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka producer close", "error", err)
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	_ = pkgdb.Close(db)

	logger.Info("storefront stopped")
}

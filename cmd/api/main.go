package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"paybridge/internal/config"
	"paybridge/internal/database"
	"paybridge/internal/domain"
	"paybridge/internal/metrics"
	"paybridge/internal/middleware"
	"paybridge/internal/modules/health"
	"paybridge/internal/modules/payment"
	"paybridge/internal/pkg/logger"
	"paybridge/internal/pkg/xendit"
	"paybridge/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		lg.Fatal("database connect failed", zap.Error(err))
	}
	// bookings belong to the frontend's database; only the local SQLite store is created here
	if !database.IsPostgres(cfg.DatabaseURL) {
		if err := db.AutoMigrate(&domain.Booking{}); err != nil {
			lg.Fatal("sqlite migrate failed", zap.Error(err))
		}
	}

	xc, err := xendit.NewClient(xendit.Config{
		SecretKey: cfg.XenditSecretKey,
		BaseURL:   cfg.XenditBaseURL,
		Timeout:   cfg.ProviderTimeout,
	})
	if err != nil {
		lg.Fatal("xendit client init failed", zap.Error(err))
	}
	if cfg.XenditCallbackToken == "" {
		lg.Warn("XENDIT_CALLBACK_TOKEN is empty: webhook deliveries are not authenticated")
	}

	metrics.Register(prometheus.DefaultRegisterer)

	bookingRepo := repository.NewBookingRepository(db)
	paymentService := payment.NewService(xc, bookingRepo, lg.Named("payment"), payment.Options{
		FrontendURL: cfg.FrontendURL,
		Currency:    cfg.PaymentCurrency,
	})
	paymentHandler := payment.NewHandler(paymentService, lg.Named("payment"), payment.HandlerOptions{
		CallbackToken:  cfg.XenditCallbackToken,
		CallbackHeader: cfg.CallbackTokenHeader(),
	})
	healthHandler := health.NewHandler(func(ctx context.Context) error { return database.Ping(ctx, db) })
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(lg),
		middleware.AccessLog(lg.Named("http")),
		middleware.Metrics(),
		middleware.CORS(cfg.AllowedOrigins()),
	)

	healthHandler.RegisterRoutes(r)
	paymentHandler.RegisterRoutes(r, limiter.Middleware(lg))
	metrics.RegisterRoutes(r, prometheus.DefaultGatherer)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
	lg.Info("server stopped")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"travelagency/internal/auth"
	"travelagency/internal/cache"
	intconfig "travelagency/internal/config"
	intdb "travelagency/internal/db"
	router "travelagency/internal/http"
	"travelagency/internal/http/handlers"
	"travelagency/internal/i18n"
	"travelagency/internal/mailer"
	"travelagency/internal/payments"
	"travelagency/internal/storage"
	"travelagency/internal/telemetry"
	"travelagency/internal/utils"
)

func main() {
	env := intconfig.LoadEnv()
	if err := env.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	logger := utils.InitLogger(utils.LoggerOptions{
		Level:      env.Log.Level,
		File:       env.Log.File,
		MaxSizeMB:  env.Log.MaxSizeMB,
		MaxBackups: env.Log.MaxBackups,
		MaxAgeDays: env.Log.MaxAgeDays,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}

	db, err := intconfig.ConnectDB(env.DB)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer intconfig.CloseDB()

	if env.DB.AutoMigrate {
		if err := migrateUp(env.DB.MySQLDSN()); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	reg := telemetry.NewRegistry()
	publicCache, err := cache.New("public", env.Cache.Size, env.Cache.TTL, reg)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	webhookEvents, err := telemetry.NewWebhookCounter(reg)
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	bundle, err := i18n.New(env.I18n.DefaultLocale, env.I18n.Dir)
	if err != nil {
		log.Fatalf("i18n: %v", err)
	}
	if err := bundle.Watch(ctx); err != nil {
		logger.Warn("i18n hot reload disabled", "error", err)
	}

	var gateway payments.Gateway
	if env.Stripe.SecretKey != "" {
		gateway = payments.NewStripeGateway(env.Stripe.SecretKey)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, checkout is disabled")
	}

	var store storage.Storage
	if env.Storage.Endpoint != "" {
		store, err = storage.NewMinIO(ctx, env.Storage)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
	} else {
		logger.Warn("MINIO_ENDPOINT not set, uploads are disabled")
	}

	hd := &handlers.Handler{
		DB:            db,
		Env:           env,
		Cache:         publicCache,
		Sessions:      auth.NewSessions(env.Session),
		Gateway:       gateway,
		Webhooks:      payments.NewWebhookVerifier(env.Stripe.WebhookSecret),
		Storage:       store,
		Mailer:        mailer.New(env.Mail),
		I18n:          bundle,
		WebhookEvents: webhookEvents,
	}

	r, err := router.NewRouter(env, hd, reg)
	if err != nil {
		log.Fatalf("router: %v", err)
	}

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           otelhttp.NewHandler(r, "http.server"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", env.AppAddr, "env", env.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("tracing shutdown failed", "error", err)
		}
	}
	logger.Info("server stopped")
}

func migrateUp(dsn string) error {
	mg, err := intdb.OpenMigrator(dsn)
	if err != nil {
		return err
	}
	defer mg.Close()
	if err := mg.Up(); err != nil {
		return err
	}
	v, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	utils.LogEvent("", "db", "migrate", fmt.Sprintf("schema at version %d (dirty=%t)", v, dirty))
	return nil
}

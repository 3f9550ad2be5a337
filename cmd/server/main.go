package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"formbridge/internal/airtable"
	authHandler "formbridge/internal/auth/handler"
	"formbridge/internal/auth/secrets"
	authService "formbridge/internal/auth/service"
	authStore "formbridge/internal/auth/store"
	"formbridge/internal/events"
	formHandler "formbridge/internal/form/handler"
	formService "formbridge/internal/form/service"
	formStore "formbridge/internal/form/store"
	"formbridge/internal/jwttoken"
	"formbridge/internal/platform/config"
	"formbridge/internal/platform/httpserver"
	"formbridge/internal/platform/logger"
	"formbridge/internal/platform/metrics"
	"formbridge/internal/platform/redis"
	responseHandler "formbridge/internal/response/handler"
	responseService "formbridge/internal/response/service"
	responseStore "formbridge/internal/response/store"
	httptransport "formbridge/internal/transport/http"
	webhookHandler "formbridge/internal/webhook/handler"
	webhookService "formbridge/internal/webhook/service"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	m := metrics.New()

	users, forms, responses, db, err := buildStores(cfg)
	if err != nil {
		log.Error("store init failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, err := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	if err != nil {
		log.Error("kafka init failed", "error", err)
		os.Exit(1)
	}

	sealer, err := secrets.NewSealer(cfg.TokenSealKey)
	if err != nil {
		log.Error("sealer init failed", "error", err)
		os.Exit(1)
	}

	jwtSvc := jwttoken.NewService(cfg.JWTSigningKey, "formbridge", "formbridge-api")
	provider := airtable.NewClient(airtable.WithMetrics(m))

	var oauth authService.CodeExchanger
	if cfg.AirtableClientID != "" {
		oauth = airtable.NewOAuth(cfg.AirtableClientID, cfg.AirtableClientSecret, cfg.AirtableRedirectURI)
	}

	auth, err := authService.New(users, oauth, provider, jwtSvc, sealer, log)
	if err != nil {
		log.Error("auth service init failed", "error", err)
		os.Exit(1)
	}

	schemaCache := airtable.NewSchemaCache(redisClient, config.SchemaCacheTTL, log)
	formSvc, err := formService.New(forms, auth, provider, schemaCache, m,
		cfg.BackendURL+"/api/webhooks/airtable", log)
	if err != nil {
		log.Error("form service init failed", "error", err)
		os.Exit(1)
	}

	responseSvc, err := responseService.New(responses, formSvc, auth, provider, publisher, m, log)
	if err != nil {
		log.Error("response service init failed", "error", err)
		os.Exit(1)
	}

	webhookSvc, err := webhookService.New(responses, forms, publisher, m, log)
	if err != nil {
		log.Error("webhook service init failed", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.Handlers{
		Auth:      authHandler.New(auth, cfg.FrontendURL, jwtSvc, log),
		Forms:     formHandler.New(formSvc, jwtSvc, log),
		Responses: responseHandler.New(responseSvc, jwtSvc, log),
		Webhooks:  webhookHandler.New(webhookSvc, log),
	}, m, log)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting formbridge", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := publisher.Close(ctx); err != nil {
		log.Warn("event flush failed", "error", err)
	}
}

// buildStores returns postgres-backed stores when a DSN is configured, and
// in-memory stores otherwise. All three stores share one connection pool.
func buildStores(cfg config.Server) (authService.UserStore, formStoreIface, responseStoreIface, *sql.DB, error) {
	if cfg.PostgresDSN == "" {
		return authStore.NewInMemory(), formStore.NewInMemory(), responseStore.NewInMemory(), nil, nil
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, nil, nil, err
	}

	return authStore.NewPostgres(db), formStore.NewPostgres(db), responseStore.NewPostgres(db), db, nil
}

// The store interfaces consumed by more than one service.
type formStoreIface interface {
	formService.FormStore
	webhookService.FormLoader
}

type responseStoreIface interface {
	responseService.ResponseStore
	webhookService.ResponseStore
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ErickCaburnay/B-Sphere-sub001/internal/events"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/jwttoken"
	notifyservice "github.com/ErickCaburnay/B-Sphere-sub001/internal/notify/service"
	notificationstore "github.com/ErickCaburnay/B-Sphere-sub001/internal/notify/store/notification"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/platform/config"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/platform/httpserver"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/platform/logger"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/platform/metrics"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/platform/postgres"
	platformredis "github.com/ErickCaburnay/B-Sphere-sub001/internal/platform/redis"
	"github.com/ErickCaburnay/B-Sphere-sub001/internal/request/cache"
	requesthandler "github.com/ErickCaburnay/B-Sphere-sub001/internal/request/handler"
	requestservice "github.com/ErickCaburnay/B-Sphere-sub001/internal/request/service"
	requeststore "github.com/ErickCaburnay/B-Sphere-sub001/internal/request/store/request"
	residentstore "github.com/ErickCaburnay/B-Sphere-sub001/internal/resident/store/resident"
	sequencehandler "github.com/ErickCaburnay/B-Sphere-sub001/internal/sequence/handler"
	sequenceservice "github.com/ErickCaburnay/B-Sphere-sub001/internal/sequence/service"
	counterstore "github.com/ErickCaburnay/B-Sphere-sub001/internal/sequence/store/counter"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	if err != nil {
		log.Error("kafka connection failed", "error", err)
		os.Exit(1)
	}
	if publisher != nil {
		defer publisher.Close()
	}

	// Stores: postgres when configured, otherwise in-memory for local runs.
	var (
		counters  sequenceservice.CounterStore
		requests  requestservice.RequestStore
		residents requestservice.ResidentStore
		notistore notifyservice.Store
	)
	if db != nil {
		counters = counterstore.NewPostgres(db)
		requests = requeststore.NewPostgres(db)
		residents = residentstore.NewPostgres(db)
		notistore = notificationstore.NewPostgres(db)
	} else {
		log.Warn("BSPHERE_POSTGRES_URL not set, using in-memory stores")
		counters = counterstore.NewMemory()
		requests = requeststore.NewMemory()
		residents = residentstore.NewMemory()
		notistore = notificationstore.NewMemory()
	}

	var view cache.StatusView = cache.NewMemory()
	if redisClient != nil {
		view = cache.NewRedis(redisClient)
	}

	notifier := notifyservice.New(notistore,
		notifyservice.WithLogger(log),
		notifyservice.WithEventPublisher(nilSafePublisher(publisher)),
	)
	sequences := sequenceservice.New(counters,
		sequenceservice.WithLogger(log),
		sequenceservice.WithMetrics(m),
		sequenceservice.WithEventPublisher(nilSafePublisher(publisher)),
	)
	workflow := requestservice.New(requests, residents, notifier,
		requestservice.WithLogger(log),
		requestservice.WithMetrics(m),
		requestservice.WithStatusView(view),
		requestservice.WithEventPublisher(nilSafePublisher(publisher)),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "b-sphere", "b-sphere-admin")

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	requesthandler.New(workflow, log, m, jwtService).Register(router)
	sequencehandler.New(sequences, log, m, jwtService).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting b-sphere records core", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// nilSafePublisher keeps the typed-nil *KafkaPublisher out of the services'
// interface fields when event publishing is not configured.
func nilSafePublisher(p *events.KafkaPublisher) events.Publisher {
	if p == nil {
		return nil
	}
	return p
}

package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m04kA/SMC-ScoringAPI/internal/api/dispatcher"
	"github.com/m04kA/SMC-ScoringAPI/internal/api/handlers"
	"github.com/m04kA/SMC-ScoringAPI/internal/api/handlers/health"
	"github.com/m04kA/SMC-ScoringAPI/internal/api/handlers/list_audit"
	"github.com/m04kA/SMC-ScoringAPI/internal/api/handlers/method"
	"github.com/m04kA/SMC-ScoringAPI/internal/api/middleware"
	"github.com/m04kA/SMC-ScoringAPI/internal/auth"
	"github.com/m04kA/SMC-ScoringAPI/internal/config"
	"github.com/m04kA/SMC-ScoringAPI/internal/infra/storage/audit"
	"github.com/m04kA/SMC-ScoringAPI/internal/infra/storage/interests"
	"github.com/m04kA/SMC-ScoringAPI/internal/service/scoring"
	"github.com/m04kA/SMC-ScoringAPI/internal/worker"
	"github.com/m04kA/SMC-ScoringAPI/pkg/logger"
	"github.com/m04kA/SMC-ScoringAPI/pkg/metrics"
	"github.com/m04kA/SMC-ScoringAPI/pkg/txmanager"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to TOML config")
	port := flag.Int("port", 0, "HTTP port, overrides server.http_port")
	logFile := flag.String("log", "", "log file, overrides logs.file")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.HTTPPort = *port
	}
	if *logFile != "" {
		cfg.Logs.File = *logFile
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ScoringAPI...")
	log.Info("Configuration loaded from %s", *configPath)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeoutDuration(),
		ReadTimeout:  cfg.Redis.ReadTimeoutDuration(),
		WriteTimeout: cfg.Redis.WriteTimeoutDuration(),
	})
	store := interests.NewStore(redisClient, log, cfg.Redis.MaxRetry, cfg.Redis.RetryDelayDuration())
	defer store.Close()

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.Connect(connectCtx); err != nil {
		// Сервис стартует и без redis: clients_interests вернет 500, скоринг считается без кэша
		log.Error("Redis is unavailable at %s: %v", cfg.Redis.Addr, err)
	} else {
		log.Info("Successfully connected to redis (%s, db=%d)", cfg.Redis.Addr, cfg.Redis.DB)
	}
	cancelConnect()

	healthDeps := map[string]health.Pinger{"redis": store}

	// Аудит: буфер с периодическим сбросом в PostgreSQL или запись в лог
	var (
		auditSink      scoring.AuditSink
		auditRepo      *audit.Repository
		auditScheduler *worker.Scheduler
	)

	if cfg.Database.Enabled {
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		auditRepo = audit.NewRepository(db)
		buffer := worker.NewAuditBuffer(cfg.Audit.BufferSize, log, metricsCollector)
		auditScheduler = worker.NewScheduler(
			buffer,
			auditRepo,
			txmanager.NewTransactionManager(db),
			log,
			metricsCollector,
			time.Duration(cfg.Audit.FlushInterval)*time.Second,
			cfg.Audit.BatchSize,
			cfg.Audit.Retention(),
		)
		if err := auditScheduler.Start(); err != nil {
			log.Fatal("Failed to start audit scheduler: %v", err)
		}

		auditSink = buffer
		healthDeps["postgres"] = pingerFunc(db.PingContext)
	} else {
		auditSink = worker.NewLogSink(log)
		log.Info("Audit database disabled, audit records go to the log")
	}

	// Инициализируем сервисы
	authenticator := auth.New(cfg.Auth.Salt, cfg.Auth.AdminSalt)
	scoringSvc := scoring.NewService(store, store, auditSink, log, time.Now)

	apiDispatcher := dispatcher.NewDispatcher(authenticator, log, metricsCollector)
	apiDispatcher.Register(scoring.MethodOnlineScore, scoringSvc.OnlineScore)
	apiDispatcher.Register(scoring.MethodClientsInterests, scoringSvc.ClientsInterests)
	log.Info("Scoring methods registered: %s, %s", scoring.MethodOnlineScore, scoring.MethodClientsInterests)

	// Инициализируем handlers
	healthHandler := health.NewHandler(healthDeps, log)
	methodHandler := method.NewHandler(apiDispatcher, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.NotFoundHandler = handlers.NotFoundHandler()
	r.MethodNotAllowedHandler = handlers.MethodNotAllowedHandler()

	r.Use(middleware.RequestIDMiddleware(log))
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")
	}

	// Публичные endpoints
	r.HandleFunc("/method", methodHandler.Handle).Methods(http.MethodPost)
	r.HandleFunc("/health", healthHandler.Handle).Methods(http.MethodGet)

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API v1 endpoints
	if auditRepo != nil {
		api := r.PathPrefix("/api/v1").Subrouter()
		api.HandleFunc("/audit", list_audit.NewHandler(auditRepo, log).Handle).Methods(http.MethodGet)
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Планировщик останавливается после сервера, чтобы сбросить аудит последних запросов
	if auditScheduler != nil {
		auditScheduler.Stop()
	}

	log.Info("Server stopped gracefully")
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

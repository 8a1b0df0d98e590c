package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	chatWebhookHandler "github.com/goodgood52099-bit/XFWH-BOT/internal/api/handlers/chat_webhook"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/api/middleware"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/config"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/infra/daystore"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/infra/storage"
	dayRepo "github.com/goodgood52099-bit/XFWH-BOT/internal/infra/storage/day"
	groupRepo "github.com/goodgood52099-bit/XFWH-BOT/internal/infra/storage/group"
	pendingRepo "github.com/goodgood52099-bit/XFWH-BOT/internal/infra/storage/pending"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/integrations/botapi"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/scheduler"
	bookingsService "github.com/goodgood52099-bit/XFWH-BOT/internal/service/bookings"
	groupsService "github.com/goodgood52099-bit/XFWH-BOT/internal/service/groups"
	notifyService "github.com/goodgood52099-bit/XFWH-BOT/internal/service/notify"
	pendingService "github.com/goodgood52099-bit/XFWH-BOT/internal/service/pending"
	scheduleService "github.com/goodgood52099-bit/XFWH-BOT/internal/service/schedule"
	"github.com/goodgood52099-bit/XFWH-BOT/internal/service/staffassign"
	handleCallbackUC "github.com/goodgood52099-bit/XFWH-BOT/internal/usecase/handle_callback"
	handleMessageUC "github.com/goodgood52099-bit/XFWH-BOT/internal/usecase/handle_message"
	pendingReplyUC "github.com/goodgood52099-bit/XFWH-BOT/internal/usecase/pending_reply"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/dbmetrics"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/logger"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/metrics"
	"github.com/goodgood52099-bit/XFWH-BOT/pkg/simpletxmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting XFWH-BOT...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Применяем миграции
	if err := storage.ApplyMigrations(context.Background(), db); err != nil {
		log.Fatal("Failed to apply migrations: %v", err)
	}
	log.Info("Database migrations applied")

	// Часовой пояс бизнес-дня
	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		log.Fatal("Failed to load timezone %s: %v", cfg.Schedule.Timezone, err)
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		dayRepository     *dayRepo.Repository
		groupRepository   *groupRepo.Repository
		pendingRepository *pendingRepo.Repository
		txMgr             *simpletxmanager.TransactionManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		dayRepository = dayRepo.NewRepository(wrappedDB)
		groupRepository = groupRepo.NewRepository(wrappedDB)
		pendingRepository = pendingRepo.NewRepository(wrappedDB)
		txMgr = simpletxmanager.NewTransactionManagerWithBeginner(wrappedDB)
	} else {
		dayRepository = dayRepo.NewRepository(db)
		groupRepository = groupRepo.NewRepository(db)
		pendingRepository = pendingRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Коалесцер записи дневных документов
	store := daystore.NewStore(dayRepository, log)
	store.Start()
	log.Info("Day document write coalescer started")

	// Клиент Bot API
	botClient := botapi.NewClient(
		cfg.Bot.APIURL,
		cfg.Bot.Token,
		time.Duration(cfg.Bot.Timeout)*time.Second,
		log,
	)

	// Инициализируем сервисы
	scheduleSvc := scheduleService.NewService(
		store,
		log,
		loc,
		cfg.Schedule.OpenHour,
		cfg.Schedule.CloseHour,
		cfg.Schedule.DefaultCapacity,
	)
	bookingSvc := bookingsService.NewService(store, log)
	pendingSvc := pendingService.NewService(pendingRepository, log)
	groupSvc := groupsService.NewService(groupRepository, txMgr, cfg.Admin, log)
	tracker := staffassign.NewTracker()
	notifySvc := notifyService.NewService(groupSvc, botClient, metricsCollector, log)

	// Инициализируем use cases
	pendingReplyUseCase := pendingReplyUC.NewUseCase(
		scheduleSvc,
		bookingSvc,
		pendingSvc,
		tracker,
		notifySvc,
		botClient,
		log,
	)
	handleCallbackUseCase := handleCallbackUC.NewUseCase(
		scheduleSvc,
		bookingSvc,
		pendingSvc,
		tracker,
		notifySvc,
		botClient,
		log,
	)
	handleMessageUseCase := handleMessageUC.NewUseCase(
		groupSvc,
		pendingSvc,
		pendingReplyUseCase,
		scheduleSvc,
		bookingSvc,
		botClient,
		log,
	)

	// Инициализируем handlers
	chatWebhook := chatWebhookHandler.NewHandler(handleMessageUseCase, handleCallbackUseCase, log)

	// Фоновые циклы: публикации, опрос прибытия, ежедневный сброс, очистка диалогов
	backgroundScheduler := scheduler.New(
		scheduleSvc,
		notifySvc,
		botClient,
		pendingSvc,
		tracker,
		dayRepository,
		log,
		cfg.Schedule.AnnounceFrom,
		cfg.Schedule.AnnounceUntil,
	)
	backgroundScheduler.Start()

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")

		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Webhook Bot API
	r.HandleFunc("/webhook", chatWebhook.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
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

	backgroundScheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дописываем очередь коалесцера перед закрытием базы
	store.Close()
	log.Info("Day document write coalescer drained")

	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	log.Info("Server stopped gracefully")
}

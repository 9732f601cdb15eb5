package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/config"
	"github.com/xavierca1/ligue-imoveis/internal/infra/audit"
	"github.com/xavierca1/ligue-imoveis/internal/infra/cache"
	"github.com/xavierca1/ligue-imoveis/internal/infra/database"
	"github.com/xavierca1/ligue-imoveis/internal/infra/logger"
	"github.com/xavierca1/ligue-imoveis/internal/infra/mail"
	"github.com/xavierca1/ligue-imoveis/internal/infra/ocr"
	"github.com/xavierca1/ligue-imoveis/internal/infra/queue"
	"github.com/xavierca1/ligue-imoveis/internal/infra/storage"
	"github.com/xavierca1/ligue-imoveis/internal/infra/worker"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

var version = "dev"

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "ligue-imoveis-api")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	// Login attempts: Redis when configured, otherwise per-process memory.
	var attempts usecase.AttemptStore = cache.NewMemoryAttemptStore()
	var redisStore *cache.RedisAttemptStore
	if cfg.RedisAddr != "" {
		redisStore = cache.NewRedisAttemptStore(cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB))
		if err := redisStore.Ping(ctx); err != nil {
			log.Warn("redis unreachable, using in-memory login attempts", zap.Error(err))
			redisStore = nil
		} else {
			attempts = redisStore
		}
	}

	var publisher usecase.NotificationPublisher
	var rabbitMQ *queue.RabbitMQ
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Warn("rabbitmq unavailable, notifications will be sent inline", zap.Error(err))
		} else {
			defer rabbitMQ.Close()
			publisher = queue.NewProducer(rabbitMQ.Ch)
		}
	}

	var auditSink usecase.AuditSink = audit.NewLogSink(log)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaAuditTopic, log)
		defer kafkaSink.Close()
		auditSink = kafkaSink
	}

	awsSession, err := storage.NewSession(cfg.AWSRegion)
	if err != nil {
		log.Fatal("aws session failed", zap.Error(err))
	}

	renderer, err := mail.NewRenderer()
	if err != nil {
		log.Fatal("email templates failed to parse", zap.Error(err))
	}
	mailer := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)

	// Repositories
	users := database.NewUserRepository(db)
	properties := database.NewPropertyRepository(db)
	tenants := database.NewTenantRepository(db)
	cheques := database.NewChequeRepository(db)
	leads := database.NewLeadRepository(db)
	quotations := database.NewQuotationRepository(db)
	expenses := database.NewExpenseRepository(db)
	workOrders := database.NewWorkOrderRepository(db)
	documents := database.NewDocumentRepository(db)
	compliance := database.NewComplianceRepository(db)
	notifications := database.NewNotificationRepository(db)
	dashboard := database.NewDashboardRepository(db)

	// Use cases
	auditLogger := usecase.NewAuditLogger(auditSink, log)
	hasher := usecase.BcryptHasher{}
	notificationSvc := usecase.NewNotificationService(notifications, renderer, mailer, publisher, log)

	svc := services{
		Auth:          usecase.NewAuthService(users, usecase.NewLoginAttemptTracker(attempts), hasher, auditLogger, cfg.JWTSecret, cfg.JWTTTL, log),
		Users:         usecase.NewUserService(users, hasher, notificationSvc, auditLogger, log),
		Properties:    usecase.NewPropertyService(properties, auditLogger),
		Tenants:       usecase.NewTenantService(tenants, properties, cheques, notificationSvc, auditLogger, log),
		Leads:         usecase.NewLeadService(leads, auditLogger),
		Quotations:    usecase.NewQuotationService(quotations, leads, properties, tenants, cheques, notificationSvc, auditLogger, log),
		Expenses:      usecase.NewExpenseService(expenses, properties, workOrders, notificationSvc, auditLogger, cfg.FinanceEmail, log),
		WorkOrders:    usecase.NewWorkOrderService(workOrders, properties, users, notificationSvc, auditLogger, log),
		Compliance:    usecase.NewComplianceService(compliance, auditLogger),
		Dashboard:     usecase.NewDashboardService(dashboard),
		Identity:      usecase.NewIdentityService(ocr.NewTextractDetector(awsSession), log),
		Notifications: notificationSvc,
	}
	if cfg.S3Bucket != "" {
		svc.Documents = usecase.NewDocumentService(documents, storage.NewS3Store(awsSession, cfg.S3Bucket), auditLogger, log)
	} else {
		log.Warn("S3_BUCKET not set, document endpoints disabled")
	}

	// Background workers
	go worker.NewNotificationRetryWorker(notificationSvc, cfg.NotificationRetryInterval, log).Start(ctx)
	go worker.NewQuotationExpiryWorker(svc.Quotations, cfg.QuotationExpiryInterval, log).Start(ctx)
	if rabbitMQ != nil {
		consumer := queue.NewWorker(rabbitMQ.Ch, notificationSvc, log)
		go func() {
			if err := consumer.Start(ctx, queue.QueueName); err != nil {
				log.Error("notification consumer stopped", zap.Error(err))
			}
		}()
	}

	health := &healthDeps{db: db}
	if redisStore != nil {
		health.redis = redisStore
	}
	if rabbitMQ != nil {
		health.rabbitMQ = rabbitMQ.Healthy
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(ctx, cfg, log, svc, health),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", cfg.HTTPAddr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

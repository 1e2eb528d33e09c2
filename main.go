// File: vetflow/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vetflow/config"
	"vetflow/cron"
	"vetflow/database"
	bookingRepo "vetflow/database/repository/booking"
	consumableRepo "vetflow/database/repository/consumable"
	directoryRepo "vetflow/database/repository/directory"
	messageRepo "vetflow/database/repository/message"
	quotaRepo "vetflow/database/repository/quota"
	recordsRepo "vetflow/database/repository/records"
	reminderRepo "vetflow/database/repository/reminder"
	"vetflow/handlers"
	"vetflow/middleware"
	"vetflow/routes"
	"vetflow/services/billing"
	"vetflow/services/booking"
	"vetflow/services/inbox"
	"vetflow/services/intelligence"
	"vetflow/services/notification"
	"vetflow/services/quota"
	"vetflow/services/reminders"
	"vetflow/services/scheduling"
	"vetflow/services/tasks"
	"vetflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	mongoClient, err := database.InitDB(ctx)
	if err != nil {
		logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
	}
	cacheRedis, err := utils.NewRedisClient(ctx, cfg.RedisCacheDB)
	if err != nil {
		logger.Fatal("main: failed to connect to cache Redis", zap.Error(err))
	}
	lockRedis, err := utils.NewRedisClient(ctx, cfg.RedisLockDB)
	if err != nil {
		logger.Fatal("main: failed to connect to lock Redis", zap.Error(err))
	}
	stripe.Key = cfg.StripeKey

	// repositories.
	db := database.DB()
	bookings := bookingRepo.NewMongoBookingRepo(db)
	reminderStore := reminderRepo.NewMongoReminderRepo(db)
	consumables := consumableRepo.NewMongoConsumableRepo(db)
	quotas := quotaRepo.NewMongoQuotaRepo(db)
	messages := messageRepo.NewMongoMessageRepo(db)
	directory := directoryRepo.NewMongoDirectoryRepo(db)
	records := recordsRepo.NewMongoRecordRepo(db)

	indexers := map[string]interface{ EnsureIndexes(context.Context) error }{
		"bookings":  bookings,
		"reminders": reminderStore,
		"quotas":    quotas,
		"messages":  messages,
		"directory": directory,
	}
	for name, repo := range indexers {
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warn("main: failed to ensure indexes", zap.String("collection", name), zap.Error(err))
		}
	}

	// text generation.
	var generator intelligence.Generator
	var gemini *intelligence.GeminiClient
	if cfg.GeminiAPIKey != "" {
		gemini, err = intelligence.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("main: text generation disabled", zap.Error(err))
		} else {
			generator = gemini
		}
	} else {
		logger.Info("main: GEMINI_API_KEY not set, using message templates")
	}
	renderer := intelligence.NewRenderer(generator, time.Duration(cfg.GenerationTimeoutSec)*time.Second, logger)
	history := intelligence.NewRedisContextStore(cacheRedis, 30*time.Minute)

	// delivery.
	whatsApp := notification.NewWhatsAppClient(cfg, logger)
	var deliverer notification.Deliverer = whatsApp
	if cfg.DeliveryChannel == config.ChannelFCM {
		fcm := notification.NewFCMDeliverer(nil, "VetFlow", logger)
		if cfg.FirebaseCredentialsFile != "" {
			client, err := utils.FirebaseMessaging(ctx, cfg.FirebaseCredentialsFile)
			if err != nil {
				logger.Warn("main: FCM not configured", zap.Error(err))
			} else {
				fcm.Sender = client
			}
		}
		deliverer = fcm
	}

	// services.
	ledger := quota.NewLedger(quotas, logger)
	searcher := scheduling.NewSearcher(bookings, directory, time.Duration(cfg.SlotConflictWindowMin)*time.Minute, logger)
	enqueuer := tasks.NewAsynqEnqueuer(utils.QueueRedisOpt())

	bookingService := &booking.DefaultBookingService{
		Repo:      bookings,
		Records:   records,
		Reminders: reminderStore,
		Directory: directory,
		Messages:  messages,
		Searcher:  searcher,
		Tasks:     enqueuer,
		Deliverer: deliverer,
		Logger:    logger,
	}

	sweeper := &reminders.Sweeper{
		Bookings:    bookings,
		Reminders:   reminderStore,
		Consumables: consumables,
		Directory:   directory,
		Messages:    messages,
		Ledger:      ledger,
		Renderer:    renderer,
		Deliverer:   deliverer,
		Window:      time.Duration(cfg.ReminderWindowHours) * time.Hour,
		Logger:      logger,
	}

	inboxService := &inbox.Service{
		Directory: directory,
		Messages:  messages,
		Ledger:    ledger,
		Renderer:  renderer,
		History:   history,
		Booking:   bookingService,
		Deliverer: whatsApp,
		Logger:    logger,
	}

	topUps := billing.NewTopUpProcessor(cfg.StripeWebhookSecret, ledger, &billing.RedisEventLog{Client: cacheRedis}, logger)

	// background work.
	lockTTL := time.Duration(cfg.JobLockTTLMin) * time.Minute
	jobs := cron.NewJobs(sweeper, ledger, logger)
	scheduler := cron.NewScheduler(jobs.Definitions(*cfg), cron.NewRedisLocker(lockRedis, logger), lockTTL, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error("main: some jobs were not scheduled", zap.Error(err))
	}

	worker := cron.NewWorker(utils.QueueRedisOpt(), bookingService, logger)
	worker.Start(ctx)

	utils.StartHealthMonitor(ctx, 30*time.Second, []*redis.Client{cacheRedis, lockRedis}, mongoClient)

	// handlers.
	appointmentHandler := handlers.NewAppointmentHandler(bookingService, logger)
	quotaHandler := handlers.NewQuotaHandler(ledger)
	adminHandler := handlers.NewAdminHandler(scheduler)
	whatsAppHandler := handlers.NewWhatsAppHandler(inboxService, cfg.WhatsAppVerifyToken, logger)
	stripeHandler := handlers.NewStripeHandler(topUps, logger)

	handlerBundle := &handlers.HandlerBundle{
		JWTSecret: []byte(cfg.JWTSecret),
		Health:    handlers.HealthHandler(utils.GetHealthStatus),

		CheckAvailability: appointmentHandler.CheckAvailability,
		NextSlot:          appointmentHandler.NextSlot,
		CreateAppointment: appointmentHandler.Create,
		CancelAppointment: appointmentHandler.Cancel,
		RecordHealthEvent: appointmentHandler.RecordHealthEvent,
		SubjectHistory:    appointmentHandler.SubjectHistory,

		GetQuota:        quotaHandler.Get,
		OpenQuotaPeriod: quotaHandler.OpenPeriod,
		ResetQuota:      quotaHandler.Reset,

		ListJobs: adminHandler.ListJobs,
		RunJob:   adminHandler.RunJob,

		WhatsAppVerify:  whatsAppHandler.Verify,
		WhatsAppReceive: whatsAppHandler.Receive,
		StripeWebhook:   stripeHandler.Webhook,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin, logger))

	routes.RegisterRoutes(router, handlerBundle, logger)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}

	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("main: jobs still running at shutdown")
	}
	stop()
	worker.Shutdown()

	if err := enqueuer.Close(); err != nil {
		logger.Warn("main: failed to close task client", zap.Error(err))
	}
	if gemini != nil {
		_ = gemini.Close()
	}
	_ = cacheRedis.Close()
	_ = lockRedis.Close()
	if err := database.Close(shutdownCtx); err != nil {
		logger.Warn("main: failed to disconnect MongoDB", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

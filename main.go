// File: campusbook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusbook/config"
	"campusbook/cron"
	"campusbook/database"
	"campusbook/database/store"
	"campusbook/handlers"
	"campusbook/middleware"
	"campusbook/routes"
	"campusbook/services/appointment"
	"campusbook/services/clearance"
	"campusbook/services/events"
	"campusbook/services/ledger"
	"campusbook/services/notification"
	"campusbook/services/role"
	"campusbook/services/tasks"
	"campusbook/services/username"
	"campusbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()
	utils.InitEventBus()
	utils.FirebaseInit()

	cld, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Storage and event plumbing.
	docStore := store.NewMongoStore(database.MongoClient, config.AppConfig.DatabaseName)
	bus := events.NewRedisBus(utils.GetEventBusClient(), logger)

	// Core services.
	slotLedger := ledger.New(config.AppConfig.DailyCapacity)
	notificationService := notification.NewService(docStore, utils.FCMClient, logger)

	reminderClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	defer reminderClient.Close()

	appointmentService := appointment.NewService(
		docStore, slotLedger, bus, logger, config.AppConfig.MaxActiveAppointments)
	appointmentService.Reminders = &tasks.ReminderScheduler{Client: reminderClient}

	usernameService := username.NewService(docStore)

	roleResolver := role.NewResolver(
		config.AppConfig.StudentEmailDomains,
		config.AppConfig.CashierEmails,
		config.AppConfig.AdminEmails)
	provisioner := role.NewProvisioner(docStore, roleResolver, utils.AuthClient, logger)

	clearanceService := clearance.NewService(docStore, &clearance.CloudinaryUploader{Cld: cld})

	// Defensive change-notification mirror: re-applies ledger bookkeeping
	// from published appointment events, idempotently.
	mirror := events.NewSlotMirror(docStore, slotLedger, logger, notificationService)
	bus.Subscribe(mirror.Handle)

	busCtx, stopBus := context.WithCancel(context.Background())
	defer stopBus()
	go bus.Run(busCtx)

	// Background reminder worker.
	cron.InitReminderWorker(notificationService)

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Appointments: handlers.NewAppointmentHandler(appointmentService),
		Usernames:    handlers.NewUsernameHandler(usernameService),
		Slots:        handlers.NewSlotsHandler(docStore, config.AppConfig.DailyCapacity),
		Permits:      handlers.NewPermitHandler(clearanceService),
		Users:        handlers.NewUserHandler(docStore, provisioner),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"fieldops-backend/internal/auth"
	"fieldops-backend/internal/backup"
	"fieldops-backend/internal/cache"
	"fieldops-backend/internal/config"
	"fieldops-backend/internal/database"
	"fieldops-backend/internal/db"
	"fieldops-backend/internal/handlers"
	"fieldops-backend/internal/health"
	apihttp "fieldops-backend/internal/http"
	"fieldops-backend/internal/middleware"
	"fieldops-backend/internal/monitoring"
	"fieldops-backend/internal/repositories"
	"fieldops-backend/internal/services"
	"fieldops-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional - login falls back to bcrypt-only
	if err := cache.Init(cfg); err != nil {
		log.Printf("[Redis] Cache unavailable: %v", err)
	} else {
		log.Println("[Redis] Cache connected")
	}

	// Run embedded migrations so a fresh database is usable immediately
	log.Println("Running database migrations...")
	migrator := database.NewMigratorWithFS(pool, migrations.FS, ".")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	healthChecker := health.NewHealthChecker(pool, cache.GetClient())

	// Ops side-server (stats + alert websocket) on its own port
	go monitoring.NewServer(pool, cfg.Server.MonitoringPort).Start()

	// Nightly pg_dump to R2; no-op when credentials are absent
	go backup.NewScheduler(cfg).Run(context.Background())

	jwtManager := auth.NewJWTManager(cfg)

	userRepo := repositories.NewUserRepository(pool)
	totpRepo := repositories.NewTOTPRepository(pool)
	inventoryRepo := repositories.NewInventoryRepository(pool)
	invoiceRepo := repositories.NewInvoiceRepository(pool)
	wasteRepo := repositories.NewWasteRepository(pool)
	drumRepo := repositories.NewDrumRepository(pool)
	lineRepo := repositories.NewLineRepository(pool)
	payrollRepo := repositories.NewPayrollRepository(pool)
	notificationRepo := repositories.NewNotificationRepository(pool)
	exportJobRepo := repositories.NewExportJobRepository(pool)

	notificationService := services.NewNotificationService(notificationRepo)
	userService := services.NewUserService(userRepo, jwtManager)
	totpService := services.NewTOTPService(userRepo, totpRepo, jwtManager)
	inventoryService := services.NewInventoryService(inventoryRepo, notificationService)
	invoiceService := services.NewInvoiceService(invoiceRepo, inventoryService)
	wasteService := services.NewWasteService(wasteRepo, inventoryService)
	drumService := services.NewDrumService(drumRepo, notificationService)
	lineService := services.NewLineService(lineRepo)
	payrollService := services.NewPayrollService(payrollRepo, userRepo, lineRepo, notificationService)
	dashboardService := services.NewDashboardService(inventoryRepo, drumRepo, lineRepo, payrollRepo)
	reportService := services.NewReportService(payrollRepo, inventoryRepo, wasteRepo, exportJobRepo, cfg.Export.Dir)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)

	router := apihttp.NewRouter(
		cfg,
		handlers.NewAuthHandler(userService, totpService),
		handlers.NewUserHandler(userService),
		handlers.NewTOTPHandler(totpService, userService),
		handlers.NewInventoryHandler(inventoryService),
		handlers.NewInvoiceHandler(invoiceService),
		handlers.NewWasteHandler(wasteService),
		handlers.NewDrumHandler(drumService),
		handlers.NewLineHandler(lineService),
		handlers.NewPayrollHandler(payrollService),
		handlers.NewNotificationHandler(notificationService),
		handlers.NewDashboardHandler(dashboardService),
		handlers.NewReportHandler(reportService, payrollService),
		handlers.NewHealthHandler(healthChecker),
		authMiddleware,
	)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server listening on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

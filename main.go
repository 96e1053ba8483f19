package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guesthouse-backend/config"
	"guesthouse-backend/controllers"
	"guesthouse-backend/routes"
	"guesthouse-backend/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Config load failed: %v", err)
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	log.Println("✅ Database connection established and migrations applied.")

	// Initialize services
	sender := services.NewChannelSender(cfg.SMTP)
	if !cfg.SMTP.Enabled() {
		log.Println("⚠️  SMTP not configured; email notifications are logged only")
	}
	tokens := services.NewTokenService(cfg.Auth.JWTSecretKey, cfg.Auth.TokenTTL())
	occupancy := services.NewOccupancyService(db)
	billing := services.NewBillingService(db, sender)

	// Initialize controllers
	handlers := routes.Handlers{
		Auth:          controllers.NewAuthController(services.NewAuthService(db, tokens)),
		Users:         controllers.NewUserController(services.NewUserService(db)),
		Rooms:         controllers.NewRoomController(services.NewRoomService(db)),
		Guests:        controllers.NewGuestController(services.NewGuestService(db), occupancy),
		Payments:      controllers.NewPaymentController(services.NewPaymentService(db), billing),
		Notifications: controllers.NewNotificationController(services.NewNotificationService(db, sender), billing, cfg.Billing.ReminderDaysBefore),
		Dashboard:     controllers.NewDashboardController(services.NewReportService(db)),
	}

	router := routes.SetupRouter(handlers, tokens, cfg.CORS)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("✅ Server stopped gracefully")
}

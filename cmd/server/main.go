package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chriskamgang/MyINSAM-Resto/internal/config"
	"github.com/chriskamgang/MyINSAM-Resto/internal/coupon"
	"github.com/chriskamgang/MyINSAM-Resto/internal/handlers"
	"github.com/chriskamgang/MyINSAM-Resto/internal/money"
	"github.com/chriskamgang/MyINSAM-Resto/internal/repository"
	"github.com/chriskamgang/MyINSAM-Resto/internal/service"
	"github.com/chriskamgang/MyINSAM-Resto/pkg/logger"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting sandbox ordering api",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Coupons: built-in rules, optionally extended from files or URLs
	catalog := coupon.NewCatalog(coupon.DefaultRules())
	if len(cfg.Coupon.Files) > 0 {
		log.Info("loading coupon data...", "sources", len(cfg.Coupon.Files))
		if err := catalog.LoadSources(ctx, cfg.Coupon.Files); err != nil {
			log.Error("failed to load coupon data", "error", err)
			os.Exit(1)
		}
	}
	stats := catalog.GetStats()
	log.Info("coupon data loaded",
		"total_files", stats["total_files"],
		"total_coupons", stats["total_coupons"],
	)

	// Initialize repositories
	menuRepo := repository.NewInMemoryMenuRepository(repository.RestaurantSeed{
		ID:          cfg.Restaurant.ID,
		Latitude:    cfg.Restaurant.Latitude,
		Longitude:   cfg.Restaurant.Longitude,
		DeliveryFee: money.Amount(cfg.Restaurant.DeliveryFee),
	})
	userRepo := repository.NewInMemoryUserRepository()
	orderRepo := repository.NewInMemoryOrderRepository()

	// Initialize services
	profileService := service.NewProfileService(userRepo, log)
	orderService := service.NewOrderService(menuRepo, orderRepo, userRepo, catalog, profileService,
		service.OrderConfig{PrepTime: cfg.Restaurant.PrepTime}, log)
	paymentService := service.NewPaymentService(orderRepo, orderService, log)

	router := handlers.NewRouter(handlers.Services{
		Auth:     service.NewAuthService(userRepo, 0, log),
		Menu:     service.NewMenuService(menuRepo),
		Orders:   orderService,
		Payments: paymentService,
		Profile:  profileService,
		Coupons:  catalog,
	}, handlers.RouterOptions{
		Sandbox:       cfg.Sandbox.Routes,
		AuthPerMinute: cfg.Server.AuthPerMinute,
		AuthBurst:     cfg.Server.AuthBurst,
	}, log)

	if cfg.Sandbox.Tick > 0 {
		sim := service.NewSimulator(orderService, paymentService, orderRepo, log)
		task := sim.Start(ctx, cfg.Sandbox.Tick)
		defer task.Stop()
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return
	}

	log.Info("server stopped gracefully")
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"cinestream/api"
	"cinestream/config"
	"cinestream/handlers"
	"cinestream/internal/database"
	"cinestream/internal/metrics"
	"cinestream/services/availability"
	"cinestream/services/catalog"
	"cinestream/services/metadata"
	"cinestream/services/recommendations"
	"cinestream/services/scheduler"
	"cinestream/utils"
)

func main() {
	configPath := flag.String("config", "data/settings.json", "path to the settings file")
	flag.Parse()

	cfgManager, err := config.NewManager(*configPath)
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	settings := cfgManager.Get()

	if settings.Server.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   settings.Server.LogFile,
			MaxSize:    settings.Server.LogMaxSizeMB,
			MaxBackups: settings.Server.LogMaxBackups,
			Compress:   true,
		}))
	}

	db, err := database.NewDB(database.Config{DatabasePath: settings.Database.Path})
	if err != nil {
		log.Fatalf("[main] failed to open database: %v", err)
	}
	defer db.Close()

	catalogRepo := database.NewCatalogRepository(db.Connection())
	preferenceRepo := database.NewPreferenceRepository(db.Connection())

	metadataSvc := metadata.NewService(
		settings.Metadata.APIKey,
		settings.Metadata.Language,
		settings.Metadata.CacheDir,
		settings.Metadata.CacheTTLHours,
	)
	availabilitySvc := availability.NewService(
		settings.Provider.BaseURL,
		settings.Provider.CacheTTLMinutes,
	)
	catalogSvc := catalog.NewService(catalogRepo, metadataSvc, availabilitySvc)
	recommendationsSvc := recommendations.NewService(preferenceRepo)

	schedulerSvc := scheduler.NewService(catalogSvc, availabilitySvc,
		settings.Maintenance.SyncIntervalHours, settings.Maintenance.BatchSize)
	schedulerSvc.Start(context.Background())

	catalogHandler := handlers.NewCatalogHandler(catalogSvc, availabilitySvc)
	recommendationsHandler := handlers.NewRecommendationsHandler(recommendationsSvc)
	maintenanceHandler := handlers.NewMaintenanceHandler(catalogSvc, cfgManager)

	router := utils.NewRouter()
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/browse", catalogHandler.Browse).Methods(http.MethodGet)
	apiRouter.HandleFunc("/items/{id}", catalogHandler.Item).Methods(http.MethodGet)
	apiRouter.HandleFunc("/availability", catalogHandler.Availability).Methods(http.MethodGet)
	apiRouter.HandleFunc("/preferences/track", recommendationsHandler.Track).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/preferences", recommendationsHandler.Preferences).Methods(http.MethodGet)

	// Resolution can fan out to the metadata provider, so it gets a per-IP cap.
	resolveLimiter := api.NewIPRateLimiter(rate.Every(2*time.Second), 30)
	apiRouter.HandleFunc("/resolve",
		api.RateLimitHandlerFunc(resolveLimiter, catalogHandler.Resolve)).Methods(http.MethodGet)

	maintenanceRouter := apiRouter.PathPrefix("/maintenance").Subrouter()
	maintenanceRouter.Use(api.MaintenanceSecretMiddleware(func() string {
		return cfgManager.Get().Maintenance.Secret
	}))
	maintenanceRouter.HandleFunc("/sync-metadata", maintenanceHandler.SyncMetadata).Methods(http.MethodPost, http.MethodOptions)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", settings.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // the sync pass can run long
	}

	go func() {
		log.Printf("[main] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	schedulerSvc.Stop(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
}

package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"cinetrack/api"
	"cinetrack/config"
	"cinetrack/handlers"
	"cinetrack/internal/database"
	"cinetrack/internal/timeparse"
	"cinetrack/services/binge"
	"cinetrack/services/gcal"
	"cinetrack/services/library"
	"cinetrack/services/scheduler"
	"cinetrack/services/scheduling"
	"cinetrack/services/tmdb"
	"cinetrack/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   cfg.LogPath,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}))

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("timezone %q: %v", cfg.Timezone, err)
	}

	db, err := database.NewDB(database.Config{DatabasePath: cfg.DatabasePath})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	mediaRepo := database.NewMediaRepository(db.Connection())
	historyRepo := database.NewHistoryRepository(db.Connection())
	watchlistRepo := database.NewWatchlistRepository(db.Connection())

	responseCache := tmdb.NewFileCache(afero.NewOsFs(), cfg.CacheDir, cfg.CacheTTL)
	tmdbClient := tmdb.NewClient(cfg.TMDBAPIKey, cfg.TMDBLanguage,
		tmdb.NewHTTPClient(cfg.PinTMDBHost), responseCache, mediaRepo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	calendarSvc, err := gcal.NewService(ctx, cfg.GoogleCredentialsPath, cfg.GoogleTokenPath)
	if err != nil {
		log.Fatalf("calendar: %v", err)
	}

	parser := timeparse.New(loc)
	librarySvc := library.NewService(tmdbClient, historyRepo, watchlistRepo)
	bingeSvc := binge.NewService(tmdbClient, calendarSvc, parser)
	schedulingSvc := scheduling.NewService(tmdbClient, calendarSvc, parser)

	maintenance := scheduler.NewService(responseCache, cfg.CachePruneInterval)
	if err := maintenance.Start(ctx); err != nil {
		log.Fatalf("maintenance: %v", err)
	}

	router := utils.NewRouter()
	router.Use(api.RequestIDMiddleware())
	router.Use(api.LoggingMiddleware())

	limiter := api.NewIPRateLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimitPerMinute)), cfg.RateLimitPerMinute)
	router.Use(api.RateLimitMiddleware(limiter))

	tools := handlers.NewToolsHandler(librarySvc, bingeSvc, schedulingSvc)
	tools.Register(router)
	router.HandleFunc("/calendar.ics", handlers.NewFeedHandler(calendarSvc).Serve).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] server shutdown: %v", err)
	}
	if err := maintenance.Stop(shutdownCtx); err != nil {
		log.Printf("[main] maintenance shutdown: %v", err)
	}
}

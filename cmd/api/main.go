package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/unionhub/unionhub-api/internal/auth"
	"github.com/unionhub/unionhub-api/internal/config"
	"github.com/unionhub/unionhub-api/internal/domain/biblestudy"
	"github.com/unionhub/unionhub-api/internal/handlers"
	"github.com/unionhub/unionhub-api/internal/logger"
	"github.com/unionhub/unionhub-api/internal/realtime"
	"github.com/unionhub/unionhub-api/internal/server"
	"github.com/unionhub/unionhub-api/internal/services"
	"github.com/unionhub/unionhub-api/internal/storage/objectstore"
	"github.com/unionhub/unionhub-api/internal/storage/postgres"
)

func main() {
	cfg := config.Load()
	logger.Initialize(cfg.Log.Level)
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	strategy, err := biblestudy.ParseStrategy(cfg.BibleStudy.Strategy)
	if err != nil {
		log.Fatal("Invalid Bible study configuration", "error", err)
	}

	container, err := postgres.NewContainer(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}
	defer func() {
		if err := container.CloseWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()

	hub := realtime.NewHub(
		realtime.WithAdmission(realtime.NewRateLimiter(cfg.Realtime.PublishRate, cfg.Realtime.PublishBurst)),
		realtime.WithQueueSize(cfg.Realtime.QueueSize),
	)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	var verifier realtime.Authenticator = auth.TrustingVerifier{}
	deps := server.Deps{Database: container}
	if cfg.AuthEnabled() {
		jwtVerifier := auth.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		verifier = jwtVerifier
		deps.Tokens = jwtVerifier
	} else {
		log.Warn("JWT_SECRET is not set; websocket identities are trusted and admin routes are open")
	}

	bibleStudy := services.NewBibleStudyService(container.Registrations(), hub, cfg.BibleStudy.DefaultGroupSize, strategy)
	elections := services.NewElectionService(container.Elections(), container.Nominations(), container.ElectionResults(), hub)

	deps.Realtime = handlers.NewRealtimeHandler(hub, verifier, realtime.NewUpgrader(config.SplitList(cfg.Realtime.AllowedOrigins)), realtime.ClientConfig{
		SendBuffer:     cfg.Realtime.SendBuffer,
		MaxMessageSize: cfg.Realtime.MaxMessageSize,
		WriteWait:      cfg.Realtime.WriteWait,
		PongWait:       cfg.Realtime.PongWait,
	})
	deps.BibleStudy = handlers.NewBibleStudyHandler(bibleStudy)
	deps.Elections = handlers.NewElectionHandler(elections)

	if cfg.StorageEnabled() {
		store, err := objectstore.New(objectstore.Options{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err == nil {
			err = store.EnsureBucket(ctx)
		}
		if err != nil {
			log.Error("Gallery storage unavailable", "error", err)
		} else {
			deps.Gallery = handlers.NewGalleryHandler(store, hub, cfg.Storage.MaxUploadSize)
		}
	}

	srv := server.New(cfg, deps)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.Error("HTTP server stopped", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Failed to stop HTTP server", "error", err)
	}

	stopHub()
	select {
	case <-hub.Done():
	case <-shutdownCtx.Done():
		log.Warn("Realtime hub did not stop in time")
	}

	log.Info("Server exited")
}

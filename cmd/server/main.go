package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	router "github.com/Yash-Kunal/scriptly-deploy/internal/adapters/http"
	signaladapter "github.com/Yash-Kunal/scriptly-deploy/internal/adapters/signal"
	"github.com/Yash-Kunal/scriptly-deploy/internal/app"
	"github.com/Yash-Kunal/scriptly-deploy/internal/app/orch"
	"github.com/Yash-Kunal/scriptly-deploy/internal/config"
	"github.com/Yash-Kunal/scriptly-deploy/internal/storage/mongostore"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	mongoCtx, mongoCancel := context.WithTimeout(ctx, 10*time.Second)
	defer mongoCancel()
	client, err := mongo.Connect(mongoCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	if err := client.Ping(mongoCtx, nil); err != nil {
		log.Fatal().Err(err).Msg("failed to ping mongo")
	}
	store := mongostore.New(client.Database(cfg.MongoDB))

	tracker := signaladapter.NewRoomTracker()
	registry := app.NewRoomRegistry()
	admission := app.NewAdmissionController(registry, tracker, cfg.RoomCapacity)
	orchestrator := &orch.Orchestrator{
		Registry:  registry,
		Admission: admission,
		Transport: tracker,
		Store:     store,
	}
	ctl := signaladapter.NewController(orchestrator, tracker, cfg.ReadLimit, cfg.PingPeriod)

	r := router.SetupRouter(ctx, cfg, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("scriptly server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect")
	}
	log.Info().Msg("server exited gracefully")
}

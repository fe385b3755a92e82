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

	router "github.com/rgutzeit/plausch/internal/adapters/http"
	wssignal "github.com/rgutzeit/plausch/internal/adapters/signal"
	"github.com/rgutzeit/plausch/internal/app"
	"github.com/rgutzeit/plausch/internal/app/moderation"
	"github.com/rgutzeit/plausch/internal/app/orch"
	"github.com/rgutzeit/plausch/internal/config"
	"github.com/rgutzeit/plausch/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	reg := app.NewRegistry(cfg.GuestPrefix)
	rooms := app.NewRoomDirectory(domain.RoomName(cfg.MainRoom))
	bans := app.NewBanList()

	ctl := wssignal.NewController(cfg)
	engine := moderation.NewEngine(reg, bans, ctl)

	o := &orch.Orchestrator{
		Reg:         reg,
		Rooms:       rooms,
		Bans:        bans,
		Mod:         engine,
		Notify:      ctl,
		OwnerSecret: cfg.OwnerSecret,
	}
	ctl.Bind(o)

	r := router.SetupRouter(ctx, cfg, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Str("main_room", cfg.MainRoom).Msg("Plausch server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

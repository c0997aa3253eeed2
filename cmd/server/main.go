package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Arvi89/planning-taki/config"
	"github.com/Arvi89/planning-taki/db"
	"github.com/Arvi89/planning-taki/handlers"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	scales, err := cfg.Game.LoadScales()
	if err != nil {
		return err
	}
	rules, err := cfg.Game.Rules(scales)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create the registry and the hub that owns it
	store := db.NewStore(rules, scales)
	dispatcher := handlers.NewDispatcher(store, log.Named("dispatch"))
	hub := handlers.NewHub(dispatcher, cfg.WebSocket.InboxSize, cfg.Game.SweepInterval, log.Named("hub"))
	go hub.Run(ctx)

	gin.SetMode(cfg.Server.GinMode)
	roomHandler := handlers.NewRoomHandler(hub, cfg.WebSocket, log.Named("ws"))
	router := handlers.NewRouter(cfg.Server.StaticDir, roomHandler, log.Named("http"))

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server",
			zap.String("addr", cfg.Server.Addr),
			zap.String("static", cfg.Server.StaticDir),
			zap.String("scale", rules.Scale.Name))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

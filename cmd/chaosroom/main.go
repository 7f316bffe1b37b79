package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chaosroom/config"
	"chaosroom/network"
	"chaosroom/room"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := room.NewRegistry(cfg.TickHz, room.Options{Format: cfg.WireFormat, Logger: log})
	driverDone := make(chan struct{})
	go func() {
		reg.Run(ctx)
		close(driverDone)
	}()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           network.NewServer(reg, cfg, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("chaos room server listening", "addr", srv.Addr, "tick_hz", cfg.TickHz, "format", cfg.WireFormat.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", "err", err)
	}
	<-driverDone
}

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
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"trend-collector/internal/api"
	"trend-collector/internal/app"
	"trend-collector/internal/config"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default $TREND_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "startup:", err)
		os.Exit(1)
	}
	defer a.Close()
	l := a.Log

	if cfg.Collection.Background {
		a.Service.StartBackgroundCollection(cfg.Collection.IntervalHours)
	}

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(api.New(a.Service, l).Handler(), "trend-collector"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute, // POST /api/collect runs a full pass
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		l.Infof("server listening on %s", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	l.Infof("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	l.Infof("bye")
}

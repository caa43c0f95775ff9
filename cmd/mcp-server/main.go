package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/biasharahq/platform/internal/mcpserver"
	"github.com/biasharahq/platform/internal/metrics"
)

func main() {
	var (
		apiURL      = flag.String("api", "http://localhost:8090", "Core API base URL")
		addr        = flag.String("addr", ":8091", "Listen address")
		metricsAddr = flag.String("metrics-addr", "", "Prometheus metrics listen address (empty disables)")
		logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)

	if envURL := os.Getenv("MCP_API_URL"); envURL != "" {
		*apiURL = envURL
	}
	if envAddr := os.Getenv("MCP_ADDR"); envAddr != "" {
		*addr = envAddr
	}

	srv := mcpserver.New(*apiURL, logger)

	if envMetrics := os.Getenv("MCP_METRICS_ADDR"); envMetrics != "" {
		*metricsAddr = envMetrics
	}
	if *metricsAddr != "" {
		metricsSrv := metrics.NewServer(*metricsAddr)
		go func() {
			logger.Info().Str("addr", *metricsAddr).Msg("metrics server starting")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:         *addr,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info().Str("addr", *addr).Str("api", *apiURL).Msg("MCP server starting")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-done
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}

	fmt.Println("MCP server stopped")
}

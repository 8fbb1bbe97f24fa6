package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketDash/internal/config"
	dashusecase "marketDash/internal/modules/dashboard/application/usecase"
	dashinfra "marketDash/internal/modules/dashboard/infrastructure"
	dashtransport "marketDash/internal/modules/dashboard/interface"
	fwdusecase "marketDash/internal/modules/forwarder/application/usecase"
	fwdinfra "marketDash/internal/modules/forwarder/infrastructure"
	fwdtransport "marketDash/internal/modules/forwarder/interface"
	"marketDash/internal/platform/broker"
	"marketDash/internal/shared/logging"
)

func main() {
	// Attempt to load variables from .env so local runs honour configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, logger, err := setupLogging(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))

	resources, err := config.LoadResources(cfg.ResourcesFile)
	if err != nil {
		slog.Error("resources load failed", slog.String("file", cfg.ResourcesFile), slog.Any("error", err))
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	resourcePaths := make([]string, 0, len(resources))
	for _, resource := range resources {
		resourcePaths = append(resourcePaths, resource.Path)
	}
	metrics, err := fwdinfra.NewMetrics(registry, resourcePaths...)
	if err != nil {
		slog.Error("metrics setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Forwarder
	upstream := fwdinfra.NewUpstreamHTTPClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	forwardUC := fwdusecase.NewForwardUseCase(upstream, cfg.Upstream.APIKey, metrics)

	// Dashboard stores fetch through the forwarder like any other client.
	storeOpts := make([]dashusecase.Option, 0, 1)
	publisher := broker.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if publisher != nil {
		storeOpts = append(storeOpts, dashusecase.WithPublisher(publisher))
		defer publisher.Close()
	}
	slog.Info("kafka config resolved", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("topic", cfg.Kafka.Topic), slog.Bool("enabled", publisher != nil))

	fetcher := dashinfra.NewForwarderHTTPClient(cfg.Forwarder.BaseURL, cfg.Forwarder.APIKey, cfg.Forwarder.Timeout)
	dashboard, err := dashusecase.NewDashboard(resources, fetcher, storeOpts...)
	if err != nil {
		slog.Error("dashboard setup failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer dashboard.Close()
	sessionFactory := func() (*dashusecase.Dashboard, error) {
		return dashusecase.NewDashboard(resources, fetcher, storeOpts...)
	}
	hub := dashinfra.NewHub()

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "ok", "sessions": hub.Sessions()})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))
	fwdtransport.RegisterRoutes(e, forwardUC)
	dashtransport.RegisterRoutes(e, dashboard, hub, sessionFactory)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.Any("error", err))
		}
	}()
	slog.Info("server listening", slog.String("port", cfg.Server.Port), slog.String("upstream", cfg.Upstream.BaseURL), slog.String("forwarder", cfg.Forwarder.BaseURL))

	// Wait for a termination signal.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down", slog.Int("sessions", hub.Sessions()))
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		slog.Warn("graceful shutdown failed", slog.Any("error", err))
		e.Close()
	}
}

func setupLogging(cfg config.LoggingConfig) (*os.File, *slog.Logger, error) {
	dir := cfg.Directory
	if dir == "" {
		dir = "./logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	fileName := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".log")
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	writer := io.MultiWriter(os.Stdout, file)
	logger := logging.New(writer, logging.Config{
		Level:       cfg.Level,
		Format:      cfg.Format,
		AddSource:   true,
		RedactAttrs: []string{"key", "apiKey"},
	})

	log.SetOutput(writer)
	log.SetFlags(0)
	log.SetPrefix("")

	return file, logger, nil
}

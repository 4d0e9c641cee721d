package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/novabank/payportal/pkg"
	"github.com/novabank/payportal/pkg/views"
	"github.com/novabank/payportal/services/notification-worker/configs"
	"github.com/novabank/payportal/services/notification-worker/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// main initializes and runs the notification worker service.
func main() {
	pkg.InitLogger()
	logger := pkg.Logger
	defer logger.Sync()

	cfg, err := configs.Load(logger)
	if err != nil {
		logger.Fatal("failed_to_load_config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics endpoint for scraping; the worker has no other HTTP surface
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}
	go func() {
		logger.Info("metrics server started", zap.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("metrics server error", zap.Error(err))
		}
	}()

	mailer := services.NewSMTPMailer(logger, cfg)
	processor := services.NewNotificationService(logger, cfg, mailer)

	retryChannel := make(chan views.NotificationJob)

	consumer := services.NewKafkaNotificationConsumer(services.KafkaNotificationConfig{
		Context:      ctx,
		Logger:       logger,
		Config:       cfg,
		Processor:    processor,
		RetryChannel: retryChannel,
	})
	closeConsumer := consumer.Start()

	retryHandler := services.NewRetryHandler(services.RetryConfig{
		Context:      ctx,
		Logger:       logger,
		Config:       cfg,
		Processor:    processor,
		RetryChannel: retryChannel,
		DeadLetter:   consumer.DeadLetter,
	})
	retryHandler.Start()

	// Handle graceful shutdown on SIGINT or SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	osSignal := <-sigChan
	logger.Info("Received shutdown signal", zap.String("signal", osSignal.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	cancel()
	closeConsumer()
	close(retryChannel)
	_ = metricsSrv.Shutdown(shutdownCtx)
	logger.Info("Service shutdown completed successfully")
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/api"
	"github.com/d60-Lab/social-feed/internal/api/handler"
	"github.com/d60-Lab/social-feed/internal/api/middleware"
	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/logger"
	"github.com/d60-Lab/social-feed/pkg/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	sentryOn := a.initSentry()
	if sentryOn {
		defer sentry.Flush(2 * time.Second)
	}

	sink, err := a.notifier()
	if err != nil {
		return err
	}
	dispatcher := service.NewDispatcher(sink, cfg.Dispatcher.QueueSize, cfg.Dispatcher.Timeout)
	stopDispatcher := dispatcher.Start(cfg.Dispatcher.Workers)

	feedCache := a.feedCache(ctx)
	var invalidator service.FeedInvalidator
	if feedCache != nil {
		invalidator = feedCache
	}
	accounts := a.accounts(dispatcher)
	h := handler.New(
		service.NewGraphService(a.store, invalidator),
		service.NewMessageService(a.store, invalidator, cfg.Message.MaxLength),
		service.NewEngagementService(a.store, invalidator),
		service.NewFeedService(a.store, feedCache),
		accounts,
	)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go func() {
			t := time.NewTicker(time.Minute)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case now := <-t.C:
					limiter.Cleanup(now)
				}
			}
		}()
	}

	router := api.NewRouter(h, accounts, api.Options{
		ServiceName: cfg.Tracing.ServiceName,
		Tracing:     cfg.Tracing.Enabled,
		Sentry:      sentryOn,
		RateLimiter: limiter,
		Health:      a.store,
		Swagger:     cfg.Server.Mode != gin.ReleaseMode,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := stopDispatcher(shutdownCtx); err != nil {
		logger.Warn("dispatcher shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/speak-coach/backend/internal/app"
	"github.com/zhouzirui/speak-coach/backend/internal/config"
	"github.com/zhouzirui/speak-coach/backend/internal/handler"
	"github.com/zhouzirui/speak-coach/backend/internal/handler/ui"
	"github.com/zhouzirui/speak-coach/backend/internal/logging"
	"github.com/zhouzirui/speak-coach/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Log.Level)
	if envErr != nil {
		logger.WithError(envErr).Warn("failed to load .env file, continuing with system environment variables only")
	}

	services, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to initialize services: %v", err)
	}

	router, err := handler.NewRouter(handler.Dependencies{
		Logger:       logger,
		Tutors:       services.Tutors,
		Sessions:     services.Sessions,
		Coach:        services.Coach,
		DefaultTutor: cfg.Chat.DefaultTutor,
		UI: ui.Options{
			DefaultTutor:  cfg.Chat.DefaultTutor,
			ListenSeconds: cfg.Speech.ListenSeconds,
			SpeechEnabled: services.Speech.Configured(),
			LLMReady:      cfg.LLM.Configured(),
		},
	})
	if err != nil {
		logger.Fatalf("failed to build router: %v", err)
	}

	go purgeIdleSessions(ctx, services.Sessions, cfg.Chat.IdleTimeout, logger)

	startServer(ctx, cfg.Server, router, logger)
}

// purgeIdleSessions 定期清理长时间未活动的会话
func purgeIdleSessions(ctx context.Context, sessions *chat.Service, idle time.Duration, logger *logrus.Logger) {
	if idle <= 0 {
		return
	}

	interval := idle / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := sessions.PurgeIdle(ctx, now.Add(-idle)); removed > 0 {
				logger.WithField("removed", removed).Info("purged idle sessions")
			}
		}
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *logrus.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Infof("Speak Coach backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

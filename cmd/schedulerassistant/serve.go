package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scheduler-assistant/internal/bot"
	"scheduler-assistant/internal/httpapi"
	"scheduler-assistant/internal/realtime"
	"scheduler-assistant/internal/repository"
	"scheduler-assistant/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, live updates and background jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg, log := a.cfg, a.log

	db, err := repository.NewDB(cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	eventRepo := repository.NewEventRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	pomodoroRepo := repository.NewPomodoroRepository(db)

	hub := realtime.NewHub(cfg.CORSOrigins, log.Named("ws"))
	defer hub.Close()

	eventSvc := service.NewEventService(eventRepo, cfg.Detector(), hub, log)
	sessionSvc := service.NewSessionService(eventRepo, sessionRepo, hub, log)
	digestSvc := service.NewDigestService(eventRepo, sessionRepo)

	scheduler := service.NewSchedulerService(time.Local, log)
	if _, err := scheduler.ScheduleInterval("pending-sweep", cfg.PendingSweep, func() {
		sweepPending(ctx, digestSvc, hub, log)
	}); err != nil {
		return err
	}

	if cfg.TelegramEnabled() {
		telegramBot, err := bot.New(cfg.TelegramToken, cfg.TelegramChatID, digestSvc, sessionSvc, log.Named("bot"))
		if err != nil {
			return fmt.Errorf("bot: %w", err)
		}
		if cfg.TelegramChatID != 0 {
			if _, err := scheduler.ScheduleDaily("daily-digest", cfg.DigestTime, func() {
				jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
				defer cancel()
				if err := telegramBot.SendDailyDigest(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
					log.Warn("daily digest failed", zap.Error(err))
				}
			}); err != nil {
				return err
			}
		}
		go func() {
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("bot stopped with error", zap.Error(err))
			}
		}()
	} else {
		log.Info("telegram bot disabled, TELEGRAM_TOKEN not set")
	}

	scheduler.Start()
	defer scheduler.Stop()

	gin.SetMode(gin.ReleaseMode)
	api := httpapi.NewServer(httpapi.Services{
		Events:   eventSvc,
		Sessions: sessionSvc,
		Pomodoro: service.NewPomodoroService(pomodoroRepo),
		Import:   service.NewImportService(eventRepo, hub, log),
		Calendar: service.NewCalendarService(eventRepo),
		Hub:      hub.ServeWS,
	}, cfg.CORSOrigins, log.Named("http"))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("conflict_mode", string(cfg.ConflictMode)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}

// sweepPending tells live clients which daily sessions are waiting to be marked.
func sweepPending(ctx context.Context, digest *service.DigestService, hub *realtime.Hub, log *zap.Logger) {
	overview, err := digest.PendingOverview(ctx, time.Now())
	if err != nil {
		log.Warn("pending sweep failed", zap.Error(err))
		return
	}
	if len(overview) == 0 {
		return
	}
	hub.Publish("sessions_pending", "sweep", overview)
	log.Debug("pending sweep", zap.Int("events", len(overview)), zap.Int("clients", hub.Count()))
}

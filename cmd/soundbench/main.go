package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/soundbench/soundbench/internal/config"
	"github.com/soundbench/soundbench/internal/engine"
	"github.com/soundbench/soundbench/internal/handler"
	"github.com/soundbench/soundbench/internal/studio"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	logger.Info("soundbench starting",
		zap.String("listen", cfg.ListenAddr),
		zap.String("assets", cfg.AssetsDir),
		zap.Int("sampleRate", cfg.SampleRate),
		zap.Int("maxSessions", cfg.MaxSessions),
	)

	eng := engine.NewBeepEngine(
		cfg.AssetsDir,
		cfg.SampleRate,
		time.Duration(cfg.SpeakerBufferMs)*time.Millisecond,
		logger,
	)
	st := studio.New(eng, cfg.MaxSessions,
		time.Duration(cfg.PollIntervalMs)*time.Millisecond, logger)

	h := handler.NewHandlers(st, cfg.AssetsDir, cfg.SampleRate, logger)
	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      h.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	st.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/steveyiyo/voicerelay/internal/config"
	h "github.com/steveyiyo/voicerelay/internal/http"
	"github.com/steveyiyo/voicerelay/internal/logging"
	"github.com/steveyiyo/voicerelay/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	w, closer := logging.Setup(logging.Options{
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	defer closer.Close()
	gin.DefaultWriter = w
	gin.DefaultErrorWriter = w
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	reporter, err := observability.NewReporter(cfg.SentryDSN, cfg.Environment)
	if err != nil {
		log.Printf("sentry init failed, continuing without it: %v", err)
	}
	defer reporter.Flush(2 * time.Second)

	deps := h.NewDeps(cfg, reporter)
	r, err := h.NewRouter(cfg, deps)
	if err != nil {
		log.Fatalf("router: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("voice relay listening on :%s (ws %s)", cfg.Port, cfg.WSPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	// Hijacked websocket connections are not tracked by Shutdown.
	n := deps.Hub.CloseAll()
	log.Printf("closed %d relay connections", n)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

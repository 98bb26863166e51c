// @title parseview API
// @version 1.0
// @description Document parse playground: relays uploads to the document parsing vendor and serves the session's result.
// @BasePath /api/v1
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"parseview/internal/config"
	"parseview/internal/handler"
	"parseview/internal/logger"
	"parseview/internal/metrics"
	"parseview/internal/parser"
	"parseview/internal/parser/upstage"
	"parseview/internal/port"
	"parseview/internal/router"
	"parseview/internal/service"
	"parseview/internal/store"
	"parseview/internal/viewer"
	"parseview/internal/web"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()

	// Initialize parser
	parser.RegisterProvider("upstage", func(vc *config.VendorConfig) (port.DocumentParser, error) {
		p, err := upstage.NewParser(vc)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
	docParser, err := parser.NewParser(&cfg.Vendor)
	if err != nil {
		return fmt.Errorf("failed to initialize parser: %w", err)
	}

	ctx := context.Background()

	// Initialize result store
	resultStore, closeStore, err := store.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize result store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("closing result store")
		}
	}()

	// Initialize services
	processor := service.NewFileProcessor(docParser, &cfg.Upload, m)
	sessions := service.NewSessionService(processor, resultStore, m)

	// Initialize handlers
	defaults := cfg.DefaultOptions()
	sanitizer := viewer.NewSanitizer()
	handlers := router.Handlers{
		Upload:  handler.NewUploadHandler(sessions, defaults, cfg.Upload.MaxBytes()),
		Result:  handler.NewResultHandler(sessions, sanitizer),
		Session: handler.NewSessionHandler(sessions),
		Health:  handler.NewHealthHandler(resultStore),
		Info:    handler.NewInfoHandler(cfg),
		UI:      handler.NewUIHandler(sessions, sanitizer, defaults, cfg.Upload.MaxFileSizeMB),
	}

	templates, err := web.Templates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	// Setup router
	r := router.Setup(cfg, handlers, m, templates)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Server.Port).
			Str("provider", cfg.Vendor.Provider).
			Str("store", cfg.Store.Backend).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// Package cmd implements the handlight command line interface.
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rghosal/handlight/internal/actuator"
	"github.com/rghosal/handlight/internal/app"
	"github.com/rghosal/handlight/internal/capture"
	"github.com/rghosal/handlight/internal/config"
	"github.com/rghosal/handlight/internal/detector"
	"github.com/rghosal/handlight/internal/gesture"
	"github.com/rghosal/handlight/internal/logger"
	"github.com/rghosal/handlight/internal/server"
	"github.com/rghosal/handlight/internal/store"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the configured log level when set.
	logLevel string

	rootCmd = &cobra.Command{
		Use:   "handlight",
		Short: "Control a smart light with hand gestures from a camera.",
		Long: `Watches a camera for hand gestures and drives a smart light:
an open palm toggles the light on, a closed fist turns it off, and rotating
an open palm steps the brightness up or down.

A status server exposes health, settings, a preview stream and a live
event feed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()
			return run(ctx)
		},
	}
)

// Execute runs the handlight CLI and exits with non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn or error")
}

func run(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	level, ok := logger.ParseLevel(cfg.LogLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	log := logger.New(level)
	defer log.Sync()

	st, err := openStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open settings store: %w", err)
	}
	defer st.Close()

	// Persisted settings override the file.
	overrides, err := st.Settings().All()
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	if err := config.ApplyOverrides(cfg, overrides); err != nil {
		return err
	}

	det := newDetector(cfg, log)
	defer func() {
		if err := det.Close(); err != nil {
			log.Warn("error closing detector", zap.Error(err))
		}
	}()

	var light actuator.Actuator
	if cfg.Hue.Configured() {
		light = actuator.NewHueLight(cfg.Hue)
		log.Info("hue light configured",
			zap.String("bridge", cfg.Hue.BridgeAddr),
			zap.String("light_id", cfg.Hue.LightID))
	} else {
		log.Warn("no light configured, gesture events will not be dispatched")
	}

	session := app.New(app.Config{
		Settings: cfg,
		Camera:   capture.NewCamera(cfg.CameraID),
		Detector: det,
		Light:    light,
		Logger:   log,
		Notice: func(msg string) {
			log.Warn("light command failed", zap.String("notice", msg))
		},
	})

	session.OnEvent(func(ev gesture.Event, snap app.Snapshot) {
		if ev.Kind == gesture.NoAction {
			return
		}
		log.Debug("session state",
			zap.Bool("light_on", snap.LightOn),
			zap.Int("brightness", snap.Brightness))
	})

	if err := session.Start(); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	defer session.Stop()

	srv := &http.Server{
		Addr: cfg.ServerAddr,
		Handler: server.New(server.Config{
			Session: session,
			Store:   st,
			Logger:  log,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("status server listening", zap.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("status server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore opens the settings database, defaulting to ~/.handlight.
func openStore(dbPath string) (*store.Store, error) {
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dbDir := filepath.Join(homeDir, ".handlight")
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			return nil, err
		}
		dbPath = filepath.Join(dbDir, "handlight.db")
	}
	return store.New(dbPath)
}

// newDetector builds the MediaPipe detector, falling back to the mock when
// the inference service is unavailable so the rest of the pipeline still runs.
func newDetector(cfg *config.Config, log *zap.Logger) detector.Detector {
	det, err := detector.NewMediaPipeDetector(detector.Config{
		MinConfidence: detector.DefaultConfig().MinConfidence,
		InputWidth:    cfg.InputWidth,
		InputHeight:   cfg.InputHeight,
	})
	if err != nil {
		log.Warn("mediapipe detector unavailable, using mock detector", zap.Error(err))
		return detector.NewMockDetector()
	}
	return det
}

/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/valpere/transflow/internal/config"
	"github.com/valpere/transflow/internal/detector"
	"github.com/valpere/transflow/internal/orchestrator"
	"github.com/valpere/transflow/internal/progress"
	"github.com/valpere/transflow/internal/retriever"
	"github.com/valpere/transflow/internal/server"
	"github.com/valpere/transflow/internal/store"
	"github.com/valpere/transflow/internal/validator"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the translation pipeline HTTP service",
	Long: `Start the HTTP API: file upload and lifecycle, unit review, glossary
and translation-memory management, server-sent progress events, and
Prometheus metrics on /metrics.

Configuration comes from an optional YAML file (--config) and
TRANSFLOW_-prefixed environment variables; the environment wins.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(serveConfigPath)
		if err != nil {
			return err
		}
		log := config.SetupLogger(cfg)

		db, err := store.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		svc, err := buildBackend(cfg)
		if err != nil {
			return err
		}

		hub := progress.NewHub()
		retr := retriever.New(db, cfg.MatchThreshold)
		orch := orchestrator.New(db, svc, retr, hub, orchestrator.Config{
			BatchSize: cfg.BatchSize,
			Interval:  cfg.TranslateInterval,
		}, log)
		if cfg.ValidateOutputLang {
			orch.SetValidator(validator.New())
		}

		srv := server.New(db, orch, buildExtractor(cfg), detector.New(), hub, log)
		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: srv,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("server listening", "addr", httpSrv.Addr, "backend", svc.Name())
			if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case sig := <-stop:
			log.Info("shutting down", "signal", sig.String())
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		log.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to YAML configuration file")
}

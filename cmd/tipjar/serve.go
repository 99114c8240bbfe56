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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tipjar/internal/api"
	"tipjar/internal/config"
	"tipjar/internal/history"
	"tipjar/internal/staff"
)

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Missing node settings are reported per request, the server still starts.
	if _, err := history.ParseContract(cfg.Node.Contract); err != nil {
		logger.Warn("contract not usable", zap.Error(err))
	}
	if err := history.ValidateRPCURL(cfg.Node.RPCURL); err != nil {
		logger.Warn("rpc url not usable", zap.Error(err))
	}

	reader, err := history.NewReader(cfg.Node, logger)
	if err != nil {
		return err
	}
	directory := staff.New(cfg.Staff, logger)

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.NewRouter(reader, directory, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server start",
			zap.String("listen", cfg.Listen),
			zap.String("contract", cfg.Node.Contract),
			zap.Int("staff", len(directory.List())),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tipjar/internal/config"
	"tipjar/internal/explorer"
	"tipjar/internal/history"
	"tipjar/internal/presenter"
)

func runHistory(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadHistory(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var fetcher presenter.Fetcher
	if cfg.APIURL != "" {
		fetcher = presenter.NewAPIClient(cfg.APIURL, nil)
	} else {
		reader, err := history.NewReader(cfg.Node, logger)
		if err != nil {
			return err
		}
		fetcher = reader
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	view := presenter.New(fetcher, explorerFor(cfg.ExplorerURL, cfg.Node.ExpectedChainID), presenter.WithLogger(logger))
	refreshErr := view.Refresh(ctx)
	if err := view.Render(cmd.OutOrStdout()); err != nil {
		return err
	}
	return refreshErr
}

func explorerFor(baseURL string, chainID uint64) explorer.Explorer {
	if baseURL != "" {
		return explorer.WithBaseURL(baseURL)
	}
	return explorer.ForChain(chainID)
}

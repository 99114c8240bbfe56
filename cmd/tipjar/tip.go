package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tipjar/internal/apperr"
	"tipjar/internal/chain"
	"tipjar/internal/config"
	"tipjar/internal/history"
	"tipjar/internal/staff"
	"tipjar/internal/storage"
	"tipjar/internal/storage/postgres"
	"tipjar/internal/submit"
	"tipjar/internal/units"
	"tipjar/internal/wallet"
)

func runTip(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadTip(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	staffName := args[0]
	amountWei, err := units.ParseEther(args[1])
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, fmt.Sprintf("Invalid amount %q.", args[1]), err)
	}
	message := ""
	if len(args) > 2 {
		message = args[2]
	}

	if err := history.ValidateRPCURL(cfg.Node.RPCURL); err != nil {
		return err
	}
	key, err := wallet.LoadKey(cfg.PrivateKey, cfg.Keystore, cfg.Passphrase)
	if err != nil {
		return apperr.Wrap(apperr.KindConfiguration, "Wallet key is not usable.", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(ctx, cfg.Node.RPCURL)
	if err != nil {
		return apperr.Classify(fmt.Errorf("connect rpc: %w", err), cfg.Node.RPCURL)
	}
	defer client.Close()

	journal, err := openJournal(ctx, cfg)
	if err != nil {
		return err
	}
	defer journal.Close()

	var approver wallet.Approver = &wallet.TerminalApprover{In: os.Stdin, Out: cmd.ErrOrStderr()}
	if cfg.AutoApprove {
		approver = wallet.AutoApprover{}
	}
	provider := wallet.NewKeyProvider(client.Eth(), key, approver, logger)

	session := wallet.NewSession(provider, logger)
	if err := session.Start(ctx); err != nil {
		return apperr.Classify(err, cfg.Node.RPCURL)
	}
	defer session.Close()

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go provider.Watch(watchCtx, cfg.WatchInterval)

	chainID := cfg.Node.ExpectedChainID
	if state := session.State(); chainID == 0 && state.ChainID != nil && state.ChainID.IsUint64() {
		chainID = state.ChainID.Uint64()
	}
	links := explorerFor(cfg.ExplorerURL, chainID)

	out := cmd.ErrOrStderr()
	submitter, err := submit.New(cfg.Node, staff.New(cfg.Staff, logger), session,
		submit.WithLogger(logger),
		submit.WithJournal(journal),
		submit.WithObserver(func(attempt submit.Attempt) {
			if attempt.Status() == submit.StatusIdle || attempt.Terminal() {
				return
			}
			fmt.Fprintln(out, attempt.Message())
		}),
	)
	if err != nil {
		return err
	}

	logger.Info("tip start",
		zap.String("account", provider.Address().Hex()),
		zap.String("summary", submit.Summary(staffName, amountWei, message)),
	)

	attempt := submitter.Submit(ctx, staffName, amountWei, message)
	if hash, ok := attempt.TxHash(); ok {
		fmt.Fprintln(cmd.OutOrStdout(), links.TxURL(hash.Hex()))
	}
	if attempt.Status() != submit.StatusSuccess {
		return attempt.Err()
	}
	fmt.Fprintln(cmd.OutOrStdout(), attempt.Message())
	return nil
}

func openJournal(ctx context.Context, cfg config.TipConfig) (storage.Journal, error) {
	switch {
	case cfg.PGDSN != "":
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, nil
	case cfg.Journal != "":
		return storage.NewJsonlJournal(cfg.Journal), nil
	default:
		return storage.Nop{}, nil
	}
}

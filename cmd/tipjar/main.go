package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "tipjar",
		Short:        "Send and browse on-chain tips for staff",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the payment history and staff list over HTTP",
		RunE:  runServe,
	}
	addNodeFlags(serveCmd.Flags())
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().String("staff", "", "staff list as comma-separated Name=0xAddress pairs")

	root.AddCommand(serveCmd)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Print the tip history, newest first",
		RunE:  runHistory,
	}
	addNodeFlags(historyCmd.Flags())
	historyCmd.Flags().String("api", "", "read from a running tipjar server instead of the node")
	historyCmd.Flags().String("explorer", "", "block explorer base URL, defaults to the chain's explorer")

	root.AddCommand(historyCmd)

	tipCmd := &cobra.Command{
		Use:   "tip STAFF AMOUNT [MESSAGE]",
		Short: "Send a tip in ETH to a staff member",
		Args:  cobra.RangeArgs(2, 3),
		RunE:  runTip,
	}
	addNodeFlags(tipCmd.Flags())
	tipCmd.Flags().String("staff", "", "staff list as comma-separated Name=0xAddress pairs")
	tipCmd.Flags().String("private-key", "", "hex private key of the tipping account")
	tipCmd.Flags().String("keystore", "", "keystore JSON file of the tipping account")
	tipCmd.Flags().String("passphrase", "", "keystore passphrase")
	tipCmd.Flags().Bool("yes", false, "approve wallet prompts without asking")
	tipCmd.Flags().Duration("watch-interval", 5*time.Second, "how often to poll the node for network changes")
	tipCmd.Flags().String("journal", "./data/tip_attempts.jsonl", "JSONL file recording tip attempts")
	tipCmd.Flags().String("pg-dsn", "", "Postgres DSN recording tip attempts, overrides --journal")
	tipCmd.Flags().String("explorer", "", "block explorer base URL, defaults to the chain's explorer")

	root.AddCommand(tipCmd)

	staffCmd := &cobra.Command{
		Use:   "staff",
		Short: "List the staff members that can receive tips",
		RunE:  runStaff,
	}
	staffCmd.Flags().String("staff", "", "staff list as comma-separated Name=0xAddress pairs")
	staffCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(staffCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addNodeFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "", "node RPC URL (http, https, ws or wss)")
	flags.String("contract", "", "TipJar contract address")
	flags.Uint64("from-block", 0, "first block to scan, usually the deployment block")
	flags.Uint64("chain-id", 0, "expected chain id (tip defaults to 84532)")
	flags.Int("concurrency", 8, "concurrent block timestamp lookups")
	flags.Float64("rpc-rps", 0, "block lookups per second, 0 means unlimited")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

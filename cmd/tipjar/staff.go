package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tipjar/internal/config"
	"tipjar/internal/staff"
)

func runStaff(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	entries, level, err := config.LoadStaff(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	members := staff.New(entries, logger).List()
	if len(members) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No staff configured.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tADDRESS")
	for _, member := range members {
		fmt.Fprintf(tw, "%s\t%s\n", member.Name, member.Address.Hex())
	}
	return tw.Flush()
}

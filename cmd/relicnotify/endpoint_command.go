package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"relicnotify/internal/newrelic"
)

func newEndpointCommand(ctx *commandContext) *cobra.Command {
	var european bool

	cmd := &cobra.Command{
		Use:   "endpoint",
		Short: "Print the New Relic API base URL used for a region",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), newrelic.NewFromConfig(cfg).EndpointFor(european))
			return nil
		},
	}
	cmd.Flags().BoolVar(&european, "eu", false, "Use the EU data center")
	return cmd
}

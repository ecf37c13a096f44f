package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"relicnotify/internal/credentials"
)

func newCredentialsCommand(ctx *commandContext) *cobra.Command {
	credCmd := &cobra.Command{
		Use:     "credentials",
		Aliases: []string{"creds"},
		Short:   "Manage New Relic API keys referenced by job files",
	}

	credCmd.AddCommand(newCredentialsAddCommand(ctx))
	credCmd.AddCommand(newCredentialsRemoveCommand(ctx))
	credCmd.AddCommand(newCredentialsListCommand(ctx))

	return credCmd
}

func newCredentialsAddCommand(ctx *commandContext) *cobra.Command {
	var (
		secret      string
		fromStdin   bool
		hostname    string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Store or replace an API key",
		Long: "Store an API key under <id>. With --scope the key is visible only to that job\n" +
			"and shadows a global key with the same id. With --hostname the key is only\n" +
			"sent to that New Relic host.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromStdin {
				value, err := readSecret(cmd.InOrStdin())
				if err != nil {
					return err
				}
				secret = value
			}
			if strings.TrimSpace(secret) == "" {
				return errors.New("an API key is required (use --secret or --secret-stdin)")
			}

			store, err := ctx.credentialStore()
			if err != nil {
				return err
			}
			entry := credentials.Entry{
				ID:          args[0],
				Secret:      secret,
				Scope:       ctx.scope(),
				Hostname:    hostname,
				Description: description,
			}
			if err := store.Put(entry); err != nil {
				return fmt.Errorf("store credential: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored credential %s (%s) in %s\n", strings.TrimSpace(args[0]), scopeLabel(ctx.scope()), store.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "API key value (prefer --secret-stdin to keep it out of shell history)")
	cmd.Flags().BoolVar(&fromStdin, "secret-stdin", false, "Read the API key from the first line of stdin")
	cmd.Flags().StringVar(&hostname, "hostname", "", "Restrict the key to one API host, e.g. api.eu.newrelic.com")
	cmd.Flags().StringVar(&description, "description", "", "Free-form note shown by credentials list")
	return cmd
}

func newCredentialsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove an API key from the selected scope",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.credentialStore()
			if err != nil {
				return err
			}
			removed, err := store.Remove(args[0], credentials.Scope(ctx.scope()))
			if err != nil {
				return fmt.Errorf("remove credential: %w", err)
			}
			out := cmd.OutOrStdout()
			if !removed {
				fmt.Fprintf(out, "No credential %s (%s) found\n", strings.TrimSpace(args[0]), scopeLabel(ctx.scope()))
				return nil
			}
			fmt.Fprintf(out, "Removed credential %s (%s)\n", strings.TrimSpace(args[0]), scopeLabel(ctx.scope()))
			return nil
		},
	}
}

func newCredentialsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored API keys without revealing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.credentialStore()
			if err != nil {
				return err
			}
			entries, err := store.List()
			if err != nil {
				return err
			}

			if jsonOutput {
				views := make([]credentialView, 0, len(entries))
				for _, e := range entries {
					views = append(views, credentialView{ID: e.ID, Scope: e.Scope, Hostname: e.Hostname, Description: e.Description})
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No credentials stored in %s\n", store.Path())
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.ID, scopeLabel(e.Scope), valueOrDash(e.Hostname), valueOrDash(e.Description)})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Scope", "Host", "Description"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

type credentialView struct {
	ID          string `json:"id"`
	Scope       string `json:"scope,omitempty"`
	Hostname    string `json:"hostname,omitempty"`
	Description string `json:"description,omitempty"`
}

func readSecret(r io.Reader) (string, error) {
	reader := bufio.NewReader(r)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read secret from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func scopeLabel(scope string) string {
	if strings.TrimSpace(scope) == "" {
		return "global"
	}
	return "job " + strings.TrimSpace(scope)
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

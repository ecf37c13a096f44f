package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"relicnotify/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		runID      string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded deployment notification attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			store, err := ctx.openHistory(cmd.Context(), logger)
			if err != nil {
				return fmt.Errorf("open history %s: %w", cfg.Paths.HistoryDB, err)
			}
			defer store.Close()

			attempts, err := store.ListAttempts(cmd.Context(), history.Filter{
				RunID: runID,
				Job:   ctx.scope(),
				Limit: limit,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				views := make([]attemptView, 0, len(attempts))
				for _, a := range attempts {
					views = append(views, newAttemptView(a))
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(attempts) == 0 {
				fmt.Fprintln(out, "No notifications recorded")
				return nil
			}
			rows := make([][]string, 0, len(attempts))
			for _, a := range attempts {
				rows = append(rows, []string{
					a.StartedAt.Local().Format("2006-01-02 15:04:05"),
					valueOrDash(a.Job),
					strconv.Itoa(a.Index),
					a.Protocol,
					valueOrDash(a.Identifier),
					regionLabel(a.European),
					attemptResult(a),
					a.Duration.Round(time.Millisecond).String(),
					shortRunID(a.RunID),
				})
			}
			headers := []string{"Started", "Job", "#", "Protocol", "Target", "Region", "Result", "Duration", "Run"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum attempts to show (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Only show attempts from this run ID")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

type attemptView struct {
	RunID        string    `json:"run_id"`
	Job          string    `json:"job,omitempty"`
	Index        int       `json:"index"`
	Protocol     string    `json:"protocol"`
	Target       string    `json:"target"`
	European     bool      `json:"european"`
	Status       string    `json:"status"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	DurationMS   int64     `json:"duration_ms"`
}

func newAttemptView(a history.Attempt) attemptView {
	return attemptView{
		RunID:        a.RunID,
		Job:          a.Job,
		Index:        a.Index,
		Protocol:     a.Protocol,
		Target:       a.Identifier,
		European:     a.European,
		Status:       string(a.Status),
		ErrorKind:    a.ErrorKind,
		ErrorMessage: a.ErrorMessage,
		StartedAt:    a.StartedAt,
		DurationMS:   a.Duration.Milliseconds(),
	}
}

func attemptResult(a history.Attempt) string {
	if a.Status == history.StatusFailed {
		if a.ErrorKind != "" {
			return "failed (" + strings.ReplaceAll(a.ErrorKind, "_", " ") + ")"
		}
		return "failed"
	}
	return string(a.Status)
}

func regionLabel(european bool) string {
	if european {
		return "EU"
	}
	return "US"
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

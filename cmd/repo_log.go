package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/keymaker/internal/secrets"
	"github.com/PolarWolf314/keymaker/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logOperation string
	logSince     string
	logUntil     string
	logOneline   bool
	logJSON      bool
)

func init() {
	repoLogCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of changes shown")
	repoLogCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent changes first")
	repoLogCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	repoLogCmd.Flags().StringVar(&logSince, "since", "", "show changes after date (YYYY-MM-DD)")
	repoLogCmd.Flags().StringVar(&logUntil, "until", "", "show changes before date (YYYY-MM-DD)")
	repoLogCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	repoLogCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetRepoLogState resets the log command's global state for testing.
func resetRepoLogState() {
	logLimit = 0
	logReverse = false
	logOperation = ""
	logSince = ""
	logUntil = ""
	logOneline = false
	logJSON = false
}

var repoLogCmd = &cobra.Command{
	Use:   "log ID",
	Short: "View a repository's change history",
	Long: `Displays the change history of a repository. Change summaries are
stored encrypted and are decrypted with the repository key.

Examples:
  keymaker repo log ID                          # Full history
  keymaker repo log ID -n 10                    # First 10 changes
  keymaker repo log ID --reverse                # Most recent first
  keymaker repo log ID --operation share,remove # Filter by operation
  keymaker repo log ID --since 2024-01-01       # Filter by date
  keymaker repo log ID --json                   # JSON output`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting repo log command")
		ctx := context.Background()

		session, err := openRepository(ctx, args[0])
		if err != nil {
			return reportError(err)
		}
		defer session.Close()

		result, err := session.History(ctx, workflows.HistoryOptions{
			Limit:      logLimit,
			Reverse:    logReverse,
			Operations: logOperation,
			Since:      logSince,
			Until:      logUntil,
		})
		if err != nil {
			return reportError(err)
		}

		Logger.Debugf("Read %d changes", result.TotalEntriesBeforeFilter)
		Logger.Debugf("After filtering: %d changes", len(result.Changes))

		if len(result.Changes) == 0 {
			if result.TotalEntriesBeforeFilter == 0 {
				fmt.Println("No changes recorded.")
			} else {
				fmt.Println("No changes found matching the filters.")
			}
			return nil
		}

		switch {
		case logJSON:
			return outputLogJSON(result.Changes)
		case logOneline:
			outputLogOneline(result.Changes)
		default:
			outputLogDefault(result.Changes)
		}
		return nil
	},
}

type changeJSON struct {
	Timestamp string `json:"ts"`
	Operation string `json:"op"`
	Recipient string `json:"recipient"`
	Summary   string `json:"summary"`
	EntryID   string `json:"entry,omitempty"`
	Target    string `json:"target,omitempty"`
}

func outputLogJSON(changes []workflows.Change) error {
	out := make([]changeJSON, 0, len(changes))
	for _, c := range changes {
		out = append(out, changeJSON{
			Timestamp: c.Timestamp,
			Operation: c.Operation,
			Recipient: c.Recipient,
			Summary:   c.Text,
			EntryID:   c.EntryID,
			Target:    c.Target,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal changes to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func outputLogOneline(changes []workflows.Change) {
	for _, c := range changes {
		fmt.Printf("%s %s %s %s\n", formatDate(c.Timestamp), shortRecipient(c.Recipient), c.Operation, c.Text)
	}
}

func outputLogDefault(changes []workflows.Change) {
	for _, c := range changes {
		details := c.Text
		if c.EntryID != "" {
			details += " " + c.EntryID
		}
		if c.Target != "" {
			details += " -> " + shortRecipient(c.Target)
		}
		fmt.Printf("%-19s  %-8s  %-6s  %s\n", workflows.FormatDateTime(c.Timestamp), shortRecipient(c.Recipient), c.Operation, details)
	}
}

func formatDate(ts string) string {
	datetime := workflows.FormatDateTime(ts)
	if len(datetime) > 10 {
		return datetime[:10]
	}
	return datetime
}

// shortRecipient shortens a stored fingerprint for display.
func shortRecipient(s string) string {
	fp, err := secrets.ParseFingerprint(s)
	if err != nil {
		return s
	}
	return fp.Short()
}

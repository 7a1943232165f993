package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/spf13/cobra"
)

var entryListCmd = &cobra.Command{
	Use:   "list REPO",
	Short: "List the entries of a repository",
	Long: `Lists entry ids and names, sorted by name. --match filters names
with a glob where ** crosses "/" separators.

Examples:
  keymaker entry list REPO
  keymaker entry list REPO --match 'prod/**'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting entry list command")
		ctx := context.Background()

		session, err := openRepository(ctx, args[0])
		if err != nil {
			return reportError(err)
		}
		defer session.Close()

		entries, err := session.FindEntries(entryMatch)
		if err != nil {
			return reportError(err)
		}

		if len(entries) == 0 {
			if entryMatch != "" {
				fmt.Println("No entries match " + ui.Highlight.Sprint(entryMatch) + ".")
			} else {
				fmt.Println("No entries found.")
			}
			return nil
		}

		for _, entry := range entries {
			fmt.Printf("%s  %s\n", entry.ID, ui.Highlight.Sprint(entry.Name))
		}
		return nil
	},
}

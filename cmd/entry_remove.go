package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/spf13/cobra"
)

var entryRemoveCmd = &cobra.Command{
	Use:     "remove REPO ENTRY",
	Aliases: []string{"rm"},
	Short:   "Remove an entry from a repository",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting entry remove command")
		ctx := context.Background()

		session, err := openRepository(ctx, args[0])
		if err != nil {
			return reportError(err)
		}
		defer session.Close()

		id, err := resolveEntry(session, args[1])
		if err != nil {
			return reportError(err)
		}

		if !entryForce && !confirm("Remove entry "+ui.Highlight.Sprint(args[1])+"?") {
			fmt.Println("Aborted.")
			return nil
		}

		if err := session.RemoveEntry(ctx, id); err != nil {
			return reportError(err)
		}

		fmt.Println(ui.Success.Sprint("✓") + " Removed entry " + ui.Highlight.Sprint(args[1]))
		return nil
	},
}

package cmd

import (
	"context"

	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/spf13/cobra"
)

var repoRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Change a repository's display name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting repo rename command")
		ctx := context.Background()

		session, err := openRepository(ctx, args[0])
		if err != nil {
			return reportError(err)
		}
		defer session.Close()

		spinner, cleanup := startSpinner("Renaming repository...", verbose)
		defer cleanup()

		if err := session.Rename(ctx, args[1]); err != nil {
			return finishWithError(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Renamed repository to " + ui.Highlight.Sprint(args[1])
		return nil
	},
}

package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/spf13/cobra"
)

var repoCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a repository shared only with you",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting repo create command")
		ctx := context.Background()

		session, err := newSession(ctx)
		if err != nil {
			return reportError(err)
		}
		defer session.Close()

		spinner, cleanup := startSpinner("Creating repository...", verbose)
		defer cleanup()

		id, err := session.CreateRepository(ctx, args[0])
		if err != nil {
			return finishWithError(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Created repository " + ui.Highlight.Sprint(args[0]) + "\n" +
			fmt.Sprintf("  ID: %s", id)
		return nil
	},
}

package cmd

import (
	"context"

	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/PolarWolf314/keymaker/internal/utils"
	"github.com/PolarWolf314/keymaker/internal/workflows"
	"github.com/spf13/cobra"
)

var entryAddCmd = &cobra.Command{
	Use:   "add REPO --set name=NAME [--set key=value...]",
	Short: "Add an entry to a repository",
	Long: `Adds an entry built from --set assignments. Every entry needs a name.

Examples:
  keymaker entry add REPO --set name=db --set username=admin --set password=hunter2
  keymaker entry add REPO -s name=vpn -s host=vpn.example.com -s type=wireguard`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting entry add command")
		ctx := context.Background()

		values, err := utils.ParseAssignments(entrySet)
		if err != nil {
			return err
		}
		Logger.Debugf("Adding entry with %d properties", len(values))

		session, err := openRepository(ctx, args[0])
		if err != nil {
			return reportError(err)
		}
		defer session.Close()

		spinner, cleanup := startSpinner("Adding entry...", verbose)
		defer cleanup()

		id, err := session.AddEntry(ctx, values)
		if err != nil {
			return finishWithError(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Added entry " + ui.Highlight.Sprint(values[workflows.EntryNameProperty]) + "\n" +
			"  ID: " + id
		return nil
	},
}

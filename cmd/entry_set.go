package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/PolarWolf314/keymaker/internal/utils"
	"github.com/spf13/cobra"
)

var entrySetCmd = &cobra.Command{
	Use:   "set REPO ENTRY [--set key=value...] [--unset key...]",
	Short: "Change or remove properties of an entry",
	Long: `Updates an entry in place. Assignments are applied before removals.
The name property cannot be removed.

Examples:
  keymaker entry set REPO db --set password=correct-horse
  keymaker entry set REPO db --unset tunnel0`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting entry set command")
		ctx := context.Background()

		values, err := utils.ParseAssignments(entrySet)
		if err != nil {
			return err
		}
		if len(values) == 0 && len(entryUnset) == 0 {
			fmt.Println(ui.Warning.Sprint("⚠") + " Nothing to change")
			fmt.Println(ui.Info.Sprint("→") + " Pass " + ui.Flag.Sprint("--set") + " or " + ui.Flag.Sprint("--unset"))
			return nil
		}

		session, err := openRepository(ctx, args[0])
		if err != nil {
			return reportError(err)
		}
		defer session.Close()

		id, err := resolveEntry(session, args[1])
		if err != nil {
			return reportError(err)
		}
		Logger.Debugf("Resolved entry %q to %s", args[1], id)

		spinner, cleanup := startSpinner("Updating entry...", verbose)
		defer cleanup()

		if err := session.UpdateEntry(ctx, id, values, entryUnset); err != nil {
			return finishWithError(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + fmt.Sprintf(" Updated entry %s (%d set, %d removed)", id, len(values), len(entryUnset))
		return nil
	},
}

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/PolarWolf314/keymaker/internal/utils"
	"github.com/spf13/cobra"
)

var repoImportReplace bool

func init() {
	repoImportCmd.Flags().BoolVar(&repoImportReplace, "replace", false, "replace a local repository with the same id")
}

var repoImportCmd = &cobra.Command{
	Use:   "import ARCHIVE",
	Short: "Import a repository from a backup archive",
	Long: `Restores a repository from a tar.gz archive created by the export
command. The repository keeps its id, its recipients and its history.

If a repository with the same id already exists locally the import is
refused unless --replace is given.

Examples:
  keymaker repo import keymaker-0b6a1c2d-2024-01-15.tar.gz
  keymaker repo import backup.tar.gz --replace`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting repo import command")
		ctx := context.Background()

		archivePath, err := utils.ExpandHome(args[0])
		if err != nil {
			return reportError(err)
		}
		if !utils.FileExists(archivePath) {
			fmt.Println(ui.Error.Sprint("✗") + " Archive not found at " + ui.Path.Sprint(archivePath))
			return nil
		}

		session, err := newSession(ctx)
		if err != nil {
			return reportError(err)
		}
		defer session.Close()

		spinner, cleanup := startSpinner("Importing repository...", verbose)
		defer cleanup()

		file, err := os.Open(archivePath)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer file.Close()

		result, err := session.ImportRepository(ctx, file, repoImportReplace)
		if err != nil {
			return finishWithError(spinner, err)
		}

		finalMessage := ui.Success.Sprint("✓") + " Imported repository\n" +
			"  ID: " + result.ID + "\n" +
			fmt.Sprintf("  %d entries, %d files", result.Entries, result.Files)
		if !result.Access {
			finalMessage += "\n" + ui.Warning.Sprint("⚠") + " This repository has not been shared with you"
		}

		spinner.FinalMSG = finalMessage
		return nil
	},
}

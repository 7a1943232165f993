package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/spf13/cobra"
)

var repoExportOutput string

func init() {
	repoExportCmd.Flags().StringVarP(&repoExportOutput, "output", "o", "", "output path for the archive (default: keymaker-<id>-YYYY-MM-DD.tar.gz)")
}

var repoExportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Export a repository to a backup archive",
	Long: `Creates a tar.gz archive of the repository as stored on disk: the
wrapped repository keys, the encrypted entries and the encrypted history.

The archive does NOT include private keys or any plaintext. Anyone who can
read it learns only the repository id and the recipients' fingerprints.

Examples:
  # Export to the default filename
  keymaker repo export 0b6a...

  # Export to a custom path
  keymaker repo export 0b6a... -o /backups/work.tar.gz`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting repo export command")
		ctx := context.Background()
		id := args[0]

		session, err := newSession(ctx)
		if err != nil {
			return reportError(err)
		}
		defer session.Close()

		outputPath := repoExportOutput
		if outputPath == "" {
			outputPath = defaultArchiveName(id, time.Now())
		}
		Logger.Debugf("Output path: %s", outputPath)

		spinner, cleanup := startSpinner("Exporting repository...", verbose)
		defer cleanup()

		// Refuse to clobber an existing file, the archive may be the only backup.
		file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
		if err != nil {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " Cannot create " + ui.Path.Sprint(outputPath) + ": " + err.Error()
			return nil
		}

		summary, err := session.ExportRepository(ctx, id, file)
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("closing %s: %w", outputPath, closeErr)
		}
		if err != nil {
			_ = os.Remove(outputPath)
			return finishWithError(spinner, err)
		}

		finalMessage := ui.Success.Sprint("✓") + " Exported repository to " + ui.Path.Sprint(outputPath) + "\n" +
			fmt.Sprintf("  %d entries, %d files", summary.Entries, summary.Files)
		if summary.HasHistory {
			finalMessage += ", with history"
		}
		finalMessage += "\n" + ui.Info.Sprint("Note:") + " This archive contains encrypted data only."

		spinner.FinalMSG = finalMessage
		return nil
	},
}

// defaultArchiveName names an export of keyring id made at t.
func defaultArchiveName(id string, t time.Time) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("keymaker-%s-%s.tar.gz", short, t.Format("2006-01-02"))
}

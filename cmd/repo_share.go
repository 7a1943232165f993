package cmd

import (
	"context"

	"github.com/PolarWolf314/keymaker/internal/secrets"
	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/PolarWolf314/keymaker/internal/utils"
	"github.com/spf13/cobra"
)

// maxPublicKeySize bounds a public key read from stdin.
const maxPublicKeySize = 64 << 10

var repoShareCmd = &cobra.Command{
	Use:   "share ID PUBKEY",
	Short: "Grant a recipient access to a repository",
	Long: `Wraps the repository key for the recipient's public key. PUBKEY is
a path to a PEM or OpenSSH public key, or "-" to read it from stdin.

Examples:
  keymaker repo share 0b6a... bob.pub
  cat bob.pub | keymaker repo share 0b6a... -`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting repo share command")
		ctx := context.Background()

		recipient, err := readRecipient(args[1])
		if err != nil {
			return reportError(err)
		}
		Logger.Debugf("Recipient fingerprint: %s", recipient.Fingerprint())

		session, err := openRepository(ctx, args[0])
		if err != nil {
			return reportError(err)
		}
		defer session.Close()

		spinner, cleanup := startSpinner("Sharing repository...", verbose)
		defer cleanup()

		if err := session.Share(ctx, recipient); err != nil {
			return finishWithError(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Shared repository with " + ui.Fingerprint.Sprint(recipient.Fingerprint().String())
		return nil
	},
}

func readRecipient(source string) (*secrets.Identity, error) {
	if source != "-" {
		path, err := utils.ExpandHome(source)
		if err != nil {
			return nil, err
		}
		return secrets.LoadPublicIdentityFile(path)
	}

	data, err := utils.ReadStdin(maxPublicKeySize)
	if err != nil {
		return nil, err
	}
	return secrets.LoadPublicIdentity(data)
}

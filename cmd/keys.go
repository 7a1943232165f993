package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/keymaker/internal/configs"
	"github.com/PolarWolf314/keymaker/internal/secrets"
	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/PolarWolf314/keymaker/internal/utils"
	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"
)

var (
	keysCreateOut       string
	keysCreateBits      int
	keysCreateNoPass    bool
	keysCreateConfigure bool
)

// KeysCmd groups key pair management.
var KeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage RSA key pairs",
}

func init() {
	addLoggingFlags(KeysCmd)

	keysCreateCmd.Flags().StringVarP(&keysCreateOut, "out", "o", "", "private key path (defaults to a hostname-based name in the keys directory)")
	keysCreateCmd.Flags().IntVar(&keysCreateBits, "bits", secrets.DefaultKeyBits, "RSA modulus size")
	keysCreateCmd.Flags().BoolVar(&keysCreateNoPass, "no-passphrase", false, "store the private key unencrypted")
	keysCreateCmd.Flags().BoolVar(&keysCreateConfigure, "configure", false, "use the new key in the user configuration")
	KeysCmd.AddCommand(keysCreateCmd)
}

// resetKeysCreateState resets the keys create command's global state for testing.
func resetKeysCreateState() {
	keysCreateOut = ""
	keysCreateBits = secrets.DefaultKeyBits
	keysCreateNoPass = false
	keysCreateConfigure = false
}

var keysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate a new RSA key pair",
	Long: `Generates an RSA key pair. The private key is written in OpenSSH
format, encrypted with a passphrase unless --no-passphrase is given. The
public key is written next to it with a .pub suffix and is what you hand
to others so they can share repositories with you.

Examples:
  keymaker keys create
  keymaker keys create --out ~/.keymaker/work --configure
  keymaker keys create --bits 2048 --no-passphrase`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys create command")

		settings, config, err := loadConfig()
		if err != nil {
			return err
		}

		privatePath := keysCreateOut
		if privatePath == "" {
			privatePath = filepath.Join(settings.KeysPath, utils.GenerateKeyName(existingKeyNames(settings.KeysPath)))
		}
		privatePath, err = utils.ExpandHome(privatePath)
		if err != nil {
			return err
		}
		Logger.Debugf("Private key path: %s", privatePath)

		var passphrase []byte
		if !keysCreateNoPass {
			passphrase, err = utils.ReadNewPassphrase("Enter passphrase for new key: ")
			if err != nil {
				return err
			}
			defer memguard.WipeBytes(passphrase)
		}

		spinner, cleanup := startSpinner(fmt.Sprintf("Generating %d bit key pair...", keysCreateBits), verbose)
		defer cleanup()

		comment := config.Owner.Email
		if comment == "" {
			comment, _ = utils.GetUsername()
		}

		publicPath, err := secrets.WriteKeyPair(privatePath, keysCreateBits, passphrase, comment)
		if err != nil {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " Failed to create key pair: " + err.Error()
			return nil
		}

		if keysCreateConfigure {
			config.Security.PrivateKey = privatePath
			config.Security.PublicKey = ""
			if err := configs.SaveUserConfig(settings.ConfigPath, config); err != nil {
				spinner.FinalMSG = ui.Error.Sprint("✗") + " Key pair created but the configuration could not be saved"
				return err
			}
		}

		msg := ui.Success.Sprint("✓") + " Key pair created\n" +
			"  Private key: " + ui.Path.Sprint(privatePath) + "\n" +
			"  Public key:  " + ui.Path.Sprint(publicPath)
		if len(passphrase) == 0 {
			msg += "\n" + ui.Warning.Sprint("⚠") + " The private key is not protected by a passphrase"
		}
		if !keysCreateConfigure {
			msg += "\n" + ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("keymaker config init --private-key "+privatePath) + " to use it"
		}
		spinner.FinalMSG = msg
		return nil
	},
}

// existingKeyNames lists the private keys already in dir.
func existingKeyNames(dir string) []string {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, file := range files {
		if file.IsDir() || strings.HasSuffix(file.Name(), ".pub") {
			continue
		}
		names = append(names, file.Name())
	}
	return names
}

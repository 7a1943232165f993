package cmd

import (
	"fmt"

	"github.com/PolarWolf314/keymaker/internal/configs"
	"github.com/PolarWolf314/keymaker/internal/secrets"
	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/spf13/cobra"
)

func init() {
	ConfigCmd.AddCommand(configShowCmd)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config show command")

		settings, config, err := loadConfig()
		if err != nil {
			return err
		}

		if config.Security.PrivateKey == "" {
			fmt.Println(ui.Warning.Sprint("⚠") + " No user configuration found.")
			fmt.Println()
			fmt.Println(ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("keymaker config init --private-key PATH") + " to set up your identity")
			return nil
		}

		return outputUserConfigText(settings, config)
	},
}

// outputUserConfigText outputs user config in human-readable format.
func outputUserConfigText(settings *configs.Settings, config *configs.UserConfig) error {
	keyringsPath, err := config.KeyringsPath(settings)
	if err != nil {
		return err
	}
	publicPath, err := config.PublicKeyPath()
	if err != nil {
		return err
	}

	fmt.Println(ui.Info.Sprint("User Configuration") + " " + ui.Muted.Sprint(settings.ConfigPath) + ":")
	fmt.Println()
	if config.Owner.Name != "" {
		fmt.Printf("  %-14s %s\n", "Name:", ui.Success.Sprint(config.Owner.Name))
	}
	if config.Owner.Email != "" {
		fmt.Printf("  %-14s %s\n", "Email:", ui.Success.Sprint(config.Owner.Email))
	}
	if config.Owner.Company != "" {
		fmt.Printf("  %-14s %s\n", "Company:", ui.Success.Sprint(config.Owner.Company))
	}
	fmt.Printf("  %-14s %s\n", "Private key:", ui.Path.Sprint(config.Security.PrivateKey))
	fmt.Printf("  %-14s %s\n", "Public key:", ui.Path.Sprint(publicPath))
	fmt.Printf("  %-14s %s\n", "Keyrings:", ui.Path.Sprint(keyringsPath))

	// The fingerprint is only shown when the public key file is readable.
	if identity, err := secrets.LoadPublicIdentityFile(publicPath); err == nil {
		fmt.Printf("  %-14s %s\n", "Fingerprint:", ui.Fingerprint.Sprint(identity.Fingerprint().String()))
	} else {
		Logger.Debugf("Could not read public key at %s: %v", publicPath, err)
	}

	return nil
}

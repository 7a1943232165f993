package cmd

import (
	"fmt"

	"github.com/PolarWolf314/keymaker/internal/configs"
	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/PolarWolf314/keymaker/internal/utils"
	"github.com/spf13/cobra"
)

var (
	configInitPrivateKey string
	configInitPublicKey  string
	configInitName       string
	configInitEmail      string
	configInitCompany    string
	configInitKeyrings   string
)

func init() {
	configInitCmd.Flags().StringVarP(&configInitPrivateKey, "private-key", "k", "", "path to your RSA private key")
	configInitCmd.Flags().StringVar(&configInitPublicKey, "public-key", "", "path to your public key (defaults to <private-key>.pub)")
	configInitCmd.Flags().StringVarP(&configInitName, "name", "n", "", "your display name")
	configInitCmd.Flags().StringVarP(&configInitEmail, "email", "e", "", "your email address")
	configInitCmd.Flags().StringVar(&configInitCompany, "company", "", "your company")
	configInitCmd.Flags().StringVar(&configInitKeyrings, "keyrings", "", "directory holding keyrings")
	ConfigCmd.AddCommand(configInitCmd)
}

// resetConfigInitState resets the config init command's global state for testing.
func resetConfigInitState() {
	configInitPrivateKey = ""
	configInitPublicKey = ""
	configInitName = ""
	configInitEmail = ""
	configInitCompany = ""
	configInitKeyrings = ""
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or update the user configuration",
	Long: `Writes the user configuration. Flags that are not given keep their
current value, so init can also be used to change a single setting.

Examples:
  keymaker config init --private-key ~/.ssh/id_rsa
  keymaker config init --email alice@example.com --company "Acme"
  keymaker config init --keyrings ~/keyrings`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config init command")

		settings, config, err := loadConfig()
		if err != nil {
			return err
		}

		if configInitEmail != "" && !utils.IsValidEmail(configInitEmail) {
			fmt.Println(ui.Error.Sprint("✗") + " Invalid email address: " + ui.Highlight.Sprint(configInitEmail))
			return nil
		}

		if configInitPrivateKey != "" {
			path, err := utils.ExpandHome(configInitPrivateKey)
			if err != nil {
				return err
			}
			if !utils.FileExists(path) {
				fmt.Println(ui.Error.Sprint("✗") + " Private key not found at " + ui.Path.Sprint(path))
				return nil
			}
			config.Security.PrivateKey = configInitPrivateKey
		}
		if configInitPublicKey != "" {
			config.Security.PublicKey = configInitPublicKey
		}
		if configInitName != "" {
			config.Owner.Name = configInitName
		}
		if configInitEmail != "" {
			config.Owner.Email = configInitEmail
		}
		if configInitCompany != "" {
			config.Owner.Company = configInitCompany
		}
		if configInitKeyrings != "" {
			config.Storage.KeyringsPath = configInitKeyrings
		}

		if config.Security.PrivateKey == "" {
			fmt.Println(ui.Error.Sprint("✗") + " No private key configured")
			fmt.Println(ui.Info.Sprint("→") + " Pass " + ui.Flag.Sprint("--private-key") + " or create one with " + ui.Code.Sprint("keymaker keys create"))
			return nil
		}

		Logger.Debugf("Saving user config to %s", settings.ConfigPath)
		if err := configs.SaveUserConfig(settings.ConfigPath, config); err != nil {
			return err
		}

		fmt.Println(ui.Success.Sprint("✓") + " Configuration saved to " + ui.Path.Sprint(settings.ConfigPath))
		return nil
	},
}

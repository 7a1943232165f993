package cmd

import (
	"github.com/spf13/cobra"
)

// ConfigCmd is the top-level config command.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage KeyMaker configuration",
	Long: `Provides commands for managing the user configuration.

The configuration names the private key KeyMaker authenticates with and
where keyrings are stored.

Examples:
  # Point KeyMaker at an existing key
  keymaker config init --private-key ~/.ssh/id_rsa --email alice@example.com

  # Show the current configuration
  keymaker config show`,
}

func init() {
	addLoggingFlags(ConfigCmd)
}

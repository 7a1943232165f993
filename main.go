package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/keymaker/cmd"
	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "keymaker",
	Short: "KeyMaker - shared, encrypted credential repositories.",
	Long: `KeyMaker stores credentials in repositories encrypted with a random
key, and shares each repository by wrapping that key for every recipient's
RSA public key.

Usage:
  keymaker <command> [flags]

Available Commands:
  config     Manage the user configuration
  keys       Generate RSA key pairs
  repo       Create, share and inspect repositories
  entry      Add, change and read entries

Run 'keymaker help <command>' for more details on a specific command.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Welcome to KeyMaker! Run 'keymaker --help' to see available commands.")
	},
}

func init() {
	rootCmd.AddCommand(cmd.Commands()...)
}

func main() {
	// Wipe locked key material on Ctrl-C as well as on normal exit.
	memguard.CatchInterrupt()

	err := rootCmd.Execute()
	memguard.Purge()
	if err != nil {
		if !cmd.IsReported(err) {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

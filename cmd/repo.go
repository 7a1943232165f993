package cmd

import (
	"github.com/spf13/cobra"
)

// RepoCmd groups keyring ("repository") management.
var RepoCmd = &cobra.Command{
	Use:     "repo",
	Aliases: []string{"repository"},
	Short:   "Manage encrypted repositories",
	Long: `A repository is a keyring of encrypted entries shared between
recipients. Every member holds a copy of the repository key wrapped for
their own public key.`,
}

func init() {
	addLoggingFlags(RepoCmd)

	RepoCmd.AddCommand(repoCreateCmd)
	RepoCmd.AddCommand(repoListCmd)
	RepoCmd.AddCommand(repoShowCmd)
	RepoCmd.AddCommand(repoRenameCmd)
	RepoCmd.AddCommand(repoShareCmd)
	RepoCmd.AddCommand(repoLogCmd)
	RepoCmd.AddCommand(repoDestroyCmd)
	RepoCmd.AddCommand(repoExportCmd)
	RepoCmd.AddCommand(repoImportCmd)
}

// resetRepoState resets the repo commands' global state for testing.
func resetRepoState() {
	repoDestroyForce = false
	repoExportOutput = ""
	repoImportReplace = false
	resetRepoLogState()
}

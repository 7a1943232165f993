package cmd

import (
	"github.com/PolarWolf314/keymaker/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	entrySet    []string
	entryUnset  []string
	entryReveal bool
	entryMatch  string
	entryForce  bool
)

// EntryCmd groups operations on the entries of one repository.
var EntryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage entries in a repository",
	Long: `Entries are named sets of properties such as username, password and
host. Every property name and value is encrypted with the repository key.

ENTRY arguments accept an entry id or an exact entry name.`,
}

func init() {
	addLoggingFlags(EntryCmd)

	entryAddCmd.Flags().StringArrayVarP(&entrySet, "set", "s", nil, "property to set as key=value (repeatable)")
	entrySetCmd.Flags().StringArrayVarP(&entrySet, "set", "s", nil, "property to set as key=value (repeatable)")
	entrySetCmd.Flags().StringArrayVarP(&entryUnset, "unset", "u", nil, "property to remove (repeatable)")
	entryShowCmd.Flags().BoolVarP(&entryReveal, "reveal", "r", false, "show secret fields in clear text")
	entryListCmd.Flags().StringVarP(&entryMatch, "match", "m", "", "only list entries whose name matches the glob")
	entryRemoveCmd.Flags().BoolVarP(&entryForce, "force", "f", false, "skip the confirmation prompt")

	EntryCmd.AddCommand(entryAddCmd)
	EntryCmd.AddCommand(entrySetCmd)
	EntryCmd.AddCommand(entryShowCmd)
	EntryCmd.AddCommand(entryListCmd)
	EntryCmd.AddCommand(entryRemoveCmd)
}

// resetEntryState resets the entry commands' global state for testing.
func resetEntryState() {
	entrySet = nil
	entryUnset = nil
	entryReveal = false
	entryMatch = ""
	entryForce = false
}

// resolveEntry returns the id of the entry whose id or exact name is ref.
func resolveEntry(session *workflows.Session, ref string) (string, error) {
	entries, err := session.ListEntries()
	if err != nil {
		return "", err
	}

	for _, entry := range entries {
		if entry.ID == ref {
			return entry.ID, nil
		}
	}
	for _, entry := range entries {
		if entry.Name == ref {
			return entry.ID, nil
		}
	}

	// Let the lookup report the missing entry.
	return ref, nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/keymaker/internal/keyring"
	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/spf13/cobra"
)

var entryShowCmd = &cobra.Command{
	Use:   "show REPO ENTRY",
	Short: "Show the properties of an entry",
	Long: `Decrypts and prints one entry. Secret fields such as the password
are masked unless --reveal is given.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting entry show command")
		ctx := context.Background()

		session, err := openRepository(ctx, args[0])
		if err != nil {
			return reportError(err)
		}
		defer session.Close()

		id, err := resolveEntry(session, args[1])
		if err != nil {
			return reportError(err)
		}

		entry, err := session.Entry(id)
		if err != nil {
			return reportError(err)
		}
		defer entry.WipeProperties()

		fmt.Printf("%s %s\n", ui.Label.Sprint("ID"), ui.Muted.Sprint(entry.ID()))
		printEntry(&entry, entryReveal)
		return nil
	},
}

func printEntry(entry *keyring.EntryNode, reveal bool) {
	names := entry.PropertyNames()
	keyring.SortFieldNames(names)

	for _, name := range names {
		value, err := entry.Value(name)
		if err != nil {
			continue
		}
		if keyring.IsSecretField(name) && !reveal {
			value = ui.Mask(value)
		}
		fmt.Printf("%s %s\n", ui.Label.Sprint(keyring.FieldLabel(name)), value)
	}
}

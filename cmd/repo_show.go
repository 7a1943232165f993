package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/spf13/cobra"
)

var repoShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a repository's name, recipients and entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting repo show command")
		ctx := context.Background()

		session, err := openRepository(ctx, args[0])
		if err != nil {
			return reportError(err)
		}
		defer session.Close()

		name, err := session.Name()
		if err != nil {
			return reportError(err)
		}
		recipients, err := session.Recipients()
		if err != nil {
			return reportError(err)
		}
		entries, err := session.ListEntries()
		if err != nil {
			return reportError(err)
		}

		fmt.Printf("%s %s\n", ui.Label.Sprint("Name"), ui.Highlight.Sprint(name))
		fmt.Printf("%s %s\n", ui.Label.Sprint("ID"), session.ID())
		fmt.Println()

		fmt.Println(ui.Label.Sprintf("Recipients (%d)", len(recipients)))
		self := session.Fingerprint()
		for _, fp := range recipients {
			line := "  " + ui.Fingerprint.Sprint(fp.String())
			if fp == self {
				line += " " + ui.Muted.Sprint("you")
			}
			fmt.Println(line)
		}
		fmt.Println()

		fmt.Println(ui.Label.Sprintf("Entries (%d)", len(entries)))
		for _, entry := range entries {
			fmt.Printf("  %s  %s\n", entry.ID, ui.Highlight.Sprint(entry.Name))
		}
		return nil
	},
}

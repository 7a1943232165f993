package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/spf13/cobra"
)

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local repositories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting repo list command")
		ctx := context.Background()

		session, err := newSession(ctx)
		if err != nil {
			return reportError(err)
		}
		defer session.Close()

		repos, err := session.Repositories(ctx)
		if err != nil {
			return reportError(err)
		}
		Logger.Debugf("Found %d repositories", len(repos))

		if len(repos) == 0 {
			fmt.Println("No repositories found.")
			fmt.Println(ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("keymaker repo create NAME") + " to create one")
			return nil
		}

		for _, repo := range repos {
			if !repo.Access {
				fmt.Printf("%s  %s\n", repo.ID, ui.Muted.Sprint("no access"))
				continue
			}
			fmt.Printf("%s  %s  %s\n", repo.ID, ui.Highlight.Sprint(repo.Name),
				ui.Muted.Sprintf("%d entries, %d recipients", repo.Entries, repo.Recipients))
		}
		return nil
	},
}

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/spf13/cobra"
)

var repoDestroyForce bool

func init() {
	repoDestroyCmd.Flags().BoolVarP(&repoDestroyForce, "force", "f", false, "skip the confirmation prompt")
}

var repoDestroyCmd = &cobra.Command{
	Use:   "destroy ID",
	Short: "Delete a local repository",
	Long: `Removes the repository directory, its entries and its history.
Other recipients keep their own copies.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting repo destroy command")
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

		if !repoDestroyForce && !confirm(fmt.Sprintf("Destroy repository %s (%s)?", ui.Highlight.Sprint(name), session.ID())) {
			fmt.Println("Aborted.")
			return nil
		}

		if err := session.Destroy(ctx); err != nil {
			return reportError(err)
		}

		fmt.Println(ui.Success.Sprint("✓") + " Destroyed repository " + ui.Highlight.Sprint(name))
		return nil
	},
}

// confirm asks a yes/no question on stdin. Anything but y or yes is a no.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(input))
	return answer == "y" || answer == "yes"
}

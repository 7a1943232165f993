package cmd

import (
	logger "github.com/PolarWolf314/keymaker/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger
)

// addLoggingFlags registers -v/-d on a command group and builds Logger
// before any of its subcommands run.
func addLoggingFlags(group *cobra.Command) {
	group.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	group.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	group.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		Logger = logger.Logger{
			Verbose: verbose,
			Debug:   debug,
		}
		Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", group.Name(), verbose, debug)
	}
}

// Commands returns every top-level command group.
func Commands() []*cobra.Command {
	return []*cobra.Command{ConfigCmd, KeysCmd, RepoCmd, EntryCmd}
}

// Helper functions for testing

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	Logger = logger.Logger{}

	resetConfigInitState()
	resetKeysCreateState()
	resetRepoState()
	resetEntryState()

	for _, group := range Commands() {
		resetCobraFlagState(group)
	}
}

// resetCobraFlagState clears flag state on cmd and its children so one
// test's flags do not leak into the next.
func resetCobraFlagState(cmd *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		flag.Changed = false
		if slice, ok := flag.Value.(pflag.SliceValue); ok {
			_ = slice.Replace([]string{})
		}
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)

	for _, child := range cmd.Commands() {
		resetCobraFlagState(child)
	}
}

// SetVerbose sets the verbose flag for testing.
func SetVerbose(v bool) {
	verbose = v
}

// SetDebug sets the debug flag for testing.
func SetDebug(d bool) {
	debug = d
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}

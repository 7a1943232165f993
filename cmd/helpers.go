package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/PolarWolf314/keymaker/internal/configs"
	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	"github.com/PolarWolf314/keymaker/internal/ui"
	"github.com/PolarWolf314/keymaker/internal/utils"
	"github.com/PolarWolf314/keymaker/internal/workflows"
	"github.com/briandowns/spinner"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	err := s.Color("cyan")
	if err != nil {
		// If we can't set spinner color, just continue without it.
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	if !verbose && !debug {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if !verbose && !debug {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if !verbose && !debug {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// loadConfig resolves the default settings and the user configuration.
func loadConfig() (*configs.Settings, *configs.UserConfig, error) {
	settings, err := configs.DefaultSettings()
	if err != nil {
		return nil, nil, err
	}
	Logger.Debugf("Loading user config from %s", settings.ConfigPath)

	config, err := configs.LoadUserConfig(settings.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	return settings, config, nil
}

// newSession authenticates with the configured private key. It prompts for
// the passphrase if needed, so call it before starting a spinner.
func newSession(ctx context.Context) (*workflows.Session, error) {
	settings, config, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return workflows.Authenticate(ctx, workflows.AuthOptions{
		Config:   config,
		Settings: settings,
		Passphrase: func() ([]byte, error) {
			return utils.PassphraseFromEnvOrPrompt("Enter passphrase for private key: ")
		},
		Verbose: verbose,
		Debug:   debug,
	})
}

// openRepository authenticates and opens keyring id.
func openRepository(ctx context.Context, id string) (*workflows.Session, error) {
	session, err := newSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := session.Open(ctx, id); err != nil {
		return nil, err
	}
	return session, nil
}

// formatError turns a workflow error into a message for the user.
func formatError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrNotConfigured):
		return ui.Error.Sprint("✗") + " KeyMaker is not configured\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("keymaker config init --private-key PATH") + " first"

	case errors.Is(err, kerrors.ErrPassphraseRequired):
		return ui.Error.Sprint("✗") + " The private key is encrypted\n" +
			ui.Info.Sprint("→") + " Set " + ui.Code.Sprint(utils.PassphraseEnv) + " or run from a terminal"

	case errors.Is(err, kerrors.ErrWrongPassphrase):
		return ui.Error.Sprint("✗") + " Incorrect passphrase for the private key"

	case errors.Is(err, kerrors.ErrKeyringNotFound):
		return ui.Error.Sprint("✗") + " Repository not found\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("keymaker repo list") + " to see available repositories"

	case errors.Is(err, kerrors.ErrAccessDenied):
		return ui.Error.Sprint("✗") + " This repository has not been shared with you\n" +
			ui.Info.Sprint("→") + " Ask a member to run " + ui.Code.Sprint("keymaker repo share") + " with your public key"

	case errors.Is(err, kerrors.ErrAlreadyShared):
		return ui.Warning.Sprint("⚠") + " The recipient already has access to this repository"

	case errors.Is(err, kerrors.ErrEntryNotFound):
		return ui.Error.Sprint("✗") + " Entry not found\n" +
			ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("keymaker entry list") + " to see available entries"

	case errors.Is(err, kerrors.ErrMissingName):
		return ui.Error.Sprint("✗") + " Entries need a name\n" +
			ui.Info.Sprint("→") + " Pass " + ui.Flag.Sprint("--set name=...")

	case errors.Is(err, kerrors.ErrKeyringExists):
		return ui.Warning.Sprint("⚠") + " The repository already exists\n" +
			ui.Info.Sprint("→") + " Pass " + ui.Flag.Sprint("--replace") + " to overwrite the local copy"

	case errors.Is(err, kerrors.ErrCorruptRecord):
		return ui.Error.Sprint("✗") + " Repository data failed to decrypt\n" +
			ui.Info.Sprint("→") + " The files may be corrupted or encrypted under another key"

	case errors.Is(err, kerrors.ErrInvalidArchive):
		return ui.Error.Sprint("✗") + " Not a valid repository archive\n" +
			ui.Muted.Sprint(err.Error())

	default:
		return ui.Error.Sprint("✗") + " " + err.Error()
	}
}

// isUnexpectedError returns true if the error should cause a non-zero exit
// beyond the message already shown.
func isUnexpectedError(err error) bool {
	switch {
	case errors.Is(err, kerrors.ErrNotConfigured),
		errors.Is(err, kerrors.ErrPassphraseRequired),
		errors.Is(err, kerrors.ErrWrongPassphrase),
		errors.Is(err, kerrors.ErrKeyringNotFound),
		errors.Is(err, kerrors.ErrAccessDenied),
		errors.Is(err, kerrors.ErrAlreadyShared),
		errors.Is(err, kerrors.ErrEntryNotFound),
		errors.Is(err, kerrors.ErrMissingName),
		errors.Is(err, kerrors.ErrValueTooLarge),
		errors.Is(err, kerrors.ErrInvalidDateFormat),
		errors.Is(err, kerrors.ErrInvalidPattern),
		errors.Is(err, kerrors.ErrKeyringExists),
		errors.Is(err, kerrors.ErrInvalidArchive),
		errors.Is(err, kerrors.ErrInvalidKey):
		return false
	default:
		return true
	}
}

// reportedError wraps an error whose message has already been shown.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// IsReported reports whether err's message was already printed by a command.
func IsReported(err error) bool {
	var reported reportedError
	return errors.As(err, &reported)
}

// reportError prints err and returns it only if it is unexpected.
func reportError(err error) error {
	fmt.Println(formatError(err))
	if isUnexpectedError(err) {
		return reportedError{err: err}
	}
	return nil
}

// finishWithError leaves err's message for the spinner to print and returns
// err only if it is unexpected.
func finishWithError(s *spinner.Spinner, err error) error {
	s.FinalMSG = formatError(err)
	if isUnexpectedError(err) {
		return reportedError{err: err}
	}
	return nil
}

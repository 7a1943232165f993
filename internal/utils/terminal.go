package utils

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/term"
)

// PassphraseEnv names the environment variable consulted before prompting.
const PassphraseEnv = "KEYMAKER_PASSPHRASE"

// ReadPassphrase prompts the user for a passphrase without echoing input.
// Returns an error if stdin is not a terminal.
func ReadPassphrase(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot read passphrase: stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	return passphrase, nil
}

// PassphraseFromEnvOrPrompt returns the passphrase from KEYMAKER_PASSPHRASE
// when set, otherwise prompts for it. An unset variable and a non-terminal
// stdin yield an empty passphrase so unencrypted keys still load.
func PassphraseFromEnvOrPrompt(prompt string) ([]byte, error) {
	if value, ok := os.LookupEnv(PassphraseEnv); ok {
		return []byte(value), nil
	}
	if !IsTerminal() {
		return nil, nil
	}
	return ReadPassphrase(prompt)
}

// ReadNewPassphrase prompts twice and returns the passphrase if both match.
// KEYMAKER_PASSPHRASE takes precedence, as in PassphraseFromEnvOrPrompt.
func ReadNewPassphrase(prompt string) ([]byte, error) {
	if value, ok := os.LookupEnv(PassphraseEnv); ok {
		return []byte(value), nil
	}
	if !IsTerminal() {
		return nil, nil
	}

	first, err := ReadPassphrase(prompt)
	if err != nil {
		return nil, err
	}
	second, err := ReadPassphrase("Confirm passphrase: ")
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(first, second) {
		return nil, fmt.Errorf("passphrases do not match")
	}

	return first, nil
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Package cmd contains testing utilities shared between command tests.
// This file provides common functions for setting up test environments,
// capturing output, and running commands through a fresh root command.
package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/PolarWolf314/keymaker/internal/configs"
	"github.com/PolarWolf314/keymaker/internal/secrets"
	"github.com/spf13/cobra"
)

// testKeyBits keeps key generation fast in tests.
const testKeyBits = 2048

// testUser is one configured identity inside a test environment.
type testUser struct {
	ConfigPath   string
	PrivateKey   string
	PublicKey    string
	KeyringsPath string
}

// setupTestEnvironment points KeyMaker at temporary config and data
// directories and configures one unencrypted identity.
func setupTestEnvironment(t *testing.T) *testUser {
	t.Helper()

	ResetGlobalState()
	t.Cleanup(ResetGlobalState)

	dataDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataDir)
	t.Setenv("NO_COLOR", "1")

	user := newTestUser(t, "alice", filepath.Join(dataDir, "keymaker", "keyrings"))
	useTestUser(t, user)
	return user
}

// newTestUser writes a key pair and a config file for a new identity.
// All users of one test share keyringsPath.
func newTestUser(t *testing.T, name, keyringsPath string) *testUser {
	t.Helper()

	dir := t.TempDir()
	user := &testUser{
		ConfigPath:   filepath.Join(dir, "config.toml"),
		PrivateKey:   filepath.Join(dir, name),
		KeyringsPath: keyringsPath,
	}

	publicPath, err := secrets.WriteKeyPair(user.PrivateKey, testKeyBits, nil, name+"@example.com")
	if err != nil {
		t.Fatalf("Failed to create key pair: %v", err)
	}
	user.PublicKey = publicPath

	config := &configs.UserConfig{
		Owner:    configs.Owner{Name: name, Email: name + "@example.com"},
		Security: configs.Security{PrivateKey: user.PrivateKey},
		Storage:  configs.Storage{KeyringsPath: keyringsPath},
	}
	if err := configs.SaveUserConfig(user.ConfigPath, config); err != nil {
		t.Fatalf("Failed to save user config: %v", err)
	}

	return user
}

// useTestUser makes user the identity commands authenticate as.
func useTestUser(t *testing.T, user *testUser) {
	t.Helper()
	t.Setenv(configs.ConfigPathEnv, user.ConfigPath)
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	outputChan := make(chan string, 2)

	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stdoutReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stderrReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	stdout := <-outputChan
	stderr := <-outputChan

	return stdout + stderr, err
}

// createTestCLI creates a fresh root command holding every command group.
func createTestCLI(args ...string) *cobra.Command {
	ResetGlobalState()

	rootCmd := &cobra.Command{
		Use:           "keymaker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(Commands()...)
	rootCmd.SetArgs(args)

	return rootCmd
}

// runCommand executes args and returns the combined output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return captureOutput(func() error {
		return createTestCLI(args...).Execute()
	})
}

// mustRun executes args and fails the test on error.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	output, err := runCommand(t, args...)
	if err != nil {
		t.Fatalf("Failed to run %v: %v\nOutput: %s", args, err, output)
	}
	return output
}

var idPattern = regexp.MustCompile(`ID: ([0-9a-f-]{36})`)

// extractID returns the id printed by a create or add command.
func extractID(t *testing.T, output string) string {
	t.Helper()
	match := idPattern.FindStringSubmatch(output)
	if match == nil {
		t.Fatalf("No id found in output: %s", output)
	}
	return match[1]
}

package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	require.NoError(t, writeConfigFixture(home))

	stdout, stderr, err := runBB(t, binaryPath, home, "version")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.NotEmpty(t, stdout)

	stdout, stderr, err = runBB(t, binaryPath, home, "status")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "wallet: not connected")

	stdout, stderr, err = runBB(t, binaryPath, home, "disconnect")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "wallet: not connected")
}

func TestSmokeRejectsMissingConfig(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	_, stderr, err := runBB(t, binaryPath, home, "status", "--config", filepath.Join(home, "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, stderr, "read config")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "bb-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/bb")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build bb binary: %s", string(output))
	return binaryPath
}

func runBB(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

// writeConfigFixture points every endpoint at a closed local port so the
// flow runs offline.
func writeConfigFixture(home string) error {
	configDir := filepath.Join(home, ".billboard")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}

	config := `rpc_url = "http://127.0.0.1:1"
injected_url = "http://127.0.0.1:1"
bridge_url = "http://127.0.0.1:1"

[log]
level = "error"
`

	return os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(config), 0o600)
}

package e2e

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Throwaway key (hardhat account #0); never used on a real network.
const (
	smokePrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	smokeWallet     = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestSmokeFlow(t *testing.T) {
	binaryPath := buildBinary(t)

	stdout, stderr, err := runFarmctl(t, binaryPath, "version")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "dev")

	configFile := writeEmptyFleetFixture(t)

	stdout, stderr, err = runFarmctl(t, binaryPath, "farm", "--config", configFile)
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "No proxies found; nothing to farm.")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "farmctl-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/farmctl")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build farmctl binary: %s", string(output))
	return binaryPath
}

func runFarmctl(t *testing.T, binaryPath string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = os.Environ()

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

// writeEmptyFleetFixture produces a valid config whose proxy list is empty:
// the farm command must treat it as a clean nothing-to-do run.
func writeEmptyFleetFixture(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	proxyFile := filepath.Join(dir, "proxy_list.txt")
	require.NoError(t, os.WriteFile(proxyFile, []byte("# intentionally empty\n"), 0o600))

	content := fmt.Sprintf(`wallet_address = %q
private_key = %q
proxy_file = %q

[log]
level = "disabled"
`, smokeWallet, smokePrivateKey, proxyFile)

	configFile := filepath.Join(dir, "farmctl.toml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o600))
	return configFile
}

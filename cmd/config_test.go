package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "farmctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
wallet_address = "0xabc"
private_key = "deadbeef"
`)

	cfg, err := loadConfig(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "https://dashboard.layeredge.io", cfg.BaseURL)
	assert.Equal(t, "proxy_list.txt", cfg.ProxyFile)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadConfigReadsAllFields(t *testing.T) {
	path := writeConfigFile(t, `
base_url = "https://staging.layeredge.io"
wallet_address = "0xabc"
private_key_file = "/tmp/key"
proxy_file = "/tmp/proxies.txt"
ledger_path = "/tmp/ledger.toml"
poll_interval = "2s"
request_timeout = "30s"

[log]
level = "debug"
format = "json"
`)

	cfg, err := loadConfig(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "https://staging.layeredge.io", cfg.BaseURL)
	assert.Equal(t, "/tmp/key", cfg.PrivateKeyFile)
	assert.Equal(t, "/tmp/proxies.txt", cfg.ProxyFile)
	assert.Equal(t, "/tmp/ledger.toml", cfg.LedgerPath)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("FARMCTL_POLL_INTERVAL", "1s")
	t.Setenv("FARMCTL_WALLET_ADDRESS", "0xenv")
	t.Setenv("FARMCTL_PRIVATE_KEY", "deadbeef")

	path := writeConfigFile(t, `
wallet_address = "0xfile"
private_key = "cafe"
`)

	cfg, err := loadConfig(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "0xenv", cfg.WalletAddress)
	assert.Equal(t, time.Second, cfg.PollInterval)
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing wallet",
			content: `private_key = "deadbeef"`,
			wantErr: "wallet_address is required",
		},
		{
			name:    "missing key",
			content: `wallet_address = "0xabc"`,
			wantErr: "private_key or private_key_file is required",
		},
		{
			name: "non positive interval",
			content: `
wallet_address = "0xabc"
private_key = "deadbeef"
poll_interval = "0s"
`,
			wantErr: "poll_interval must be positive",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfigFile(t, tc.content)

			_, err := loadConfig(viper.New(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadConfigMissingExplicitFileFails(t *testing.T) {
	_, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestNewLoggerRejectsBadSettings(t *testing.T) {
	base := config{LogLevel: "info", LogFormat: "console"}

	_, err := newLogger(base)
	require.NoError(t, err)

	bad := base
	bad.LogLevel = "verbose"
	_, err = newLogger(bad)
	assert.Error(t, err)

	bad = base
	bad.LogFormat = "xml"
	_, err = newLogger(bad)
	assert.Error(t, err)
}

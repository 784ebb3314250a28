package twitchhls

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func clearConfigEnv(t *testing.T) {
	for _, key := range []string{"TWITCHHLS_GQL_URL", "TWITCHHLS_USHER_URL", "TWITCHHLS_CLIENT_ID", "TWITCHHLS_USER_AGENT"} {
		unsetEnv(t, key)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://gql.twitch.tv/gql", cfg.GQLURL)
	assert.Equal(t, "https://usher.ttvnw.net/api/channel/hls/%s.m3u8", cfg.UsherURL)
	assert.Equal(t, "kimne78kx3ncx6brgo4mv6wki5h1ko", cfg.ClientID)
}

func TestLoadConfig_NoOverrides(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_MissingFileIgnored(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TWITCHHLS_CLIENT_ID", " other-client ")
	t.Setenv("TWITCHHLS_GQL_URL", "http://127.0.0.1:9000/gql")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "other-client", cfg.ClientID)
	assert.Equal(t, "http://127.0.0.1:9000/gql", cfg.GQLURL)
	assert.Equal(t, UsherAPIMask, cfg.UsherURL)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TWITCHHLS_USER_AGENT=twitchhls-test\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "twitchhls-test", cfg.UserAgent)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"gql not a url", "TWITCHHLS_GQL_URL", "not a url"},
		{"usher without login verb", "TWITCHHLS_USHER_URL", "https://usher.ttvnw.net/api/channel/hls/972tv.m3u8"},
		{"usher bad scheme", "TWITCHHLS_USHER_URL", "ftp://usher.ttvnw.net/api/channel/hls/%s.m3u8"},
		{"usher no host", "TWITCHHLS_USHER_URL", "/api/channel/hls/%s.m3u8"},
		{"usher two verbs", "TWITCHHLS_USHER_URL", "https://usher.ttvnw.net/%s/%s.m3u8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig("")
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

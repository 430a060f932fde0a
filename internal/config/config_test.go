package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"VOKABEL_DB", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default().DB, cfg.DB)
	assert.Equal(t, "cloze", cfg.Quiz.Mode)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, 12*time.Hour, cfg.Server.TokenTTL)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
	assert.Empty(t, cfg.LLM.Provider)
}

func TestLoadLayers(t *testing.T) {
	isolate(t)
	path := writeFile(t, `
db:
  driver: postgres
  dsn: postgres://file/db
user:
  email: anna@example.com
server:
  addr: 0.0.0.0:9000
  token_ttl: 1h
quiz:
  mode: choice
llm:
  provider: mock
`)
	t.Setenv("VOKABEL_SERVER__ADDR", "127.0.0.1:7000")
	t.Setenv("VOKABEL_DB", "postgres://env/db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("user", "", "")
	flags.String("mode", "cloze", "")
	flags.Bool("verbose", false, "")
	require.NoError(t, flags.Parse([]string{"--user", "ben@example.com", "--verbose"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "postgres://env/db", cfg.DB.DSN, "env overrides file")
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr, "env overrides file")
	assert.Equal(t, time.Hour, cfg.Server.TokenTTL)
	assert.Equal(t, "ben@example.com", cfg.User.Email, "flag overrides file")
	assert.Equal(t, "choice", cfg.Quiz.Mode, "unchanged flag keeps file value")
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAI.Model, "defaults survive")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	isolate(t)
	tests := map[string]string{
		"driver":    "db:\n  driver: oracle\n",
		"dsn":       "db:\n  driver: mysql\n",
		"mode":      "quiz:\n  mode: essay\n",
		"direction": "quiz:\n  direction: fr->de\n",
		"email":     "user:\n  email: not-an-email\n",
		"secret":    "server:\n  jwt_secret: short\n",
		"log":       "log:\n  level: loud\n",
		"provider":  "llm:\n  provider: llama\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body), nil)
			assert.Error(t, err)
		})
	}
}

func TestDiscoverProviderFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "ant-key", cfg.LLM.Anthropic.APIKey)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.jwt_secret", envKey("VOKABEL_SERVER__JWT_SECRET"))
	assert.Equal(t, "db.dsn", envKey("VOKABEL_DB"))
	assert.Equal(t, "llm.openai.api_key", envKey("VOKABEL_LLM__OPENAI__API_KEY"))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp keeps a developer's .env out of the test.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	c, err := Load("", "instance.db")
	require.NoError(t, err)

	assert.Equal(t, ":8081", c.Server.Addr)
	assert.Equal(t, "release", c.Server.Mode)
	assert.Equal(t, "instance.db", c.Database.DSN)
	assert.True(t, c.Database.AutoMigrate)
	assert.False(t, c.Database.LogMode)
	assert.Equal(t, "", c.Session.Secret)
	assert.Equal(t, "ledger_session", c.Session.CookieName)
	assert.Equal(t, 720*time.Hour, c.Session.TTL)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
	assert.NoError(t, c.Validate())
}

func TestLoadEmptyDefaultDSN(t *testing.T) {
	chdirTemp(t)

	c, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "ledger.db", c.Database.DSN)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("LEDGER_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("DB_DSN", "postgres://u:p@localhost:5432/ledger")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("LEDGER_SESSION_TTL", "2h")
	t.Setenv("LEDGER_LOG_FORMAT", "json")

	c, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", c.Server.Addr)
	assert.Equal(t, "postgres://u:p@localhost:5432/ledger", c.Database.DSN)
	assert.False(t, c.Database.AutoMigrate)
	assert.Equal(t, 2*time.Hour, c.Session.TTL)
	assert.Equal(t, "json", c.Log.Format)
}

func TestLoadPortFallback(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "7070")

	c, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, ":7070", c.Server.Addr)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEDGER_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("LEDGER_LOG_LEVEL") })

	c, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "ledger.yaml")
	yaml := "server:\n  mode: debug\ntemplates:\n  dir: ./web/templates\n  reload: true\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	c, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Server.Mode)
	assert.Equal(t, "./web/templates", c.Templates.Dir)
	assert.True(t, c.Templates.Reload)
	assert.NoError(t, c.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	chdirTemp(t)

	_, err := Load("/does/not/exist.yaml", "")
	assert.Error(t, err)
}

func TestValidateCollectsProblems(t *testing.T) {
	c := Config{
		Server:    ServerConfig{Addr: "", Mode: "loud"},
		Session:   SessionConfig{CookieName: "", TTL: time.Second, Secret: "short"},
		Templates: TemplatesConfig{Reload: true},
		Log:       LogConfig{Level: "chatty", Format: "xml"},
	}

	err := c.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"server address",
		"server mode",
		"database DSN",
		"cookie name",
		"session ttl",
		"session secret",
		"template reload",
		"log level",
		"log format",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
sources:
  - name: The Verge
    type: rss
    url: https://www.theverge.com/rss/index.xml
    enabled: true
  - name: Racefans
    type: RSS
    url: https://www.racefans.net/feed/
    enabled: "False"
  - name: Hacker News
    type: hackernews
    enabled: "yes"
    full_content: "true"
  - name: Slashdot
    type: rss
    url: https://rss.slashdot.org/Slashdot/slashdotMain
llm:
  host: localhost
  port: 11434
  model: llama3
scrape_interval_minutes: 30
retention_days: 3
summary_delay_seconds: 0
`

func TestParse(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	require.Len(t, cfg.Sources, 4)
	assert.True(t, cfg.Sources[0].Enabled)
	assert.False(t, cfg.Sources[1].Enabled)
	assert.Equal(t, SourceRSS, cfg.Sources[1].Type)
	assert.True(t, cfg.Sources[2].Enabled)
	assert.True(t, cfg.Sources[2].FullContent)
	assert.True(t, cfg.Sources[3].Enabled, "enabled defaults to true")
	assert.False(t, cfg.Sources[3].FullContent)

	require.NotNil(t, cfg.LLM)
	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "standard", cfg.LLM.SummaryStyle)

	assert.Equal(t, 30*time.Minute, cfg.ScrapeInterval())
	assert.Equal(t, 3, cfg.RetentionDays)
	assert.Equal(t, 10, cfg.RetryLimit)
	assert.Equal(t, time.Duration(0), cfg.SummaryDelay())
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "data/articles.db", cfg.Database.DSN)
	assert.Equal(t, ":5000", cfg.Web.Listen)

	enabled := cfg.EnabledSources()
	require.Len(t, enabled, 3)
	assert.Equal(t, "The Verge", enabled[0].Name)
	assert.Equal(t, "Hacker News", enabled[1].Name)
}

func TestParseDefaultsWithoutLLM(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("sources: []\n"))
	require.NoError(t, err)

	assert.Nil(t, cfg.LLM)
	assert.Equal(t, time.Hour, cfg.ScrapeInterval())
	assert.Equal(t, 7, cfg.RetentionDays)
	assert.Equal(t, 2*time.Second, cfg.SummaryDelay())
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"bad flag":        "sources:\n  - {name: a, type: rss, url: http://x, enabled: maybe}\n",
		"missing name":    "sources:\n  - {type: rss, url: http://x}\n",
		"rss without url": "sources:\n  - {name: a, type: rss}\n",
		"bad driver":      "database: {driver: mysql, dsn: x}\n",
		"postgres no dsn": "database: {driver: postgres}\n",
		"llm no model":    "llm: {host: localhost, port: 11434}\n",
		"llm bad vendor":  "llm: {provider: claude, model: x}\n",
		"broken yaml":     "sources: [\n",
	}

	for name, raw := range cases {
		_, err := Parse([]byte(raw))
		assert.Error(t, err, name)
	}
}

func TestParseBool(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"true", "TRUE", "yes", "On", "1"} {
		got, err := ParseBool(v)
		require.NoError(t, err)
		assert.True(t, got, v)
	}
	for _, v := range []string{"false", "No", "off", "0", ""} {
		got, err := ParseBool(v)
		require.NoError(t, err)
		assert.False(t, got, v)
	}

	_, err := ParseBool("sometimes")
	assert.Error(t, err)
}

func TestLoadAppliesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	t.Setenv("NEWS_DIGEST_CONFIG_PATH", path)
	t.Setenv("NEWS_DIGEST_DATABASE_DSN", "/tmp/other.db")
	t.Setenv("NEWS_DIGEST_LOG_LEVEL", "debug")
	t.Setenv("NEWS_DIGEST_LLM_API_KEY", "secret")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, path, env.ConfigPath)

	cfg, err := Load(env)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.Database.DSN)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(Env{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}

func TestLoadExampleConfig(t *testing.T) {
	t.Parallel()

	cfg, err := Load(Env{ConfigPath: filepath.Join("..", "..", "config", "sources.yaml")})
	require.NoError(t, err)

	assert.Len(t, cfg.Sources, 6)
	assert.Len(t, cfg.EnabledSources(), 5)
	require.NotNil(t, cfg.LLM)
	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 2*time.Second, cfg.SummaryDelay())
	assert.Equal(t, []string{"sponsored", "advertisement"}, cfg.FilterKeywords)
}

func TestParseFlagForms(t *testing.T) {
	t.Parallel()

	raw := `
sources:
  - {name: plain, type: hackernews, enabled: true, full_content: false}
  - {name: quoted, type: hackernews, enabled: "Off", full_content: "on"}
  - {name: number, type: hackernews, enabled: 0, full_content: 1}
  - {name: tilde, type: hackernews, enabled: ~, full_content: ~}
  - {name: absent, type: hackernews}
`
	cfg, err := Parse([]byte(raw))
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 5)

	want := []struct{ enabled, fullContent bool }{
		{true, false},
		{false, true},
		{false, true},
		{true, false},
		{true, false},
	}
	for i, w := range want {
		assert.Equal(t, w.enabled, cfg.Sources[i].Enabled, cfg.Sources[i].Name)
		assert.Equal(t, w.fullContent, cfg.Sources[i].FullContent, cfg.Sources[i].Name)
	}

	_, err = Parse([]byte("sources:\n  - {name: a, type: hackernews, enabled: [true]}\n"))
	assert.Error(t, err)
}

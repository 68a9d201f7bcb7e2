package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"gopkg.in/yaml.v3"
)

const (
	SourceRSS        = "rss"
	SourceHackerNews = "hackernews"

	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	defaultScrapeInterval = 60
	defaultRetentionDays  = 7
	defaultRetryLimit     = 10
	defaultSummaryDelay   = 2
	defaultSummaryStyle   = "standard"
	defaultListen         = ":5000"
	defaultDSN            = "data/articles.db"
	envPrefix             = "NEWS_DIGEST"
)

// Конфиг приложения. Читается из yaml файла, часть полей можно переопределить env переменными
type Config struct {
	Sources               []SourceConfig `yaml:"sources"`
	LLM                   *LLMConfig     `yaml:"llm"`
	ScrapeIntervalMinutes int            `yaml:"scrape_interval_minutes"`
	RetentionDays         int            `yaml:"retention_days"`
	RetryLimit            int            `yaml:"retry_limit"`
	// Пауза после каждого запроса к модели, чтобы не перегружать локальный сервер
	SummaryDelaySeconds *int           `yaml:"summary_delay_seconds"`
	Database            DatabaseConfig `yaml:"database"`
	Web                 WebConfig      `yaml:"web"`
	Telegram            TelegramConfig `yaml:"telegram"`
	LogLevel            string         `yaml:"log_level"`
	// Записи с такими словами в заголовке или категориях пропускаются
	FilterKeywords []string `yaml:"filter_keywords"`
}

type SourceConfig struct {
	Name    string
	Type    string
	URL     string
	Enabled bool
	// Для каждой записи с коротким описанием сразу тянуть полный текст статьи
	FullContent bool
}

// Отсутствие блока llm в конфиге означает, что суммаризация выключена
type LLMConfig struct {
	Provider     string `yaml:"provider"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Model        string `yaml:"model"`
	SummaryStyle string `yaml:"summary_style"`
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type WebConfig struct {
	Listen string `yaml:"listen"`
}

type TelegramConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID int64  `yaml:"channel_id"`
}

// Переменные окружения. Итоговые имена с префиксом, например NEWS_DIGEST_DATABASE_DSN
type Env struct {
	ConfigPath       string `env:"CONFIG_PATH" default:"config/sources.yaml"`
	DatabaseDriver   string `env:"DATABASE_DRIVER"`
	DatabaseDSN      string `env:"DATABASE_DSN"`
	WebListen        string `env:"WEB_LISTEN"`
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	LLMAPIKey        string `env:"LLM_API_KEY"`
	LogLevel         string `env:"LOG_LEVEL"`
}

// LoadEnv читает переменные окружения через aconfig
func LoadEnv() (Env, error) {
	var env Env

	loader := aconfig.LoaderFor(&env, aconfig.Config{
		EnvPrefix: envPrefix,
		SkipFiles: true,
		SkipFlags: true,
	})

	if err := loader.Load(); err != nil {
		return Env{}, fmt.Errorf("load env: %w", err)
	}

	return env, nil
}

// Load читает файл конфига, применяет переменные окружения и проставляет значения по умолчанию
func Load(env Env) (Config, error) {
	data, err := os.ReadFile(env.ConfigPath)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", env.ConfigPath, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", env.ConfigPath, err)
	}

	cfg.applyEnv(env)

	return cfg, nil
}

func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(env Env) {
	if env.DatabaseDriver != "" {
		c.Database.Driver = env.DatabaseDriver
	}
	if env.DatabaseDSN != "" {
		c.Database.DSN = env.DatabaseDSN
	}
	if env.WebListen != "" {
		c.Web.Listen = env.WebListen
	}
	if env.TelegramBotToken != "" {
		c.Telegram.BotToken = env.TelegramBotToken
	}
	if env.LLMAPIKey != "" && c.LLM != nil {
		c.LLM.APIKey = env.LLMAPIKey
	}
	if env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
}

func (c *Config) applyDefaults() {
	if c.ScrapeIntervalMinutes <= 0 {
		c.ScrapeIntervalMinutes = defaultScrapeInterval
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = defaultRetentionDays
	}
	if c.RetryLimit <= 0 {
		c.RetryLimit = defaultRetryLimit
	}
	if c.SummaryDelaySeconds == nil {
		delay := defaultSummaryDelay
		c.SummaryDelaySeconds = &delay
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.DSN == "" && c.Database.Driver == DriverSQLite {
		c.Database.DSN = defaultDSN
	}
	if c.Web.Listen == "" {
		c.Web.Listen = defaultListen
	}
	if c.LLM != nil {
		if c.LLM.Provider == "" {
			c.LLM.Provider = ProviderOllama
		}
		if c.LLM.SummaryStyle == "" {
			c.LLM.SummaryStyle = defaultSummaryStyle
		}
	}
}

func (c Config) Validate() error {
	for i, src := range c.Sources {
		if strings.TrimSpace(src.Name) == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if src.Type == SourceRSS && src.URL == "" {
			return fmt.Errorf("source %s: url is required for rss", src.Name)
		}
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("database: unsupported driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database: dsn is required")
	}

	if c.LLM != nil {
		switch c.LLM.Provider {
		case ProviderOllama:
			if c.LLM.Host == "" || c.LLM.Port == 0 {
				return fmt.Errorf("llm: host and port are required for ollama")
			}
		case ProviderOpenAI:
		default:
			return fmt.Errorf("llm: unsupported provider %q", c.LLM.Provider)
		}
		if c.LLM.Model == "" {
			return fmt.Errorf("llm: model is required")
		}
	}

	return nil
}

func (c Config) ScrapeInterval() time.Duration {
	return time.Duration(c.ScrapeIntervalMinutes) * time.Minute
}

func (c Config) SummaryDelay() time.Duration {
	if c.SummaryDelaySeconds == nil {
		return defaultSummaryDelay * time.Second
	}
	return time.Duration(*c.SummaryDelaySeconds) * time.Second
}

// EnabledSources отдает только включенные источники в порядке из конфига
func (c Config) EnabledSources() []SourceConfig {
	var enabled []SourceConfig
	for _, src := range c.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}
	return enabled
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings that are common for all bots.
type TelegramConfig struct {
	Token string `yaml:"token" envconfig:"BOT_TOKEN"`
	// AdminID is the only caller allowed to run admin-only commands. Zero disables them.
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// SenderConfig tunes the asynchronous outbound dispatcher.
type SenderConfig struct {
	QueueSize      int `yaml:"queue_size" envconfig:"SENDER_QUEUE_SIZE"`
	Workers        int `yaml:"workers" envconfig:"SENDER_WORKERS"`
	MaxRetries     int `yaml:"max_retries" envconfig:"SENDER_MAX_RETRIES"`
	RetryBackoffMS int `yaml:"retry_backoff_ms" envconfig:"SENDER_RETRY_BACKOFF_MS"`
}

// OpsConfig configures the operational HTTP endpoint (health and metrics).
// An empty Listen disables the endpoint.
type OpsConfig struct {
	Listen string `yaml:"listen" envconfig:"OPS_LISTEN"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Logging  LoggingConfig  `yaml:"logging"`
	Sender   SenderConfig   `yaml:"sender"`
	Ops      OpsConfig      `yaml:"ops"`
}

// ReadFile loads the YAML file at path into dst and overlays environment variables.
// A .env file in the working directory is loaded first when present.
func ReadFile(path string, dst any) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", dst); err != nil {
		return fmt.Errorf("failed to process env: %w", err)
	}
	return nil
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := ReadFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the core sections and fills defaults: run mode falls
// back to longpoll ("polling" is accepted as an alias) and webhook mode needs
// a complete webhook section.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	tc := &cfg.Telegram
	switch {
	case tc.Token == "":
		return errors.New("telegram token is required")
	case tc.AdminID < 0:
		return errors.New("telegram.admin_id must be >= 0")
	case tc.LongPollTimeoutSeconds < 0:
		return errors.New("telegram.longpoll_timeout_seconds must be >= 0")
	}

	mode := strings.ToLower(strings.TrimSpace(tc.RunMode))
	switch mode {
	case "", "polling", RunModeLongpoll:
		mode = RunModeLongpoll
	case RunModeWebhook:
		if err := cfg.Webhook.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", tc.RunMode)
	}
	tc.RunMode = mode

	sc := cfg.Sender
	if min(sc.QueueSize, sc.Workers, sc.MaxRetries, sc.RetryBackoffMS) < 0 {
		return errors.New("sender settings must be >= 0")
	}
	cfg.Ops.Listen = strings.TrimSpace(cfg.Ops.Listen)
	return nil
}

func (w WebhookConfig) validate() error {
	const when = "when telegram.run_mode is 'webhook'"
	switch {
	case strings.TrimSpace(w.URL) == "":
		return fmt.Errorf("webhook.url is required %s", when)
	case strings.TrimSpace(w.Listen) == "":
		return fmt.Errorf("webhook.listen is required %s", when)
	case w.Port <= 0:
		return fmt.Errorf("webhook.port must be > 0 %s", when)
	}
	return nil
}

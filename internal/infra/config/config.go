package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
	} `yaml:"server"`
	TelegramBot struct {
		Token         string        `yaml:"token"`
		Mode          string        `yaml:"mode"` // "polling" или "webhook"
		PollTimeout   time.Duration `yaml:"poll_timeout"`
		WebhookURL    string        `yaml:"webhook_url"`
		WebhookListen string        `yaml:"webhook_listen"`
		Debug         bool          `yaml:"debug"`
	} `yaml:"telegram_bot"`
	Database struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"dbname"`
	} `yaml:"database"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		QuizTTL  time.Duration `yaml:"quiz_ttl"`
	} `yaml:"redis"`
	Platform struct {
		BaseURL           string        `yaml:"base_url"`
		FrontendURL       string        `yaml:"frontend_url"`
		RequestTimeout    time.Duration `yaml:"request_timeout"`
		HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
		CountdownInterval time.Duration `yaml:"countdown_interval"`
	} `yaml:"platform"`
	Report struct {
		FontDir string `yaml:"font_dir"`
	} `yaml:"report"`
	Logger struct {
		Mode string `yaml:"mode"`
	} `yaml:"logger"`
}

// Значения по умолчанию для протокола сессии
const (
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultCountdownInterval = time.Second
	DefaultRequestTimeout    = 10 * time.Second
	DefaultQuizTTL           = 10 * time.Minute
	DefaultPollTimeout       = 10 * time.Second
)

// Режимы получения обновлений telegram
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// LoadConfig читает YAML-файл, затем применяет переменные окружения (.env подхватывается, если есть)
func LoadConfig(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	config := &Config{}
	if err := yaml.NewDecoder(f).Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}

	_ = godotenv.Load()
	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"QUIZBOT_TELEGRAM_TOKEN":        &c.TelegramBot.Token,
		"QUIZBOT_PLATFORM_URL":          &c.Platform.BaseURL,
		"QUIZBOT_PLATFORM_FRONTEND_URL": &c.Platform.FrontendURL,
		"QUIZBOT_DATABASE_PASSWORD":     &c.Database.Password,
		"QUIZBOT_REDIS_ADDR":            &c.Redis.Addr,
		"QUIZBOT_LOG_MODE":              &c.Logger.Mode,
		"QUIZBOT_BOT_MODE":              &c.TelegramBot.Mode,
		"QUIZBOT_WEBHOOK_URL":           &c.TelegramBot.WebhookURL,
	}
	for name, field := range overrides {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*field = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.TelegramBot.Mode == "" {
		c.TelegramBot.Mode = ModePolling
	}
	if c.TelegramBot.WebhookListen == "" {
		c.TelegramBot.WebhookListen = ":8443"
	}
	if c.TelegramBot.PollTimeout == 0 {
		c.TelegramBot.PollTimeout = DefaultPollTimeout
	}
	if c.Redis.QuizTTL == 0 {
		c.Redis.QuizTTL = DefaultQuizTTL
	}
	if c.Platform.RequestTimeout == 0 {
		c.Platform.RequestTimeout = DefaultRequestTimeout
	}
	if c.Platform.HeartbeatInterval == 0 {
		c.Platform.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.Platform.CountdownInterval == 0 {
		c.Platform.CountdownInterval = DefaultCountdownInterval
	}
	c.Platform.BaseURL = strings.TrimRight(c.Platform.BaseURL, "/")
	c.Platform.FrontendURL = strings.TrimRight(c.Platform.FrontendURL, "/")
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	var errs []error
	if c.TelegramBot.Token == "" {
		errs = append(errs, errors.New("telegram_bot.token is required"))
	}
	switch c.TelegramBot.Mode {
	case ModePolling:
	case ModeWebhook:
		if c.TelegramBot.WebhookURL == "" {
			errs = append(errs, errors.New("telegram_bot.webhook_url is required in webhook mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown telegram_bot.mode %q", c.TelegramBot.Mode))
	}
	if c.Platform.BaseURL == "" {
		errs = append(errs, errors.New("platform.base_url is required"))
	}
	if c.Platform.HeartbeatInterval < 0 || c.Platform.CountdownInterval < 0 || c.Platform.RequestTimeout < 0 {
		errs = append(errs, errors.New("platform intervals must be positive"))
	}
	return errors.Join(errs...)
}

// DatabaseURL строка подключения к PostgreSQL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
}

package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server      ServerConfig      `envPrefix:"SERVER_"`
	Log         LogConfig         `envPrefix:"LOG_"`
	Database    DatabaseConfig    `envPrefix:"DATABASE_"`
	LLM         LLMConfig         `envPrefix:"LLM_"`
	WooCommerce WooCommerceConfig `envPrefix:"WOOCOMMERCE_"`
	Kafka       KafkaConfig       `envPrefix:"KAFKA_"`
	Assistant   AssistantConfig   `envPrefix:"ASSISTANT_"`
}

type ServerConfig struct {
	Addr string `env:"ADDR" envDefault:":8080"`
	// MaxUploadSize bounds multipart file uploads, in bytes.
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"`
	// CORSOrigins is a regular expression matched against the Origin header.
	CORSOrigins string `env:"CORS_ORIGINS"`
	Pprof       bool   `env:"PPROF" envDefault:"false"`
}

type LogConfig struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Production bool   `env:"PRODUCTION" envDefault:"true"`
}

// DatabaseConfig is optional: sessions are kept in memory when Hosts is empty.
type DatabaseConfig struct {
	Hosts    []string `env:"HOSTS" envSeparator:","`
	Direct   bool     `env:"DIRECT" envDefault:"false"`
	Username string   `env:"USERNAME"`
	Password string   `env:"PASSWORD"`
	AuthDB   string   `env:"AUTH_DB" envDefault:"admin"`
	Database string   `env:"DATABASE" envDefault:"shop_assistant"`

	// SessionTTL expires sessions idle this long; zero keeps them forever.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`
}

type LLMConfig struct {
	GoogleAIAPIKey   string        `env:"GOOGLE_AI_API_KEY"`
	Model            string        `env:"MODEL" envDefault:"googleai/gemini-2.5-flash"`
	Timeout          time.Duration `env:"TIMEOUT" envDefault:"60s"`
	SystemPromptFile string        `env:"SYSTEM_PROMPT_FILE"`
}

type WooCommerceConfig struct {
	UserAgent          string        `env:"USER_AGENT" envDefault:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`
	IdentityTimeout    time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"10s"`
	Timeout            time.Duration `env:"TIMEOUT" envDefault:"30s"`
	InsecureSkipVerify bool          `env:"INSECURE_SKIP_VERIFY" envDefault:"false"`
}

type KafkaConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"false"`
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"shop-assistant.uploads"`
}

type AssistantConfig struct {
	ContextLimit      int  `env:"CONTEXT_LIMIT" envDefault:"10000"`
	HistoryTurns      int  `env:"HISTORY_TURNS" envDefault:"5"`
	KeepTrailingText  bool `env:"KEEP_TRAILING_TEXT" envDefault:"false"`
	PreviewCharacters int  `env:"PREVIEW_CHARACTERS" envDefault:"500"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

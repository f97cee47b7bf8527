package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Team      TeamConfig      `mapstructure:"team"`
	Messaging MessagingConfig `mapstructure:"messaging"`
	Search    SearchConfig    `mapstructure:"search"`
	Identity  IdentityConfig  `mapstructure:"identity"`
	Storage   StorageConfig   `mapstructure:"storage"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type TeamConfig struct {
	// MaxSize bounds team membership per event.
	MaxSize int `mapstructure:"max_size"`
}

type MessagingConfig struct {
	SMSEnabled bool   `mapstructure:"sms_enabled"`
	SenderID   string `mapstructure:"sender_id"`
	// GatewayURL points at the SMS/push gateway. Empty disables delivery.
	GatewayURL string `mapstructure:"gateway_url"`
}

type IdentityConfig struct {
	// URL of the user directory service.
	URL string `mapstructure:"url"`
}

type StorageConfig struct {
	// Credentials holds the Google service account key as JSON.
	Credentials string `mapstructure:"credentials"`
	// FolderID is the Drive folder resumes are uploaded into.
	FolderID string `mapstructure:"folder_id"`
}

type SearchConfig struct {
	// Strategy picks the attendee search implementation: "plain" or "fuzzy".
	Strategy string `mapstructure:"strategy"`
}

// Load reads configuration from EVENT_API_* environment variables with sane
// defaults for local runs.
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("EVENT_API")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "event-api")
	v.SetDefault("team.max_size", 4)
	v.SetDefault("messaging.sms_enabled", false)
	v.SetDefault("search.strategy", "plain")
	v.SetDefault("identity.url", "http://localhost:8081")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Mongo.Database == "" {
		return nil, fmt.Errorf("mongo.database must not be empty")
	}
	if cfg.Team.MaxSize < 1 {
		return nil, fmt.Errorf("team.max_size must be at least 1, got %d", cfg.Team.MaxSize)
	}
	switch cfg.Search.Strategy {
	case "plain", "fuzzy":
	default:
		return nil, fmt.Errorf("unknown search.strategy %q", cfg.Search.Strategy)
	}

	return &cfg, nil
}

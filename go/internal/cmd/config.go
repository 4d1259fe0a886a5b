package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/draftsync/go/clients/draftapi"
	"github.com/mcdev12/draftsync/go/internal/draft/gateway"
	"github.com/mcdev12/draftsync/go/internal/draft/mirror"
)

type Config struct {
	APIURL             string        `yaml:"api_url"`
	APITimeout         time.Duration `yaml:"api_timeout"`
	ChannelURL         string        `yaml:"channel_url"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	IdentityFile       string        `yaml:"identity_file"`
	EventID            int           `yaml:"event_id"`
	InspectAddr        string        `yaml:"inspect_addr"`
	NATSURL            string        `yaml:"nats_url"`
	NATSSubjectPrefix  string        `yaml:"nats_subject_prefix"`
	NATSStream         string        `yaml:"nats_stream"`
	LogLevel           string        `yaml:"log_level"`
}

func defaultConfig() Config {
	conn := gateway.DefaultConnectionConfig()
	return Config{
		APIURL:             draftapi.DefaultBaseURL,
		APITimeout:         30 * time.Second,
		ChannelURL:         conn.URL,
		ReconnectBaseDelay: conn.ReconnectBaseDelay,
		ReconnectMaxDelay:  conn.ReconnectMaxDelay,
		IdentityFile:       ".draftsync.yaml",
		NATSSubjectPrefix:  mirror.DefaultConfig().SubjectPrefix,
		LogLevel:           "info",
	}
}

// LoadConfig builds the configuration: defaults, then CONFIG_FILE if set,
// then environment variables.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadConfig(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.APIURL = getEnv("DRAFT_API_URL", cfg.APIURL)
	cfg.APITimeout = getEnvAsDuration("API_TIMEOUT", cfg.APITimeout)
	cfg.ChannelURL = getEnv("DRAFT_WS_URL", cfg.ChannelURL)
	cfg.ReconnectBaseDelay = getEnvAsDuration("RECONNECT_BASE_DELAY", cfg.ReconnectBaseDelay)
	cfg.ReconnectMaxDelay = getEnvAsDuration("RECONNECT_MAX_DELAY", cfg.ReconnectMaxDelay)
	cfg.IdentityFile = getEnv("IDENTITY_FILE", cfg.IdentityFile)
	cfg.EventID = getEnvAsInt("DRAFT_EVENT_ID", cfg.EventID)
	cfg.InspectAddr = getEnv("INSPECT_ADDR", cfg.InspectAddr)
	cfg.NATSURL = getEnv("NATS_URL", cfg.NATSURL)
	cfg.NATSSubjectPrefix = getEnv("NATS_SUBJECT_PREFIX", cfg.NATSSubjectPrefix)
	cfg.NATSStream = getEnv("NATS_STREAM", cfg.NATSStream)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ChannelURL == "" {
		return errors.New("DRAFT_WS_URL is required")
	}
	if c.APIURL == "" {
		return errors.New("DRAFT_API_URL is required")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API timeout must be positive, got %s", c.APITimeout)
	}
	if c.ReconnectBaseDelay <= 0 {
		return fmt.Errorf("reconnect base delay must be positive, got %s", c.ReconnectBaseDelay)
	}
	if c.ReconnectMaxDelay < c.ReconnectBaseDelay {
		return fmt.Errorf("reconnect max delay %s is below base delay %s", c.ReconnectMaxDelay, c.ReconnectBaseDelay)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return nil
}

// ConnectionConfig maps the file/env settings onto the channel config
func (c Config) ConnectionConfig() gateway.ConnectionConfig {
	conn := gateway.DefaultConnectionConfig()
	conn.URL = c.ChannelURL
	conn.ReconnectBaseDelay = c.ReconnectBaseDelay
	conn.ReconnectMaxDelay = c.ReconnectMaxDelay
	return conn
}

// APIClient builds the REST client for the draft server
func (c Config) APIClient() *draftapi.Client {
	api := draftapi.NewClient(c.APIURL)
	api.SetTimeout(c.APITimeout)
	return api
}

// MirrorConfig returns the NATS mirror settings; ok is false when disabled
func (c Config) MirrorConfig() (mirror.Config, bool) {
	if c.NATSURL == "" {
		return mirror.Config{}, false
	}
	mc := mirror.DefaultConfig()
	mc.URL = c.NATSURL
	mc.SubjectPrefix = c.NATSSubjectPrefix
	mc.StreamName = c.NATSStream
	return mc, true
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("1500ms") or whole seconds ("2")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func loadConfig(path string, into *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	return nil
}

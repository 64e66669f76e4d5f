package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDatabaseURL       = "LANDMARK_DATABASE_URL"
	EnvFirebaseProjectID = "LANDMARK_FIREBASE_PROJECT_ID"
	EnvFirebaseAPIKey    = "LANDMARK_FIREBASE_API_KEY"
	EnvPort              = "LANDMARK_PORT"
	EnvTCPPort           = "LANDMARK_TCP_PORT"
	EnvAPIPort           = "LANDMARK_API_PORT"
	EnvLogLevel          = "LANDMARK_LOG_LEVEL"
	EnvEventInterval     = "LANDMARK_EVENT_INTERVAL"
	EnvQueueSize         = "LANDMARK_QUEUE_SIZE"
	EnvTLSCertFile       = "LANDMARK_TLS_CERT_FILE"
	EnvTLSKeyFile        = "LANDMARK_TLS_KEY_FILE"
	EnvAllowedOrigins    = "LANDMARK_ALLOWED_ORIGINS"
)

type Config struct {
	// DatabaseURL selects the repository backend. Empty means in memory.
	DatabaseURL       string
	FirebaseProjectID string
	FirebaseAPIKey    string
	// Port is the WebSocket port hosts connect to.
	Port int
	// TCPPort of 0 disables the TCP listener.
	TCPPort int
	// APIPort of 0 disables the HTTP API. The API also stays off
	// without a Firebase project, see APIEnabled.
	APIPort       int
	LogLevel      string
	EventInterval time.Duration
	QueueSize     int
	TLSCertFile   string
	TLSKeyFile    string
	// AllowedOrigins are host patterns accepted in the Origin header of
	// WebSocket upgrades, on top of same host requests.
	AllowedOrigins []string
}

func Default() *Config {
	return &Config{
		Port:          8080,
		APIPort:       9090,
		LogLevel:      "info",
		EventInterval: 50 * time.Millisecond,
		QueueSize:     1000,
	}
}

// Load reads the given dotenv files, if they exist, and then the process
// environment. Variables already set in the environment win over the files.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %v", file, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment on top of the defaults.
func FromEnv() (*Config, error) {
	cfg := Default()
	var err error

	cfg.DatabaseURL = os.Getenv(EnvDatabaseURL)
	cfg.FirebaseProjectID = os.Getenv(EnvFirebaseProjectID)
	cfg.FirebaseAPIKey = os.Getenv(EnvFirebaseAPIKey)
	cfg.TLSCertFile = os.Getenv(EnvTLSCertFile)
	cfg.TLSKeyFile = os.Getenv(EnvTLSKeyFile)
	cfg.LogLevel = getEnvWithDefault(EnvLogLevel, cfg.LogLevel)
	cfg.AllowedOrigins = getListEnv(EnvAllowedOrigins)

	if cfg.Port, err = getIntEnv(EnvPort, cfg.Port); err != nil {
		return nil, err
	}
	if cfg.TCPPort, err = getIntEnv(EnvTCPPort, cfg.TCPPort); err != nil {
		return nil, err
	}
	if cfg.APIPort, err = getIntEnv(EnvAPIPort, cfg.APIPort); err != nil {
		return nil, err
	}
	if cfg.QueueSize, err = getIntEnv(EnvQueueSize, cfg.QueueSize); err != nil {
		return nil, err
	}
	if cfg.EventInterval, err = getDurationEnv(EnvEventInterval, cfg.EventInterval); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("%s must be positive, got %d", EnvPort, c.Port)
	}
	if c.TCPPort < 0 || c.APIPort < 0 {
		return fmt.Errorf("ports must not be negative")
	}
	if c.EventInterval <= 0 {
		return fmt.Errorf("%s must be positive, got %s", EnvEventInterval, c.EventInterval)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%s must be positive, got %d", EnvQueueSize, c.QueueSize)
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("%s and %s must be set together", EnvTLSCertFile, EnvTLSKeyFile)
	}
	return nil
}

// APIEnabled reports whether the HTTP API should be served. Bearer tokens
// are only meaningful when they can be verified against Firebase.
func (c *Config) APIEnabled() bool {
	return c.APIPort > 0 && c.FirebaseProjectID != ""
}

func getEnvWithDefault(key string, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := getEnvWithDefault(key, "")
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %v", key, value, err)
	}
	return i, nil
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := getEnvWithDefault(key, "")
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %v", key, value, err)
	}
	return d, nil
}

func getListEnv(key string) []string {
	var values []string
	for _, value := range strings.Split(os.Getenv(key), ",") {
		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}
	return values
}

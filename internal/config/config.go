package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Symbols   []string      // One engine per symbol
	LogLevel  zerolog.Level // Global log level
	LogPretty bool          // Console writer instead of JSON lines
	QueueSize int           // Per shard command queue
}

func Default() Config {
	return Config{
		Symbols:   []string{"AAPL"},
		LogLevel:  zerolog.InfoLevel,
		LogPretty: true,
		QueueSize: 100,
	}
}

// Load reads configuration from a .env file and environment variables.
// Priority: ENV > .env file > defaults. An empty envPath loads ./.env when it
// exists; a named file that cannot be read is an error.
func Load(envPath string) (Config, error) {
	cfg := Default()

	// ./.env is optional, an explicitly named file is not.
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return Config{}, fmt.Errorf("%w: env file %s: %w", ErrInvalidConfig, envPath, err)
		}
	} else {
		_ = godotenv.Load()
	}

	if symbols := os.Getenv("MATCHER_SYMBOLS"); symbols != "" {
		cfg.Symbols = splitSymbols(symbols)
	}

	if level := os.Getenv("MATCHER_LOG_LEVEL"); level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return Config{}, fmt.Errorf("%w: MATCHER_LOG_LEVEL: %w", ErrInvalidConfig, err)
		}
		cfg.LogLevel = parsed
	}

	if pretty := os.Getenv("MATCHER_LOG_PRETTY"); pretty != "" {
		b, err := strconv.ParseBool(pretty)
		if err != nil {
			return Config{}, fmt.Errorf("%w: MATCHER_LOG_PRETTY: %w", ErrInvalidConfig, err)
		}
		cfg.LogPretty = b
	}

	if size := os.Getenv("MATCHER_QUEUE_SIZE"); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil {
			return Config{}, fmt.Errorf("%w: MATCHER_QUEUE_SIZE: %w", ErrInvalidConfig, err)
		}
		cfg.QueueSize = n
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("%w: no symbols", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(c.Symbols))
	for _, s := range c.Symbols {
		if _, ok := seen[s]; ok {
			return fmt.Errorf("%w: duplicate symbol %q", ErrInvalidConfig, s)
		}
		seen[s] = struct{}{}
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	}
	return nil
}

func splitSymbols(raw string) []string {
	var symbols []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

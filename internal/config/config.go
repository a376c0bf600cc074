package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Environment variables read by Load.
const (
	EnvDataFile  = "YANIV_DATA_FILE"
	EnvLogFile   = "YANIV_LOG_FILE"
	EnvLogLevel  = "YANIV_LOG_LEVEL"
	EnvAsafOnTie = "YANIV_ASAF_ON_TIE"
)

// Config holds the process settings. Flags override the loaded values.
type Config struct {
	DataFile  string // empty selects the default under ~/.config/yaniv
	LogFile   string // empty discards logs
	LogLevel  logrus.Level
	AsafOnTie bool
}

// Load reads an optional .env file and the YANIV_* environment variables.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read env file: %w", err)
	}

	cfg := Config{
		DataFile: os.Getenv(EnvDataFile),
		LogFile:  os.Getenv(EnvLogFile),
		LogLevel: logrus.InfoLevel,
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = level
	}

	if v := os.Getenv(EnvAsafOnTie); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", EnvAsafOnTie, err)
		}
		cfg.AsafOnTie = b
	}

	return cfg, nil
}

// NewLogger builds the process logger. The terminal belongs to the UI, so
// logs go to LogFile or nowhere. The returned closer releases the file.
func (c Config) NewLogger() (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})

	if c.LogFile == "" {
		logger.SetOutput(io.Discard)
		return logger, io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(c.LogFile), 0755); err != nil {
		return nil, nil, fmt.Errorf("error creating log directory: %w", err)
	}
	f, err := os.OpenFile(c.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening log file %s: %w", c.LogFile, err)
	}
	logger.SetOutput(f)
	return logger, f, nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"chaosroom/protocol"
)

type Config struct {
	Port       int
	TickHz     int
	WireFormat protocol.Format
	LogLevel   slog.Level
	PublicURL  string
	SendBuffer int
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads the optional env files (".env" when none are given) and then the
// process environment. Variables already set in the environment win.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg := Config{
		Port:       3000,
		TickHz:     protocol.SimTickHz,
		WireFormat: protocol.FormatJSON,
		LogLevel:   slog.LevelInfo,
		SendBuffer: 64,
	}

	var err error
	if cfg.Port, err = intVar("PORT", cfg.Port, 1, 65535); err != nil {
		return Config{}, err
	}
	if cfg.TickHz, err = intVar("TICK_HZ", cfg.TickHz, 1, 120); err != nil {
		return Config{}, err
	}
	if cfg.SendBuffer, err = intVar("SEND_BUFFER", cfg.SendBuffer, 1, 4096); err != nil {
		return Config{}, err
	}
	if v, err := GetEnvVariable("WIRE_FORMAT"); err == nil {
		if cfg.WireFormat, err = protocol.ParseFormat(v); err != nil {
			return Config{}, fmt.Errorf("WIRE_FORMAT: %w", err)
		}
	}
	if v, err := GetEnvVariable("LOG_LEVEL"); err == nil {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	cfg.PublicURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	if v, err := GetEnvVariable("PUBLIC_URL"); err == nil {
		cfg.PublicURL = strings.TrimRight(v, "/")
	}
	return cfg, nil
}

func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := strings.TrimSpace(os.Getenv(v))
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}
	return b, nil
}

func intVar(name string, def, lo, hi int) (int, error) {
	v, err := GetEnvVariable(name)
	if err != nil {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%s: %d out of range [%d, %d]", name, n, lo, hi)
	}
	return n, nil
}

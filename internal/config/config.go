package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	yaml "gopkg.in/yaml.v3"
)

// SealKeyEnv overrides Config.SealKey when set.
const SealKeyEnv = "STEGO_SEAL_KEY"

type Config struct {
	LogLevel string `yaml:"log_level"`
	Pretty   bool   `yaml:"pretty"`
	// Ledger is the sqlite file recording embeds. Empty disables the ledger.
	Ledger  string `yaml:"ledger"`
	SealKey string `yaml:"seal_key"`

	Codec Codec `yaml:"codec"`

	// configPath is the file path used for reading and writing this config.
	configPath string `yaml:"-"`
}

type Codec struct {
	Signature  string `yaml:"signature"`
	Golay      bool   `yaml:"golay"`
	MaxPayload int    `yaml:"max_payload"`
	Workers    int    `yaml:"workers"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogLevel: "warn",
		Codec: Codec{
			MaxPayload: 64 << 20,
			Workers:    1,
		},
	}
}

// Path returns the file this config was read from or will be written to.
func (c Config) Path() string {
	return c.configPath
}

func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Codec.MaxPayload < 0 {
		return errors.New("config: codec.max_payload must not be negative")
	}
	if c.Codec.Workers < 0 {
		return errors.New("config: codec.workers must not be negative")
	}
	return nil
}

// ApplyEnv lets the environment override secrets kept out of the file.
func (c *Config) ApplyEnv() {
	if key := os.Getenv(SealKeyEnv); key != "" {
		c.SealKey = key
	}
}

// LedgerPath returns Ledger with a leading ~ expanded.
func (c Config) LedgerPath() (string, error) {
	if c.Ledger == "" {
		return "", nil
	}
	return homedir.Expand(c.Ledger)
}

// ParseLevel maps the log_level setting onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: unknown log_level %q", s)
}

// Write stores c at Path(), or at the default location when it has none.
// The file may hold the seal key, so it is private to the user.
func (c *Config) Write() error {
	path := c.configPath
	if path == "" {
		var err error
		if path, err = locate("", false); err != nil {
			return err
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := writeAtomic(path, data); err != nil {
		return err
	}
	c.configPath = path
	return nil
}

// Read loads the config at cfgPath, or the default location when cfgPath is empty.
// A missing default file yields Default(); a missing explicit file is an error.
func Read(cfgPath string) (Config, error) {
	path, err := locate(cfgPath, cfgPath != "")
	if err != nil {
		return Config{}, err
	}
	c := Default()
	c.configPath = path

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return c, nil
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// At returns Default() bound to path, or to the default location when path is empty.
// Nothing is read; use it to create a new config file.
func At(path string) (Config, error) {
	p, err := locate(path, false)
	if err != nil {
		return Config{}, err
	}
	c := Default()
	c.configPath = p
	return c, nil
}

// locate expands a leading ~ in path, falling back to ~/.stego_zero/config.yaml.
func locate(path string, mustExist bool) (string, error) {
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, ".stego_zero", "config.yaml"), nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand config path: %w", err)
	}
	if mustExist {
		info, err := os.Stat(expanded)
		if err != nil || info.IsDir() {
			return "", fmt.Errorf("config file %q does not exist", path)
		}
	}
	return expanded, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".config.*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

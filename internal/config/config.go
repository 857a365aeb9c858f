package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for dayone-export.
// Empty fields fall back to the defaults resolved by the app package;
// command-line flags override both.
type Config struct {
	BaseDir    string           `toml:"base_dir"`
	DBPath     string           `toml:"db_path"`
	PhotosPath string           `toml:"photos_path"`
	OutputDir  string           `toml:"output_dir"`
	Journal    string           `toml:"journal"`
	LogDir     string           `toml:"log_dir"`
	LogLevel   string           `toml:"log_level"` // debug, info, warn or error
	Vaults     []VaultConfig    `toml:"vaults"`
	Encryption EncryptionConfig `toml:"encryption"`
	Filesystem FilesystemConfig `toml:"filesystem"`
}

// EncryptionConfig holds paths to the age key pair used to encrypt published archives.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default), "age" or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	// Ignore lists basename glob patterns skipped when publishing media.
	Ignore []string `toml:"ignore"`
}

// VaultConfig represents configuration for an archive vault.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"` // for S3-compatible services
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// NewConfig creates a new Config rooted at baseDir with default log and key paths.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:  baseDir,
		LogDir:   filepath.Join(baseDir, "log"),
		LogLevel: "info",
		Encryption: EncryptionConfig{
			Type:           "none",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "dayone-export.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "dayone-export.key"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path, filling empty fields from defaults.
// A missing file is not an error: defaults are returned unchanged.
func Load(path string, defaults *Config) (*Config, error) {
	cfg, err := ReadFromFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			merged := *defaults
			return &merged, nil
		}
		return nil, err
	}
	cfg.fillFrom(defaults)
	return cfg, nil
}

func (c *Config) fillFrom(d *Config) {
	setIfEmpty(&c.BaseDir, d.BaseDir)
	setIfEmpty(&c.DBPath, d.DBPath)
	setIfEmpty(&c.PhotosPath, d.PhotosPath)
	setIfEmpty(&c.OutputDir, d.OutputDir)
	setIfEmpty(&c.Journal, d.Journal)
	setIfEmpty(&c.LogDir, d.LogDir)
	setIfEmpty(&c.LogLevel, d.LogLevel)
	setIfEmpty(&c.Encryption.Type, d.Encryption.Type)
	setIfEmpty(&c.Encryption.PublicKeyPath, d.Encryption.PublicKeyPath)
	setIfEmpty(&c.Encryption.PrivateKeyPath, d.Encryption.PrivateKeyPath)
	if len(c.Vaults) == 0 {
		c.Vaults = d.Vaults
	}
	if len(c.Filesystem.Ignore) == 0 {
		c.Filesystem.Ignore = d.Filesystem.Ignore
	}
}

func setIfEmpty(dst *string, fallback string) {
	if *dst == "" {
		*dst = fallback
	}
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

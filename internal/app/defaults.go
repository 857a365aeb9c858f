package app

import (
	"fmt"
	"os"
	"path/filepath"

	"dayone-export/internal/config"
)

const (
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "DAYONE_EXPORT_CONFIG"
	// EnvHome overrides the base directory for logs and keys.
	EnvHome = "DAYONE_EXPORT_HOME"

	// DefaultOutputDir is where exports go when neither flag nor config names a directory.
	DefaultOutputDir = "./data"

	dayOneDocuments = "Library/Group Containers/5U8NS4GX82.dayoneapp2/Data/Documents"
)

// Defaults holds the application default paths.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
	DBPath     string
	PhotosPath string
	OutputDir  string
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - DAYONE_EXPORT_CONFIG: config file location (default: ~/.config/dayone-export.toml)
//   - DAYONE_EXPORT_HOME: base directory for logs and keys (default: ~/.local/share/dayone-export)
//
// The database and photo paths point into the Day One app container on macOS.
func GetDefaults() (*Defaults, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	configPath := os.Getenv(EnvConfigPath)
	if configPath == "" {
		configPath = filepath.Join(homeDir, ".config", "dayone-export.toml")
	}

	baseDir := os.Getenv(EnvHome)
	if baseDir == "" {
		baseDir = filepath.Join(homeDir, ".local", "share", "dayone-export")
	}

	documents := filepath.Join(homeDir, filepath.FromSlash(dayOneDocuments))
	return &Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
		DBPath:     filepath.Join(documents, "DayOne.sqlite"),
		PhotosPath: filepath.Join(documents, "DayOnePhotos"),
		OutputDir:  DefaultOutputDir,
	}, nil
}

// Config returns the defaults as a Config, the lowest layer of settings.
func (d *Defaults) Config() *config.Config {
	cfg := config.NewConfig(d.BaseDir)
	cfg.LogDir = d.LogDir
	cfg.DBPath = d.DBPath
	cfg.PhotosPath = d.PhotosPath
	cfg.OutputDir = d.OutputDir
	return cfg
}

// Overrides are settings given on the command line. Empty fields are left alone.
type Overrides struct {
	DBPath     string
	PhotosPath string
	OutputDir  string
	Journal    string
}

// LoadConfig layers the config file at path over the defaults and the
// overrides over both. A missing config file is not an error.
func LoadConfig(path string, d *Defaults, o Overrides) (*config.Config, error) {
	cfg, err := config.Load(path, d.Config())
	if err != nil {
		return nil, err
	}
	override(&cfg.DBPath, o.DBPath)
	override(&cfg.PhotosPath, o.PhotosPath)
	override(&cfg.OutputDir, o.OutputDir)
	override(&cfg.Journal, o.Journal)
	return cfg, nil
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

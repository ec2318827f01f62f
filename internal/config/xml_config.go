// Package config provides XML-based configuration for the editor backend.
package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"HmiEditor"`

	Server   ServerConfig   `xml:"Server"`
	Storage  StorageConfig  `xml:"Storage"`
	Sessions SessionsConfig `xml:"Sessions"`
	Security SecurityConfig `xml:"Security"`
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`

	// StaticDirectory holds the built editor frontend; empty disables it.
	StaticDirectory string `xml:"StaticDirectory"`
}

// StorageConfig contains project snapshot storage settings
type StorageConfig struct {
	DataDirectory      string `xml:"DataDirectory"`
	SnapshotsDirectory string `xml:"SnapshotsDirectory"`
	MaxImportSize      string `xml:"MaxImportSize"`
	LoadLatestOnStart  bool   `xml:"LoadLatestOnStart"`
}

// SessionsConfig contains tag options dialog session settings
type SessionsConfig struct {
	MaxOpenDialogs         int `xml:"MaxOpenDialogs"`
	SessionTimeoutMinutes  int `xml:"SessionTimeoutMinutes"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	AllowSnapshotDeletion bool   `xml:"AllowSnapshotDeletion"`
	AllowedImportTypes    string `xml:"AllowedImportTypes"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel                string `xml:"LogLevel"`
	EnableRequestLogging    bool   `xml:"EnableRequestLogging"`
	WebSocketMaxMessageSize int    `xml:"WebSocketMaxMessageSizeKB"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         1881,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "32M",

			StaticDirectory: "./web",
		},
		Storage: StorageConfig{
			DataDirectory:      "./data",
			SnapshotsDirectory: "./data/snapshots",
			MaxImportSize:      "16M",
			LoadLatestOnStart:  true,
		},
		Sessions: SessionsConfig{
			MaxOpenDialogs:         32,
			SessionTimeoutMinutes:  30,
			CleanupIntervalMinutes: 5,
		},
		Security: SecurityConfig{
			AllowSnapshotDeletion: true,
			AllowedImportTypes:    ".json,.yaml,.yml",
		},
		Advanced: AdvancedConfig{
			LogLevel:                "info",
			EnableRequestLogging:    true,
			WebSocketMaxMessageSize: 64,
		},
	}
}

// LoadEnv reads KEY=value pairs from envFile into the environment. A
// missing file is not an error; variables already set are kept.
func LoadEnv(envFile string) error {
	err := godotenv.Load(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	return nil
}

// LoadConfig loads configuration from XML file, writing the defaults on
// first run.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- HMI Editor Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
		c.Storage.SnapshotsDirectory = filepath.Join(dataDir, "snapshots")
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Storage.SnapshotsDirectory) {
		c.Storage.SnapshotsDirectory = filepath.Join(configDir, c.Storage.SnapshotsDirectory)
	}
	if c.Server.StaticDirectory != "" && !filepath.IsAbs(c.Server.StaticDirectory) {
		c.Server.StaticDirectory = filepath.Join(configDir, c.Server.StaticDirectory)
	}
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// SessionTimeout returns how long an idle dialog is kept.
func (c *AppConfig) SessionTimeout() time.Duration {
	return minutes(c.Sessions.SessionTimeoutMinutes, 30)
}

// CleanupInterval returns how often idle dialogs are collected.
func (c *AppConfig) CleanupInterval() time.Duration {
	return minutes(c.Sessions.CleanupIntervalMinutes, 5)
}

func minutes(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Minute
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.SnapshotsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

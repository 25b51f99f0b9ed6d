package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tagsmith/internal/shared"
)

// Resolver backend names accepted in the config file.
const (
	ResolverMusicBrainz = "musicbrainz"
	ResolverServer      = "server"
)

// Configuration structure
type Config struct {
	Resolver              string `json:"Resolver"`              // "musicbrainz" or "server"
	ServerURL             string `json:"ServerURL"`             // metadata server base URL, used when Resolver is "server"
	CacheDir              string `json:"CacheDir"`              // directory holding the album record cache
	LyricsURL             string `json:"LyricsURL"`             // lyrics provider base URL
	MaxRetryAttempts      int    `json:"MaxRetryAttempts"`      // configurable retry attempts for remote calls
	CumulativeDiscOffsets bool   `json:"CumulativeDiscOffsets"` // use the corrected cumulative multi-disc offsets
	FFmpegPath            string `json:"FFmpegPath"`            // ffmpeg binary for BPM decoding
	AnalyzerPath          string `json:"AnalyzerPath"`          // bpm analyzer binary
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = "."
	}
	return &Config{
		Resolver:         ResolverMusicBrainz,
		ServerURL:        "",
		CacheDir:         filepath.Join(cacheDir, "tagsmith", "albums"),
		LyricsURL:        "https://lrclib.net",
		MaxRetryAttempts: shared.DefaultMaxRetries,
		FFmpegPath:       "ffmpeg",
		AnalyzerPath:     "bpm",
	}
}

// Validate reports configuration errors before any processing starts.
func (cfg *Config) Validate() error {
	switch cfg.Resolver {
	case ResolverMusicBrainz:
	case ResolverServer:
		if cfg.ServerURL == "" {
			return fmt.Errorf("ServerURL is required when Resolver is %q", ResolverServer)
		}
	default:
		return fmt.Errorf("unknown resolver %q", cfg.Resolver)
	}
	if cfg.CacheDir == "" {
		return fmt.Errorf("CacheDir is required")
	}
	return nil
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// SaveConfig saves configuration to a JSON file
func SaveConfig(filePath string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	dir := filepath.Dir(filePath)
	if err := shared.CreateDirIfNotExists(dir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists(filePath string) error {
	if !shared.FileExists(filePath) {
		return SaveConfig(filePath, DefaultConfig())
	}
	return nil
}

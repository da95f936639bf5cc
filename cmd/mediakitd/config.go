package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional mediakitd.yaml configuration for the demo
// harness: a simulated media library plus a playlist to drive through the
// playback service.
type Config struct {
	LogLevel string         `yaml:"log_level,omitempty"`
	Library  []LibraryEntry `yaml:"library"`
	Playlist []PlaylistItem `yaml:"playlist"`
}

// LibraryEntry describes one entry in the simulated media library.
type LibraryEntry struct {
	Location   string `yaml:"location"`
	DurationMs int64  `yaml:"duration_ms"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Unplayable bool   `yaml:"unplayable,omitempty"`
}

// PlaylistItem describes one scripted playback run.
type PlaylistItem struct {
	Name     string            `yaml:"name"`
	Type     string            `yaml:"type"` // asset | file | network
	Path     string            `yaml:"path"`
	Speed    float64           `yaml:"speed,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`
	Controls bool              `yaml:"controls,omitempty"`
}

// LoadConfig reads and validates a config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig is used when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		Library: []LibraryEntry{
			{Location: "https://example.com/intro.mp4", DurationMs: 10000, Width: 1280, Height: 720},
			{Location: "https://example.com/feature.mp4", DurationMs: 30000, Width: 1920, Height: 1080},
		},
		Playlist: []PlaylistItem{
			{Name: "intro", Type: "network", Path: "https://example.com/intro.mp4", Speed: 1.0},
			{Name: "feature", Type: "network", Path: "https://example.com/feature.mp4", Speed: 1.5, Controls: true},
		},
	}
}

func (c *Config) validate() error {
	if len(c.Playlist) == 0 {
		return fmt.Errorf("config has no playlist entries")
	}
	for i, item := range c.Playlist {
		if item.Path == "" {
			return fmt.Errorf("playlist[%d]: missing path", i)
		}
		switch item.Type {
		case "asset", "file", "network", "":
		default:
			return fmt.Errorf("playlist[%d]: unknown type %q", i, item.Type)
		}
	}
	return nil
}

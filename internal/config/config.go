package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mmd-renderer/internal/game"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	GameDir   string `json:"game_dir" yaml:"game_dir"`
	ExeName   string `json:"exe_name" yaml:"exe_name"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Render settings
	Format      string  `json:"format" yaml:"format"`
	RenderSize  int     `json:"render_size" yaml:"render_size"`
	Supersample int     `json:"supersample" yaml:"supersample"`
	Margin      int     `json:"margin" yaml:"margin"`
	Crop        bool    `json:"crop" yaml:"crop"`
	Yaw         float32 `json:"yaw" yaml:"yaw"`
	Pitch       float32 `json:"pitch" yaml:"pitch"`
	Workers     int     `json:"workers" yaml:"workers"`

	// Playback
	TickMS     int   `json:"tick_ms" yaml:"tick_ms"`
	MaxFrames  int   `json:"max_frames" yaml:"max_frames"`
	Characters []int `json:"characters" yaml:"characters"`
}

// Load reads a YAML (.yaml, .yml) or JSON config file.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	GameDir    string
	OutputDir  string
	Format     string
	Workers    int
	Characters []int
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.GameDir != "" {
		c.GameDir = flags.GameDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if len(flags.Characters) > 0 {
		c.Characters = flags.Characters
	}

	if c.ExeName == "" {
		c.ExeName = game.SLUS01032.ExeName
	}

	// Auto-detect game dir if still empty
	if c.GameDir == "" {
		c.GameDir = detectGameDir(c.ExeName)
	}

	if c.OutputDir == "" {
		c.OutputDir = "renders"
		if c.GameDir != "" {
			c.OutputDir = filepath.Join(c.GameDir, "renders")
		}
	} else if !filepath.IsAbs(c.OutputDir) && c.GameDir != "" {
		c.OutputDir = filepath.Join(c.GameDir, c.OutputDir)
	}

	// Defaults for render settings
	if c.Format == "" {
		c.Format = "webp"
	}
	if c.RenderSize <= 0 {
		c.RenderSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Margin <= 0 {
		c.Margin = 8
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.TickMS <= 0 {
		c.TickMS = 50
	}
	if c.MaxFrames <= 0 {
		c.MaxFrames = 300
	}
}

// TickInterval returns the playback cadence.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}

// GameInfo returns the table layout for the configured executable.
func (c *Config) GameInfo() game.Info {
	info := game.SLUS01032
	info.ExeName = c.ExeName
	return info
}

// Wants reports whether character index i is selected. An empty filter
// selects everything.
func (c *Config) Wants(i int) bool {
	if len(c.Characters) == 0 {
		return true
	}
	for _, v := range c.Characters {
		if v == i {
			return true
		}
	}
	return false
}

func detectGameDir(exeName string) string {
	isGameDir := func(dir string) bool {
		if _, err := os.Stat(filepath.Join(dir, exeName)); err != nil {
			return false
		}
		info, err := os.Stat(filepath.Join(dir, "CHDAT"))
		return err == nil && info.IsDir()
	}

	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir)} {
			if isGameDir(base) {
				return base
			}
		}
	}

	// Try current working directory, then its parent
	cwd, _ := os.Getwd()
	for _, base := range []string{cwd, filepath.Dir(cwd)} {
		if isGameDir(base) {
			return base
		}
	}

	return ""
}

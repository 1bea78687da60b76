// Package app wires the core emulator (cartridge, bus, graphics) into a
// host application: configuration, the frame loop, and the CLI entrypoint's
// supporting types live here.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all application configuration. Sections covering features
// the spec marks out of scope (audio, save states, rewind) are not
// present — there is nothing left for them to configure.
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Input     InputConfig     `json:"input"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration.
type WindowConfig struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Fullscreen bool `json:"fullscreen"`
	Resizable  bool `json:"resizable"`
	Scale      int  `json:"scale"` // NES resolution multiplier
}

// VideoConfig contains video presentation configuration.
type VideoConfig struct {
	VSync       bool   `json:"vsync"`
	AspectRatio string `json:"aspect_ratio"` // "4:3", "16:9", "original"
	Filter      string `json:"filter"`       // "nearest", "linear"
	Backend     string `json:"backend"`      // "ebitengine", "headless"
}

// InputConfig names the keyboard bindings for controller 1. The spec's
// default layout (§6) is S/A/RShift/Enter for A/B/Select/Start and the
// arrow keys for the D-pad; this struct exists so a config file can
// document the binding even though the ebiten backend's key handling is
// currently fixed to that default.
type InputConfig struct {
	Player1Keys KeyMapping `json:"player1_keys"`
}

// KeyMapping names one controller's key bindings.
type KeyMapping struct {
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	A      string `json:"a"`
	B      string `json:"b"`
	Start  string `json:"start"`
	Select string `json:"select"`
}

// EmulationConfig contains emulation-specific settings.
type EmulationConfig struct {
	FrameRate        float64 `json:"frame_rate"` // target host frame rate
	PauseOnFocusLoss bool    `json:"pause_on_focus_loss"`
}

// DebugConfig contains logging and diagnostic options.
type DebugConfig struct {
	ShowFPS       bool   `json:"show_fps"`
	EnableLogging bool   `json:"enable_logging"`
	LogLevel      string `json:"log_level"` // "DEBUG", "INFO", "WARN", "ERROR"
}

// PathsConfig contains file and directory paths.
type PathsConfig struct {
	ROMs   string `json:"roms"`
	Config string `json:"config"`
	Logs   string `json:"logs"`
}

// NewConfig creates a configuration with default values.
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      512,
			Height:     480,
			Fullscreen: false,
			Resizable:  true,
			Scale:      2, // 512x480 (256x240 * 2)
		},
		Video: VideoConfig{
			VSync:       true,
			AspectRatio: "4:3",
			Filter:      "nearest",
			Backend:     "ebitengine",
		},
		Input: InputConfig{
			Player1Keys: KeyMapping{
				Up:     "Up",
				Down:   "Down",
				Left:   "Left",
				Right:  "Right",
				A:      "S",
				B:      "A",
				Start:  "Return",
				Select: "RShift",
			},
		},
		Emulation: EmulationConfig{
			FrameRate:        60.0,
			PauseOnFocusLoss: true,
		},
		Debug: DebugConfig{
			ShowFPS:       false,
			EnableLogging: false,
			LogLevel:      "INFO",
		},
		Paths: PathsConfig{
			ROMs:   "./roms",
			Config: "./config",
			Logs:   "./logs",
		},
	}
}

// LoadFromFile loads configuration from a JSON file, writing the default
// configuration out if path does not yet exist.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	c.validate()

	c.loaded = true
	return nil
}

// SaveToFile writes the configuration to path as indented JSON.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	c.configPath = path
	return nil
}

// validate clamps out-of-range values loaded from a hand-edited file to
// sane defaults rather than rejecting the whole file.
func (c *Config) validate() {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		c.Window.Width, c.Window.Height = 512, 480
	}
	if c.Window.Scale <= 0 {
		c.Window.Scale = 1
	}
	if c.Emulation.FrameRate <= 0 {
		c.Emulation.FrameRate = 60.0
	}
}

// GetNESResolution returns the native NES framebuffer resolution.
func (c *Config) GetNESResolution() (int, int) { return 256, 240 }

// GetWindowResolution returns the window resolution implied by Window.Scale.
func (c *Config) GetWindowResolution() (int, int) {
	w, h := c.GetNESResolution()
	return w * c.Window.Scale, h * c.Window.Scale
}

// IsLoaded reports whether the configuration came from an existing file.
func (c *Config) IsLoaded() bool { return c.loaded }

// GetConfigPath returns the path the configuration was loaded from or saved to.
func (c *Config) GetConfigPath() string { return c.configPath }

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string { return "./config/nespocket.json" }

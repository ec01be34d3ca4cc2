// Package config provides YAML-based arena configuration loading and
// agent presets for the script arena.
package config

import (
	"fmt"
	"strings"
	"time"
)

// ArenaConfig contains all configuration for the arena host.
type ArenaConfig struct {
	Scripts ScriptsConfig `yaml:"scripts"`
	Input   InputConfig   `yaml:"input"`
	View    ViewConfig    `yaml:"view"`
	Player  PlayerConfig  `yaml:"player"`
	Agent   AgentConfig   `yaml:"agent"`
	Camera  CameraConfig  `yaml:"camera"`
	Storage StorageConfig `yaml:"storage"`
}

// ScriptsConfig defines where scripts live and how changes are picked up.
type ScriptsConfig struct {
	Dir         string        `yaml:"dir"`
	Extension   string        `yaml:"extension"`
	Names       []string      `yaml:"names"` // load order at startup
	Debounce    time.Duration `yaml:"debounce"`
	EventBuffer int           `yaml:"event_buffer"`
	HotReload   bool          `yaml:"hot_reload"`
}

// InputConfig defines how terminal key presses become held keys.
type InputConfig struct {
	// Terminals only report presses; a key counts as held for this long
	// after its last repeat.
	HoldWindow time.Duration `yaml:"hold_window"`
}

// ViewConfig defines how world units map onto terminal cells.
type ViewConfig struct {
	UnitsPerColumn float64 `yaml:"units_per_column"`
	UnitsPerRow    float64 `yaml:"units_per_row"`
}

// PlayerConfig defines player movement parameters for the native game.
type PlayerConfig struct {
	MoveSpeed        float64 `yaml:"move_speed"`
	StaminaMax       float64 `yaml:"stamina_max"`
	StaminaDrain     float64 `yaml:"stamina_drain"`
	StaminaRecharge  float64 `yaml:"stamina_recharge"`
	MinSpeedFraction float64 `yaml:"min_speed_fraction"` // speed at zero stamina
}

// AgentConfig defines the orbiter agent of the native game.
type AgentConfig struct {
	OrbitRadius      float64       `yaml:"orbit_radius"`
	OrbitSpeed       float64       `yaml:"orbit_speed"` // radians per second
	MoveSpeed        float64       `yaml:"move_speed"`
	CircleDuration   time.Duration `yaml:"circle_duration"`
	InteractDuration time.Duration `yaml:"interact_duration"`
}

// CameraConfig defines camera follow smoothing.
type CameraConfig struct {
	FollowSpeed float64 `yaml:"follow_speed"` // 1/s; lerp factor is min(follow_speed*dt, 1)
}

// StorageConfig defines the load journal location.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// Validate normalises the configuration and rejects values the host
// cannot run with.
func (c *ArenaConfig) Validate() error {
	if c.Scripts.Dir == "" {
		return fmt.Errorf("config: scripts.dir must be set")
	}
	ext := strings.TrimSpace(c.Scripts.Extension)
	if ext == "" {
		ext = ".lua"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Scripts.Extension = ext

	if c.Scripts.Debounce < 10*time.Millisecond {
		c.Scripts.Debounce = 10 * time.Millisecond
	}
	if c.Scripts.EventBuffer < 1 {
		c.Scripts.EventBuffer = 1
	}
	if c.Input.HoldWindow <= 0 {
		c.Input.HoldWindow = DefaultArenaConfig().Input.HoldWindow
	}

	if c.View.UnitsPerColumn <= 0 || c.View.UnitsPerRow <= 0 {
		return fmt.Errorf("config: view units must be positive, got %v x %v",
			c.View.UnitsPerColumn, c.View.UnitsPerRow)
	}
	if c.Player.StaminaMax <= 0 {
		return fmt.Errorf("config: player.stamina_max must be positive, got %v", c.Player.StaminaMax)
	}
	if c.Player.MinSpeedFraction < 0 || c.Player.MinSpeedFraction > 1 {
		return fmt.Errorf("config: player.min_speed_fraction must be in [0, 1], got %v", c.Player.MinSpeedFraction)
	}
	if c.Camera.FollowSpeed < 0 {
		return fmt.Errorf("config: camera.follow_speed must not be negative, got %v", c.Camera.FollowSpeed)
	}
	return nil
}

package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/arena.yaml
var defaultArenaYAML []byte

// DefaultArenaConfig returns the default arena configuration.
func DefaultArenaConfig() ArenaConfig {
	return ArenaConfig{
		Scripts: ScriptsConfig{
			Dir:         "scripts",
			Extension:   ".lua",
			Names:       []string{"world", "player", "camera"},
			Debounce:    200 * time.Millisecond,
			EventBuffer: 64,
			HotReload:   true,
		},
		Input: InputConfig{
			HoldWindow: 150 * time.Millisecond,
		},
		View: ViewConfig{
			UnitsPerColumn: 16,
			UnitsPerRow:    32,
		},
		Player: PlayerConfig{
			MoveSpeed:        200,
			StaminaMax:       100,
			StaminaDrain:     20,
			StaminaRecharge:  30,
			MinSpeedFraction: 0.2,
		},
		Agent: AgentConfig{
			OrbitRadius:      150,
			OrbitSpeed:       1.5,
			MoveSpeed:        300,
			CircleDuration:   5 * time.Second,
			InteractDuration: 400 * time.Millisecond,
		},
		Camera: CameraConfig{
			FollowSpeed: 5,
		},
		Storage: StorageConfig{
			Path: "~/.arena/arena.db",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultArenaYAML
}

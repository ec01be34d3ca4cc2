package config

import (
	"fmt"
	"time"
)

// AgentPreset represents a named orbiter temperament.
type AgentPreset string

const (
	AgentCalm       AgentPreset = "calm"
	AgentNormal     AgentPreset = "normal"
	AgentAggressive AgentPreset = "aggressive"
)

// AgentPresets lists the presets in increasing intensity.
var AgentPresets = []AgentPreset{AgentCalm, AgentNormal, AgentAggressive}

// ParseAgentPreset validates a preset name. The empty string means normal.
func ParseAgentPreset(name string) (AgentPreset, error) {
	if name == "" {
		return AgentNormal, nil
	}
	for _, p := range AgentPresets {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("config: unknown agent preset %q (want calm, normal or aggressive)", name)
}

// ApplyAgentPreset modifies the agent config based on a preset.
// Normal keeps whatever the loaded configuration says.
func ApplyAgentPreset(cfg *AgentConfig, preset AgentPreset) {
	switch preset {
	case AgentCalm:
		cfg.OrbitSpeed = 1.0
		cfg.MoveSpeed = 200
		cfg.CircleDuration = 8 * time.Second
		cfg.InteractDuration = 300 * time.Millisecond
	case AgentAggressive:
		cfg.OrbitRadius = 120
		cfg.OrbitSpeed = 2.5
		cfg.MoveSpeed = 450
		cfg.CircleDuration = 2 * time.Second
		cfg.InteractDuration = 600 * time.Millisecond
	}
}

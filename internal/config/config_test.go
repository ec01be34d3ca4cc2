package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg := DefaultArenaConfig()
	if err := yaml.Unmarshal(DefaultYAML(), &cfg); err != nil {
		t.Fatalf("embedded YAML does not parse: %v", err)
	}
	want := DefaultArenaConfig()

	if cfg.Scripts.Debounce != want.Scripts.Debounce {
		t.Errorf("scripts.debounce = %v, expected %v", cfg.Scripts.Debounce, want.Scripts.Debounce)
	}
	if len(cfg.Scripts.Names) != len(want.Scripts.Names) {
		t.Errorf("scripts.names = %v, expected %v", cfg.Scripts.Names, want.Scripts.Names)
	}
	if cfg.Agent.InteractDuration != want.Agent.InteractDuration {
		t.Errorf("agent.interact_duration = %v, expected %v", cfg.Agent.InteractDuration, want.Agent.InteractDuration)
	}
	if cfg.Camera.FollowSpeed != want.Camera.FollowSpeed {
		t.Errorf("camera.follow_speed = %v, expected %v", cfg.Camera.FollowSpeed, want.Camera.FollowSpeed)
	}
	if cfg.Storage.Path != want.Storage.Path {
		t.Errorf("storage.path = %q, expected %q", cfg.Storage.Path, want.Storage.Path)
	}
}

func TestLoadArenaCustomPathOverridesPartially(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.yaml")
	data := []byte("scripts:\n  dir: mods\n  extension: lua\n  debounce: 1ms\ncamera:\n  follow_speed: 2\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadArena(path)
	if err != nil {
		t.Fatalf("LoadArena() failed: %v", err)
	}
	if cfg.Scripts.Dir != "mods" {
		t.Errorf("Scripts.Dir = %q, expected %q", cfg.Scripts.Dir, "mods")
	}
	if cfg.Scripts.Extension != ".lua" {
		t.Errorf("Scripts.Extension = %q, expected %q", cfg.Scripts.Extension, ".lua")
	}
	if cfg.Scripts.Debounce != 10*time.Millisecond {
		t.Errorf("Scripts.Debounce = %v, expected clamp to 10ms", cfg.Scripts.Debounce)
	}
	if cfg.Camera.FollowSpeed != 2 {
		t.Errorf("Camera.FollowSpeed = %v, expected 2", cfg.Camera.FollowSpeed)
	}
	if cfg.Player.MoveSpeed != 200 {
		t.Errorf("Player.MoveSpeed = %v, expected default 200", cfg.Player.MoveSpeed)
	}
}

func TestLoadArenaCustomPathErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadArena(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadArena(missing) succeeded, expected error")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("scripts: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadArena(bad); err == nil {
		t.Error("LoadArena(bad) succeeded, expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("view:\n  units_per_row: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadArena(invalid); err == nil {
		t.Error("LoadArena(invalid) succeeded, expected validation error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ArenaConfig)
		wantErr bool
	}{
		{"defaults", func(*ArenaConfig) {}, false},
		{"empty dir", func(c *ArenaConfig) { c.Scripts.Dir = "" }, true},
		{"negative follow", func(c *ArenaConfig) { c.Camera.FollowSpeed = -1 }, true},
		{"min speed above one", func(c *ArenaConfig) { c.Player.MinSpeedFraction = 1.5 }, true},
		{"zero stamina", func(c *ArenaConfig) { c.Player.StaminaMax = 0 }, true},
		{"zero buffer clamps", func(c *ArenaConfig) { c.Scripts.EventBuffer = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultArenaConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg.Scripts.EventBuffer < 1 {
				t.Errorf("EventBuffer = %d after Validate, expected >= 1", cfg.Scripts.EventBuffer)
			}
		})
	}
}

func TestAgentPresets(t *testing.T) {
	if p, err := ParseAgentPreset(""); err != nil || p != AgentNormal {
		t.Errorf("ParseAgentPreset(\"\") = %q, %v, expected normal", p, err)
	}
	if _, err := ParseAgentPreset("berserk"); err == nil {
		t.Error("ParseAgentPreset(berserk) succeeded, expected error")
	}

	base := DefaultArenaConfig().Agent
	normal := base
	ApplyAgentPreset(&normal, AgentNormal)
	if normal != base {
		t.Errorf("normal preset changed config: %+v", normal)
	}

	calm, aggressive := base, base
	ApplyAgentPreset(&calm, AgentCalm)
	ApplyAgentPreset(&aggressive, AgentAggressive)
	if !(calm.MoveSpeed < base.MoveSpeed && base.MoveSpeed < aggressive.MoveSpeed) {
		t.Errorf("move speeds calm/normal/aggressive = %v/%v/%v, expected increasing",
			calm.MoveSpeed, base.MoveSpeed, aggressive.MoveSpeed)
	}
	if !(calm.CircleDuration > aggressive.CircleDuration) {
		t.Errorf("circle duration calm %v not longer than aggressive %v", calm.CircleDuration, aggressive.CircleDuration)
	}
}

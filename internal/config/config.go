// Package config provides YAML-based configuration loading for the arcade
// platform and its games.
package config

import (
	"errors"
	"fmt"
)

// Config is the full arcade configuration.
type Config struct {
	Arcade ArcadeConfig `yaml:"arcade"`
	SSH    SSHConfig    `yaml:"ssh"`
	Web    WebConfig    `yaml:"web"`
	T2048  T2048Config  `yaml:"t2048"`
	Memory MemoryConfig `yaml:"memory"`
}

// ArcadeConfig holds settings shared by every front end.
type ArcadeConfig struct {
	TickRate int    `yaml:"tick_rate"`
	DBPath   string `yaml:"db_path"`
}

// SSHConfig configures the wish server.
type SSHConfig struct {
	Address            string `yaml:"address"`
	HostKeyPath        string `yaml:"host_key_path"`
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`
}

// WebConfig configures the HTTP API.
type WebConfig struct {
	Address            string `yaml:"address"`
	SessionIdleMinutes int    `yaml:"session_idle_minutes"` // 0 keeps sessions forever
}

// T2048Config holds 2048 tunables.
type T2048Config struct {
	Spawn4Prob float64 `yaml:"spawn4_prob"`
}

// MemoryConfig holds memory game timings in milliseconds.
type MemoryConfig struct {
	StartDelayMS int `yaml:"start_delay_ms"`
	StepMS       int `yaml:"step_ms"`
	BlinkMS      int `yaml:"blink_ms"`
	RoundPauseMS int `yaml:"round_pause_ms"`
	PopupMS      int `yaml:"popup_ms"`
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid value")

// Validate checks that every value is usable.
func (c Config) Validate() error {
	if c.Arcade.TickRate <= 0 {
		return fmt.Errorf("%w: arcade.tick_rate must be positive, got %d", ErrInvalid, c.Arcade.TickRate)
	}
	if c.Arcade.DBPath == "" {
		return fmt.Errorf("%w: arcade.db_path is empty", ErrInvalid)
	}
	if c.SSH.IdleTimeoutMinutes < 0 {
		return fmt.Errorf("%w: ssh.idle_timeout_minutes must not be negative", ErrInvalid)
	}
	if c.Web.SessionIdleMinutes < 0 {
		return fmt.Errorf("%w: web.session_idle_minutes must not be negative", ErrInvalid)
	}
	if p := c.T2048.Spawn4Prob; p < 0 || p > 1 {
		return fmt.Errorf("%w: t2048.spawn4_prob must be within [0,1], got %v", ErrInvalid, p)
	}

	timings := []struct {
		name string
		ms   int
	}{
		{"memory.start_delay_ms", c.Memory.StartDelayMS},
		{"memory.step_ms", c.Memory.StepMS},
		{"memory.blink_ms", c.Memory.BlinkMS},
		{"memory.round_pause_ms", c.Memory.RoundPauseMS},
		{"memory.popup_ms", c.Memory.PopupMS},
	}
	for _, t := range timings {
		if t.ms <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, t.name, t.ms)
		}
	}

	return nil
}

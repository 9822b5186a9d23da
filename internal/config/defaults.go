package config

import (
	_ "embed"
)

//go:embed defaults/arcade.yaml
var defaultArcadeYAML []byte

// Default returns the hardcoded configuration, used when the embedded YAML
// cannot be parsed.
func Default() Config {
	return Config{
		Arcade: ArcadeConfig{
			TickRate: 60,
			DBPath:   "~/.arcade/scores.db",
		},
		SSH: SSHConfig{
			Address:            ":23234",
			IdleTimeoutMinutes: 30,
		},
		Web: WebConfig{
			Address:            ":8080",
			SessionIdleMinutes: 60,
		},
		T2048: T2048Config{
			Spawn4Prob: 0.10,
		},
		Memory: MemoryConfig{
			StartDelayMS: 800,
			StepMS:       700,
			BlinkMS:      400,
			RoundPauseMS: 1000,
			PopupMS:      800,
		},
	}
}

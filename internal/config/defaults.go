package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/enginehost.yaml
var defaultYAML []byte

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}

// Default returns the built-in configuration. It matches the embedded
// default file and is the base every loaded file is merged onto.
func Default() Config {
	return Config{
		Assets: AssetsConfig{
			Root:     "~/.enginehost/data",
			Classify: "heuristic",
		},
		Surface: SurfaceConfig{
			Strategy: "opaque",
			Depth:    16,
			Custom: ColorRequest{
				Red: 8, Green: 8, Blue: 8, Alpha: 0, Depth: 24, Stencil: 8,
			},
		},
		Engine: EngineConfig{
			Name:     "lua",
			TickRate: 30,
		},
		Storage: StorageConfig{
			Path: "~/.enginehost/journal.db",
		},
		SSH: SSHConfig{
			Addr:        ":23235",
			HostKeyPath: ".ssh/enginehost_ed25519",
			IdleTimeout: 10 * time.Minute,
			MaxSessions: 16,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

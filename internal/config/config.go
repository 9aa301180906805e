// Package config loads the enginehost configuration: a YAML file found by
// a fixed search order, overridden by ENGINEHOST_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/enginehost/internal/assets"
	"github.com/vovakirdan/enginehost/internal/core"
	"github.com/vovakirdan/enginehost/internal/surface"
)

// Config is the complete host configuration.
type Config struct {
	Assets  AssetsConfig  `yaml:"assets"`
	Surface SurfaceConfig `yaml:"surface"`
	Display DisplayConfig `yaml:"display"`
	Engine  EngineConfig  `yaml:"engine"`
	Storage StorageConfig `yaml:"storage"`
	SSH     SSHConfig     `yaml:"ssh"`
	Log     LogConfig     `yaml:"log"`

	// Path is the file the configuration was read from, or "" for the
	// embedded default.
	Path string `yaml:"-"`
}

// AssetsConfig selects the asset source and the staging destination.
type AssetsConfig struct {
	Source   string `yaml:"source" env:"ENGINEHOST_ASSETS_SOURCE"`
	Prefix   string `yaml:"prefix" env:"ENGINEHOST_ASSETS_PREFIX"`
	Root     string `yaml:"root" env:"ENGINEHOST_ASSETS_ROOT"`
	Classify string `yaml:"classify" env:"ENGINEHOST_ASSETS_CLASSIFY"`
	Strict   bool   `yaml:"strict" env:"ENGINEHOST_ASSETS_STRICT"`
}

// ColorRequest is a surface request in bits per channel.
type ColorRequest struct {
	Red     int `yaml:"red"`
	Green   int `yaml:"green"`
	Blue    int `yaml:"blue"`
	Alpha   int `yaml:"alpha"`
	Depth   int `yaml:"depth"`
	Stencil int `yaml:"stencil"`
}

// SurfaceConfig selects the configuration strategy.
type SurfaceConfig struct {
	Strategy string       `yaml:"strategy" env:"ENGINEHOST_SURFACE_STRATEGY"`
	Depth    int          `yaml:"depth" env:"ENGINEHOST_SURFACE_DEPTH"`
	Stencil  int          `yaml:"stencil" env:"ENGINEHOST_SURFACE_STENCIL"`
	Custom   ColorRequest `yaml:"custom"`
}

// CandidateConfig is one display configuration.
type CandidateConfig struct {
	ID         int      `yaml:"id"`
	Red        int      `yaml:"red"`
	Green      int      `yaml:"green"`
	Blue       int      `yaml:"blue"`
	Alpha      int      `yaml:"alpha"`
	Depth      int      `yaml:"depth"`
	Stencil    int      `yaml:"stencil"`
	Samples    int      `yaml:"samples"`
	Renderable []string `yaml:"renderable"` // es2, es3
}

// DisplayConfig lists the software display's configurations.
type DisplayConfig struct {
	Configs []CandidateConfig `yaml:"configs"`
}

// EngineConfig selects the engine and frame rate.
type EngineConfig struct {
	Name     string `yaml:"name" env:"ENGINEHOST_ENGINE"`
	TickRate int    `yaml:"tick_rate" env:"ENGINEHOST_TICK_RATE"`
}

// StorageConfig locates the journal database.
type StorageConfig struct {
	Path     string `yaml:"path" env:"ENGINEHOST_DB"`
	Disabled bool   `yaml:"disabled" env:"ENGINEHOST_DB_DISABLED"`
}

// SSHConfig configures the remote host shell.
type SSHConfig struct {
	Addr        string        `yaml:"addr" env:"ENGINEHOST_SSH_ADDR"`
	HostKeyPath string        `yaml:"host_key_path" env:"ENGINEHOST_SSH_HOST_KEY"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"ENGINEHOST_SSH_IDLE_TIMEOUT"`
	MaxSessions int           `yaml:"max_sessions" env:"ENGINEHOST_SSH_MAX_SESSIONS"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `yaml:"level" env:"ENGINEHOST_LOG_LEVEL"`
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Assets.Root) == "" {
		errs = append(errs, errors.New("assets.root is empty"))
	}
	if _, err := c.Assets.Classifier(); err != nil {
		errs = append(errs, fmt.Errorf("assets.classify: %w", err))
	}
	if _, err := c.Surface.Selection(); err != nil {
		errs = append(errs, fmt.Errorf("surface: %w", err))
	}
	if _, err := c.Display.Candidates(); err != nil {
		errs = append(errs, fmt.Errorf("display: %w", err))
	}
	if c.Engine.Name == "" {
		errs = append(errs, errors.New("engine.name is empty"))
	}
	if err := c.Timing().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("engine.tick_rate: %w", err))
	}
	if !c.Storage.Disabled && c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is empty"))
	}
	if c.SSH.MaxSessions < 0 {
		errs = append(errs, errors.New("ssh.max_sessions is negative"))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Classifier returns the configured entry classifier.
func (a AssetsConfig) Classifier() (assets.Classifier, error) {
	return assets.ParseClassifier(a.Classify)
}

// Selection converts the surface section into a negotiator selection.
func (s SurfaceConfig) Selection() (surface.Selection, error) {
	strategy, err := surface.ParseStrategy(s.Strategy)
	if err != nil {
		return surface.Selection{}, err
	}

	var sel surface.Selection
	switch strategy {
	case surface.OpaquePreset:
		sel = surface.Opaque(s.Depth, s.Stencil)
	case surface.TranslucentPreset:
		sel = surface.Translucent(s.Depth, s.Stencil)
	default:
		sel = surface.Custom(surface.Request{
			Red:     s.Custom.Red,
			Green:   s.Custom.Green,
			Blue:    s.Custom.Blue,
			Alpha:   s.Custom.Alpha,
			Depth:   s.Custom.Depth,
			Stencil: s.Custom.Stencil,
		})
	}
	if err := sel.Request().Validate(); err != nil {
		return surface.Selection{}, err
	}
	return sel, nil
}

// Candidates converts the display section into software display specs.
// An empty list yields surface.DefaultCandidates.
func (d DisplayConfig) Candidates() ([]surface.CandidateSpec, error) {
	if len(d.Configs) == 0 {
		return surface.DefaultCandidates(), nil
	}

	specs := make([]surface.CandidateSpec, 0, len(d.Configs))
	seen := make(map[int]bool)
	for i, c := range d.Configs {
		id := c.ID
		if id == 0 {
			id = i + 1
		}
		if seen[id] {
			return nil, fmt.Errorf("configs[%d]: duplicate id %d", i, id)
		}
		seen[id] = true

		for _, v := range []int{c.Red, c.Green, c.Blue, c.Alpha, c.Depth, c.Stencil, c.Samples} {
			if v < 0 {
				return nil, fmt.Errorf("configs[%d]: negative size", i)
			}
		}

		renderable, err := parseRenderable(c.Renderable)
		if err != nil {
			return nil, fmt.Errorf("configs[%d]: %w", i, err)
		}
		specs = append(specs, surface.CandidateSpec{
			ID:         id,
			Red:        c.Red,
			Green:      c.Green,
			Blue:       c.Blue,
			Alpha:      c.Alpha,
			Depth:      c.Depth,
			Stencil:    c.Stencil,
			Samples:    c.Samples,
			Renderable: renderable,
		})
	}
	return specs, nil
}

// parseRenderable maps API names to renderable bits. Empty means ES2.
func parseRenderable(names []string) (int, error) {
	if len(names) == 0 {
		return surface.OpenGLES2Bit, nil
	}
	bits := 0
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "es2", "gles2":
			bits |= surface.OpenGLES2Bit
		case "es3", "gles3":
			bits |= surface.OpenGLES3Bit
		default:
			return 0, fmt.Errorf("unknown renderable type %q", n)
		}
	}
	return bits, nil
}

// Timing returns the frame timing.
func (c Config) Timing() core.Timing {
	return core.Timing{TickRate: c.Engine.TickRate}
}

// LogLevel returns the parsed log level, defaulting to info.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

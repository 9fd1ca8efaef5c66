package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/pendulab/internal/chain"
	"github.com/san-kum/pendulab/internal/sim"
	"github.com/san-kum/pendulab/internal/trail"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 1.0 / 60
	DefaultDuration = 20.0
	DefaultLinks    = 3
	DefaultTheme    = "default"
	DefaultFPS      = 60
	DefaultLogLevel = "info"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Links    int          `yaml:"links"`
	Dt       float64      `yaml:"dt"`
	Duration float64      `yaml:"duration"`
	Gravity  float64      `yaml:"gravity"`
	Damping  float64      `yaml:"damping"`
	Scale    float64      `yaml:"scale"`
	Chain    []LinkConfig `yaml:"chain"`
	Trail    TrailConfig  `yaml:"trail"`
	Display  Display      `yaml:"display"`
	Log      LogConfig    `yaml:"log"`
}

// LinkConfig is one link in user units: meters, kilograms and degrees.
type LinkConfig struct {
	Length float64 `yaml:"length"`
	Mass   float64 `yaml:"mass"`
	Angle  float64 `yaml:"angle"`
}

type TrailConfig struct {
	Show      bool `yaml:"show"`
	MaxPoints int  `yaml:"max_points"`
}

type Display struct {
	Theme string `yaml:"theme"`
	FPS   int    `yaml:"fps"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func DefaultLink(i int) LinkConfig {
	return LinkConfig{Length: chain.DefaultLength, Mass: chain.DefaultMass, Angle: chain.DefaultAngles[i]}
}

func DefaultConfig() *Config {
	cfg := &Config{
		Links:    DefaultLinks,
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Gravity:  chain.DefaultGravity,
		Damping:  chain.DefaultDamping,
		Scale:    chain.DefaultScale,
		Chain:    make([]LinkConfig, chain.MaxLinks),
		Trail:    TrailConfig{Show: true, MaxPoints: trail.DefaultCapacity},
		Display:  Display{Theme: DefaultTheme, FPS: DefaultFPS},
		Log:      LogConfig{Level: DefaultLogLevel},
	}
	for i := range cfg.Chain {
		cfg.Chain[i] = DefaultLink(i)
	}
	return cfg
}

// Load reads a YAML file over the defaults. Links the file leaves out keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// fill pads the chain with default links up to the link count.
func (c *Config) fill() {
	for i := len(c.Chain); i < c.Links && i < chain.MaxLinks; i++ {
		c.Chain = append(c.Chain, DefaultLink(i))
	}
}

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 0) }

func (c *Config) Validate() error {
	if c.Links < chain.MinLinks || c.Links > chain.MaxLinks {
		return fmt.Errorf("%w: got %d", chain.ErrLinkCount, c.Links)
	}
	if len(c.Chain) < c.Links {
		return fmt.Errorf("%w: %d links configured for a %d-link chain", chain.ErrLinkCount, len(c.Chain), c.Links)
	}
	if !positive(c.Dt) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalid, c.Dt)
	}
	if !positive(c.Duration) {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalid, c.Duration)
	}
	if !positive(c.Scale) {
		return fmt.Errorf("%w: scale must be positive, got %f", ErrInvalid, c.Scale)
	}
	if math.IsNaN(c.Gravity) || math.IsInf(c.Gravity, 0) {
		return fmt.Errorf("%w: gravity %f", ErrInvalid, c.Gravity)
	}
	if c.Damping < 0 || math.IsNaN(c.Damping) || math.IsInf(c.Damping, 0) {
		return fmt.Errorf("%w: damping must be non-negative, got %f", ErrInvalid, c.Damping)
	}
	for i, l := range c.Chain[:c.Links] {
		if !positive(l.Length) || !positive(l.Mass) {
			return fmt.Errorf("%w: link %d needs positive length and mass", ErrInvalid, i+1)
		}
		if math.IsNaN(l.Angle) || math.IsInf(l.Angle, 0) {
			return fmt.Errorf("%w: link %d angle %f", ErrInvalid, i+1, l.Angle)
		}
	}
	if !trail.ValidCapacity(c.Trail.MaxPoints) {
		return fmt.Errorf("%w: %d not in [%d, %d]", chain.ErrCapacity,
			c.Trail.MaxPoints, trail.MinCapacity, trail.MaxCapacity)
	}
	if c.Display.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, c.Display.FPS)
	}
	return nil
}

// WithLinks returns a copy of c resized to n links.
func (c *Config) WithLinks(n int) *Config {
	cp := *c
	cp.Chain = append([]LinkConfig(nil), c.Chain...)
	cp.Links = n
	cp.fill()
	return &cp
}

// Params converts the configuration into simulator parameters.
func (c *Config) Params() sim.Params {
	n := c.Links
	if n > len(c.Chain) {
		n = len(c.Chain)
	}
	p := sim.Params{
		Lengths:       make([]float64, n),
		Masses:        make([]float64, n),
		Angles:        make([]float64, n),
		Gravity:       c.Gravity,
		Damping:       c.Damping,
		ShowPath:      c.Trail.Show,
		MaxPathPoints: c.Trail.MaxPoints,
		Scale:         c.Scale,
	}
	for i, l := range c.Chain[:n] {
		p.Lengths[i] = l.Length
		p.Masses[i] = l.Mass
		p.Angles[i] = l.Angle
	}
	return p
}

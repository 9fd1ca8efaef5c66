package config

import "sort"

func preset(n int, dt, duration, damping float64, links ...LinkConfig) *Config {
	cfg := DefaultConfig()
	cfg.Links = n
	cfg.Dt = dt
	cfg.Duration = duration
	cfg.Damping = damping
	copy(cfg.Chain, links)
	return cfg
}

// Presets are keyed by chain kind, then by preset name.
var Presets = map[string]map[string]*Config{
	"single": {
		"small": preset(1, 0.005, 20, 0,
			LinkConfig{Length: 1.5, Mass: 20, Angle: 10}),
		"large": preset(1, 0.005, 20, 0,
			LinkConfig{Length: 1.5, Mass: 20, Angle: 150}),
		"damped": preset(1, 0.01, 30, 0.3,
			LinkConfig{Length: 1.5, Mass: 20, Angle: 90}),
	},
	"double": {
		"gentle": preset(2, 0.005, 30, 0,
			LinkConfig{Length: 1.5, Mass: 20, Angle: 15},
			LinkConfig{Length: 1.5, Mass: 20, Angle: 15}),
		"chaos": preset(2, 0.002, 60, 0,
			LinkConfig{Length: 1.5, Mass: 20, Angle: 170},
			LinkConfig{Length: 1.5, Mass: 20, Angle: 170}),
		"whip": preset(2, 0.002, 30, 0.02,
			LinkConfig{Length: 2, Mass: 40, Angle: 90},
			LinkConfig{Length: 0.75, Mass: 2, Angle: 0}),
	},
	"triple": {
		"classic": preset(3, 1.0/60, 60, 0.02,
			LinkConfig{Length: 1.5, Mass: 20, Angle: 90},
			LinkConfig{Length: 1.5, Mass: 20, Angle: 60},
			LinkConfig{Length: 1.5, Mass: 20, Angle: -90}),
		"chaos": preset(3, 0.002, 60, 0,
			LinkConfig{Length: 1.5, Mass: 20, Angle: 120},
			LinkConfig{Length: 1.5, Mass: 20, Angle: 120},
			LinkConfig{Length: 1.5, Mass: 20, Angle: 120}),
		"settle": preset(3, 0.005, 60, 0.5,
			LinkConfig{Length: 1, Mass: 10, Angle: 45},
			LinkConfig{Length: 1, Mass: 10, Angle: -45},
			LinkConfig{Length: 1, Mass: 10, Angle: 45}),
	},
}

// Kind names the preset group for an n-link chain.
func Kind(n int) string {
	switch n {
	case 1:
		return "single"
	case 2:
		return "double"
	default:
		return "triple"
	}
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(kind, name string) *Config {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	cfg, ok := kindPresets[name]
	if !ok {
		return nil
	}
	return cfg.WithLinks(cfg.Links)
}

// ListPresets returns the preset names of a kind, sorted.
func ListPresets(kind string) []string {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(kindPresets))
	for name := range kindPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Kinds() []string {
	kinds := make([]string, 0, len(Presets))
	for k := range Presets {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Package script plays timed parameter edits against a running chain.
//
// A script is a YAML file:
//
//	name: moon
//	links: 2
//	angles: [90, 60]
//	events:
//	  - at: 5
//	    set:
//	      gravity: 1.62
//	  - at: 12
//	    action: reset
//
// Event times are seconds since the script started. The script clock keeps
// running while the chain is paused, and a reset does not restart it.
package script

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	ActionStart = "start"
	ActionPause = "pause"
	ActionReset = "reset"
)

var ErrScript = errors.New("script: invalid")

type Script struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Links       int       `yaml:"links"`
	Angles      []float64 `yaml:"angles"`
	Events      []Event   `yaml:"events"`
}

// Event sets parameters, runs an action, or both, once simulated time
// reaches At.
type Event struct {
	At     float64            `yaml:"at"`
	Set    map[string]float64 `yaml:"set"`
	Action string             `yaml:"action"`
}

func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(s.Events, func(i, j int) bool { return s.Events[i].At < s.Events[j].At })
	return &s, nil
}

func (s *Script) Validate() error {
	if s.Links < 0 || s.Links > 3 {
		return fmt.Errorf("%w: links %d", ErrScript, s.Links)
	}
	if s.Links > 0 && len(s.Angles) > s.Links {
		return fmt.Errorf("%w: %d angles for %d links", ErrScript, len(s.Angles), s.Links)
	}
	for i, e := range s.Events {
		if e.At < 0 {
			return fmt.Errorf("%w: event %d at negative time %f", ErrScript, i+1, e.At)
		}
		switch e.Action {
		case "", ActionStart, ActionPause, ActionReset:
		default:
			return fmt.Errorf("%w: event %d has unknown action %q", ErrScript, i+1, e.Action)
		}
		if e.Action == "" && len(e.Set) == 0 {
			return fmt.Errorf("%w: event %d does nothing", ErrScript, i+1)
		}
	}
	return nil
}

// InitialAngles makes a Script a parameter source. A script without angles
// yields nil, which leaves the chain's defaults in place.
func (s *Script) InitialAngles() []float64 {
	if len(s.Angles) == 0 {
		return nil
	}
	out := make([]float64, len(s.Angles))
	copy(out, s.Angles)
	return out
}

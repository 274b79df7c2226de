// Package renderer plays a sequence headless at a fixed frame rate and records what every
// bound object looked like on each frame, plus the notifications fired along the way.
package renderer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/matinee/internal/curve"
)

// Sample is the observable state of one object on one frame
type Sample struct {
	Object   string                  `yaml:"object"`
	Position curve.Vector            `yaml:"position"`
	Rotation curve.Vector            `yaml:"rotation"`
	Hidden   bool                    `yaml:"hidden,omitempty"`
	Floats   map[string]float64      `yaml:"floats,omitempty"`
	Vectors  map[string]curve.Vector `yaml:"vectors,omitempty"`
	Colors   map[string]curve.Color  `yaml:"colors,omitempty"`
	Bools    map[string]bool         `yaml:"bools,omitempty"`
}

// Frame is one captured frame
type Frame struct {
	Index    int      `yaml:"index"`
	Time     float64  `yaml:"time"`
	State    string   `yaml:"state"`
	View     string   `yaml:"view,omitempty"` // Object the camera looks through
	Fade     float64  `yaml:"fade,omitempty"`
	Dilation float64  `yaml:"dilation"`
	Sounds   []string `yaml:"sounds,omitempty"` // Cues playing on this frame
	Samples  []Sample `yaml:"samples"`
}

// Event is a notification recorded during playback
type Event struct {
	Frame int     `yaml:"frame"` // First frame captured after the notification
	Kind  string  `yaml:"kind"`
	Group string  `yaml:"group,omitempty"`
	Name  string  `yaml:"name,omitempty"`
	Time  float64 `yaml:"time"`
}

// Trace is a complete recording of one playback session
type Trace struct {
	Version  string  `yaml:"version"`
	Sequence string  `yaml:"sequence"`
	Session  string  `yaml:"session"`
	FPS      int     `yaml:"fps"`
	Frames   []Frame `yaml:"frames"`
	Events   []Event `yaml:"events,omitempty"`
}

// Count returns how many events called name were recorded.
func (t *Trace) Count(name string) int {
	n := 0
	for _, e := range t.Events {
		if e.Name == name {
			n++
		}
	}
	return n
}

// TracePath creates a timestamped trace filename in dir
func TracePath(dir, sequence string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("trace_%s_%s.yaml", sequence, timestamp))
}

// WriteTrace writes a trace to a YAML file
func WriteTrace(trace *Trace, path string) error {
	data, err := yaml.Marshal(trace)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadTrace reads a trace from a YAML file
func ReadTrace(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var trace Trace
	if err := yaml.Unmarshal(data, &trace); err != nil {
		return nil, err
	}

	return &trace, nil
}

package director

import "github.com/ivlev/matinee/internal/curve"

// CameraCutInfo is where the camera will be when a cut happens
type CameraCutInfo struct {
	Time     float64      `yaml:"time"`  // Cut time in seconds
	Group    string       `yaml:"group"` // Group that takes the view
	Location curve.Vector `yaml:"location"`
}

// CutList is the exported set of camera cuts of one sequence
type CutList struct {
	Version  string          `yaml:"version"`
	Sequence string          `yaml:"sequence"`
	Length   float64         `yaml:"length"`
	Cuts     []CameraCutInfo `yaml:"cuts"`
}

// NewCutList wraps precomputed cuts for export.
func NewCutList(name string, length float64, cuts []CameraCutInfo) *CutList {
	return &CutList{
		Version:  "1.0",
		Sequence: name,
		Length:   length,
		Cuts:     cuts,
	}
}

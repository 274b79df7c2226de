package sequence

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/matinee/internal/track"
)

// FormatVersion is written into every encoded sequence.
const FormatVersion = "1.0"

type sequenceDoc struct {
	Version   string     `yaml:"version"`
	Name      string     `yaml:"name"`
	Length    float64    `yaml:"length"`
	LoopStart float64    `yaml:"loop-start,omitempty"`
	LoopEnd   float64    `yaml:"loop-end,omitempty"`
	Groups    []groupDoc `yaml:"groups"`
}

type groupDoc struct {
	Name   string      `yaml:"name"`
	Kind   GroupKind   `yaml:"kind,omitempty"`
	Folder string      `yaml:"folder,omitempty"`
	Tracks []yaml.Node `yaml:"tracks,omitempty"`
}

// Encode serialises seq. Each track is a mapping with a kind field selecting its variant.
func Encode(seq *Sequence) ([]byte, error) {
	doc := sequenceDoc{
		Version:   FormatVersion,
		Name:      seq.Name,
		Length:    seq.Length,
		LoopStart: seq.LoopStart,
		LoopEnd:   seq.LoopEnd,
	}
	for _, g := range seq.Groups {
		gd := groupDoc{Name: g.Name, Kind: g.Kind, Folder: g.Folder}
		for _, tr := range g.Tracks {
			n, err := encodeTrack(tr)
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", g.Name, err)
			}
			gd.Tracks = append(gd.Tracks, n)
		}
		doc.Groups = append(doc.Groups, gd)
	}
	return yaml.Marshal(&doc)
}

func encodeTrack(tr track.Track) (yaml.Node, error) {
	var n yaml.Node
	if err := n.Encode(tr); err != nil {
		return n, fmt.Errorf("encode %s track: %w", tr.Kind(), err)
	}
	if n.Kind != yaml.MappingNode {
		return n, fmt.Errorf("encode %s track: not a mapping", tr.Kind())
	}
	kind := []*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: "kind"},
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: tr.Kind().String()},
	}
	n.Content = append(kind, n.Content...)
	return n, nil
}

// Decode parses a sequence and sorts its keys. It does not validate.
func Decode(data []byte) (*Sequence, error) {
	var doc sequenceDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	seq := &Sequence{
		Name:      doc.Name,
		Length:    doc.Length,
		LoopStart: doc.LoopStart,
		LoopEnd:   doc.LoopEnd,
	}
	for _, gd := range doc.Groups {
		g := &Group{Name: gd.Name, Kind: gd.Kind, Folder: gd.Folder}
		for i := range gd.Tracks {
			tr, err := decodeTrack(&gd.Tracks[i])
			if err != nil {
				return nil, fmt.Errorf("group %q track %d: %w", gd.Name, i, err)
			}
			g.Tracks = append(g.Tracks, tr)
		}
		seq.Groups = append(seq.Groups, g)
	}
	seq.Normalize()
	return seq, nil
}

func decodeTrack(n *yaml.Node) (track.Track, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: track is not a mapping", n.Line)
	}
	var kind string
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == "kind" {
			kind = n.Content[i+1].Value
			break
		}
	}
	if kind == "" {
		return nil, fmt.Errorf("line %d: track without kind", n.Line)
	}
	k, err := track.ParseKind(kind)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	tr, err := track.New(k)
	if err != nil {
		return nil, err
	}
	if err := n.Decode(tr); err != nil {
		return nil, err
	}
	return tr, nil
}

// Write saves seq to path as YAML.
func Write(seq *Sequence, path string) error {
	data, err := Encode(seq)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Read loads and validates a sequence from a YAML file.
func Read(path string) (*Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	seq, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := seq.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return seq, nil
}

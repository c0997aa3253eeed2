package models

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultScaleName is used when a session does not ask for a specific deck.
const DefaultScaleName = "fibonacci"

//go:embed scales.yaml
var builtinScales []byte

// Scale is a named set of allowed estimate values, sorted ascending.
type Scale struct {
	Name   string `yaml:"name"`
	Values []int  `yaml:"values"`
}

// Allows reports whether v is one of the scale's values.
func (s Scale) Allows(v int) bool {
	_, ok := slices.BinarySearch(s.Values, v)
	return ok
}

// View returns the snapshot form of the scale.
func (s Scale) View() ScaleView {
	return ScaleView{Name: s.Name, Values: slices.Clone(s.Values)}
}

// Scales indexes the decks known to the server.
type Scales map[string]Scale

// ParseScales decodes a YAML deck document.
func ParseScales(data []byte) (Scales, error) {
	var doc struct {
		Scales []Scale `yaml:"scales"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse scales: %w", err)
	}

	out := make(Scales, len(doc.Scales))
	for _, sc := range doc.Scales {
		if sc.Name == "" {
			return nil, fmt.Errorf("parse scales: scale without a name")
		}
		if len(sc.Values) == 0 {
			return nil, fmt.Errorf("parse scales: scale %q has no values", sc.Name)
		}
		if _, dup := out[sc.Name]; dup {
			return nil, fmt.Errorf("parse scales: duplicate scale %q", sc.Name)
		}
		values := slices.Clone(sc.Values)
		slices.Sort(values)
		values = slices.Compact(values)
		if values[0] < 0 {
			return nil, fmt.Errorf("parse scales: scale %q has a negative value", sc.Name)
		}
		out[sc.Name] = Scale{Name: sc.Name, Values: values}
	}
	return out, nil
}

// BuiltinScales returns the decks shipped with the server.
func BuiltinScales() Scales {
	scales, err := ParseScales(builtinScales)
	if err != nil {
		panic(err)
	}
	return scales
}

// Lookup returns the named scale, or the fallback one when name is unknown or empty.
func (s Scales) Lookup(name, fallback string) (Scale, bool) {
	if sc, ok := s[name]; ok {
		return sc, true
	}
	sc, ok := s[fallback]
	return sc, ok
}

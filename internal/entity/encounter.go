package entity

import (
	"embed"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"chosenoffset.com/raidnight/internal/core/grid"
	"gopkg.in/yaml.v3"
)

//go:embed encounters/*.yaml
var builtin embed.FS

// Definition describes one actor in an encounter file
type Definition struct {
	Name       string      `yaml:"name"`
	Kind       Kind        `yaml:"kind"`
	X          int         `yaml:"x"`
	Y          int         `yaml:"y"`
	Initiative *Initiative `yaml:"initiative,omitempty"`
	Color      string      `yaml:"color,omitempty"` // "#rrggbb"
	Cost       *int        `yaml:"cost,omitempty"`
	Effects    string      `yaml:"effects,omitempty"`
}

// Encounter is a named set of actors and their starting cells
type Encounter struct {
	Name   string       `yaml:"name"`
	Actors []Definition `yaml:"actors"`
}

// LoadEncounter reads an encounter from a YAML file
func LoadEncounter(path string) (*Encounter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read encounter: %w", err)
	}
	return ParseEncounter(data)
}

// ParseEncounter decodes an encounter from YAML
func ParseEncounter(data []byte) (*Encounter, error) {
	var enc Encounter
	if err := yaml.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("failed to parse encounter: %w", err)
	}
	if len(enc.Actors) == 0 {
		return nil, fmt.Errorf("encounter %q has no actors", enc.Name)
	}
	return &enc, nil
}

// BuiltinNames lists the encounters compiled into the binary, sorted by name.
func BuiltinNames() []string {
	entries, err := builtin.ReadDir("encounters")
	if err != nil {
		panic(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	return names
}

// BuiltinEncounter loads a compiled-in encounter by name
func BuiltinEncounter(name string) (*Encounter, error) {
	data, err := builtin.ReadFile("encounters/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("no built-in encounter %q: %w", name, err)
	}
	return ParseEncounter(data)
}

// DefaultEncounter returns the built-in skirmish
func DefaultEncounter() *Encounter {
	enc, err := BuiltinEncounter("skirmish")
	if err != nil {
		panic(err)
	}
	return enc
}

// Request converts a definition into a spawn request
func (d Definition) Request() (SpawnRequest, error) {
	c, err := parseHexColor(d.Color)
	if err != nil {
		return SpawnRequest{}, fmt.Errorf("actor %s: %w", d.Name, err)
	}
	return SpawnRequest{
		Name:       d.Name,
		Kind:       d.Kind,
		Pos:        grid.C(d.X, d.Y),
		Initiative: d.Initiative,
		Color:      c,
		Cost:       d.Cost,
		Effects:    d.Effects,
	}, nil
}

// Populate spawns every actor of the encounter into roster and marks their
// cells on g. It stops at the first actor that cannot be placed.
func (e *Encounter) Populate(g *grid.BattleGrid, roster *Roster) ([]*Actor, error) {
	actors := make([]*Actor, 0, len(e.Actors))
	for _, def := range e.Actors {
		req, err := def.Request()
		if err != nil {
			return actors, err
		}
		a, err := roster.SpawnOn(g, req)
		if err != nil {
			return actors, fmt.Errorf("encounter %q: %w", e.Name, err)
		}
		actors = append(actors, a)
	}
	return actors, nil
}

var defaultColors = map[Kind]color.RGBA{
	KindPlayer: {R: 0x4c, G: 0xaf, B: 0x50, A: 0xff},
	KindEnemy:  {R: 0xe5, G: 0x39, B: 0x35, A: 0xff},
}

// parseHexColor parses "#rrggbb". An empty string yields a zero color, which
// the renderer replaces with the kind's default.
func parseHexColor(s string) (color.RGBA, error) {
	if s == "" {
		return color.RGBA{}, nil
	}
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// DisplayColor returns the actor's color, falling back to the kind default
func (a *Actor) DisplayColor() color.RGBA {
	if a.Color.A != 0 {
		return a.Color
	}
	if c, ok := defaultColors[a.Kind]; ok {
		return c
	}
	return color.RGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff}
}

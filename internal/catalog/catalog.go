// Package catalog discovers playable encounters: the ones compiled into the
// binary and any YAML files in an encounter directory.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chosenoffset.com/raidnight/internal/entity"
)

// Entry represents a discoverable encounter
type Entry struct {
	Name string // Display name (file name without extension)
	Path string // File path, empty for built-ins
}

// Builtin reports whether the entry is compiled into the binary
func (e Entry) Builtin() bool {
	return e.Path == ""
}

// Load reads the encounter the entry points at
func (e Entry) Load() (*entity.Encounter, error) {
	if e.Builtin() {
		return entity.BuiltinEncounter(e.Name)
	}
	return entity.LoadEncounter(e.Path)
}

// String describes the entry for listings
func (e Entry) String() string {
	if e.Builtin() {
		return e.Name + " (built-in)"
	}
	return e.Name + " (" + e.Path + ")"
}

// Scan lists the built-in encounters followed by every encounter file in
// dir. A file shadows a built-in of the same name. A missing dir is not an
// error.
func Scan(dir string) ([]Entry, error) {
	var out []Entry
	for _, name := range entity.BuiltinNames() {
		out = append(out, Entry{Name: name})
	}
	if dir == "" {
		return out, nil
	}

	files, err := scanEncounterFiles(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("failed to read encounter directory: %w", err)
	}

	for _, f := range files {
		e := Entry{
			Name: strings.TrimSuffix(f, filepath.Ext(f)),
			Path: filepath.Join(dir, f),
		}
		if i := indexOf(out, e.Name); i >= 0 {
			out[i] = e
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Find returns the entry called name
func Find(entries []Entry, name string) (Entry, bool) {
	if i := indexOf(entries, name); i >= 0 {
		return entries[i], true
	}
	return Entry{}, false
}

func indexOf(entries []Entry, name string) int {
	for i, e := range entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// scanEncounterFiles finds the YAML files directly inside dir
func scanEncounterFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		// Skip directories and dotfiles
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		lower := strings.ToLower(name)
		if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
			files = append(files, name)
		}
	}
	return files, nil
}

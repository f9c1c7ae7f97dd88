package level

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// authoredFile is the on-disk YAML form of a hand-made level.
type authoredFile struct {
	Level *int     `yaml:"level"`
	Rows  []string `yaml:"rows"`
}

// LoadTilemapFromBytes parses one authored level.
//
// Postcondition: Returns the level index and a validated Tilemap, or an error.
func LoadTilemapFromBytes(data []byte) (int, Tilemap, error) {
	var f authoredFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return 0, Tilemap{}, fmt.Errorf("parsing level YAML: %w", err)
	}
	if f.Level == nil {
		return 0, Tilemap{}, fmt.Errorf("level YAML: level is required")
	}
	if *f.Level < 0 {
		return 0, Tilemap{}, fmt.Errorf("level YAML: level must be >= 0, got %d", *f.Level)
	}
	m, err := ParseTilemap(f.Rows)
	if err != nil {
		return 0, Tilemap{}, fmt.Errorf("level %d: %w", *f.Level, err)
	}
	return *f.Level, m, nil
}

// LoadTilemaps reads all *.yaml and *.yml files in dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns authored tilemaps keyed by level, or an error on the first invalid
// file or on two files claiming the same level.
func LoadTilemaps(dir string) (map[int]Tilemap, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading levels dir %q: %w", dir, err)
	}

	maps := make(map[int]Tilemap)
	sources := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		lvl, m, err := LoadTilemapFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if prev, dup := sources[lvl]; dup {
			return nil, fmt.Errorf("level %d defined in both %q and %q", lvl, prev, path)
		}
		maps[lvl] = m
		sources[lvl] = path
	}
	return maps, nil
}

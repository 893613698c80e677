package layout

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/rob-myers/npc-cli-sub000/internal/geom"
)

// Placement puts a geomorph into the world.
type Placement struct {
	Key       string         `yaml:"key"`
	Transform geom.Transform `yaml:"transform"`
}

// MapFile is the YAML shape of a map: geomorph templates plus placements.
type MapFile struct {
	Name       string      `yaml:"name"`
	Geomorphs  []*Geomorph `yaml:"geomorphs"`
	Placements []Placement `yaml:"placements"`
}

// Map is a loaded, validated set of placed regions.
type Map struct {
	Name      string
	Geomorphs map[string]*Geomorph
	Regions   []*Region
}

// BuildMap prepares the geomorphs and places them. Region ids follow the
// placement order.
func BuildMap(name string, geomorphs []*Geomorph, placements []Placement, opts PrepareOptions) (*Map, error) {
	m := &Map{
		Name:      name,
		Geomorphs: make(map[string]*Geomorph, len(geomorphs)),
		Regions:   make([]*Region, 0, len(placements)),
	}

	for _, g := range geomorphs {
		if _, dup := m.Geomorphs[g.Key]; dup {
			return nil, fmt.Errorf("%w: geomorph %q defined twice", ErrInvalidLayout, g.Key)
		}
		if err := g.Prepare(opts); err != nil {
			return nil, fmt.Errorf("preparing geomorph %q: %w", g.Key, err)
		}
		m.Geomorphs[g.Key] = g
	}

	for i, p := range placements {
		g, ok := m.Geomorphs[p.Key]
		if !ok {
			return nil, fmt.Errorf("placement %d: %w %q", i, ErrUnknownGeomorph, p.Key)
		}
		t := p.Transform
		if t == (geom.Transform{}) {
			t = geom.Identity
		}
		r, err := NewRegion(i, g, t)
		if err != nil {
			return nil, fmt.Errorf("placement %d (%s): %w", i, p.Key, err)
		}
		m.Regions = append(m.Regions, r)
	}

	return m, nil
}

// ParseMap decodes a YAML map and builds it.
func ParseMap(data []byte, opts PrepareOptions) (*Map, error) {
	var f MapFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}
	return BuildMap(f.Name, f.Geomorphs, f.Placements, opts)
}

// LoadMapFile reads and builds a YAML map file. The map name defaults to
// the file name without extension.
func LoadMapFile(path string, opts PrepareOptions) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map %s: %w", path, err)
	}
	m, err := ParseMap(data, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing map %s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// LoadMapDir loads every *.yaml / *.yml map in dir concurrently.
// Maps are returned in directory order.
func LoadMapDir(ctx context.Context, dir string, opts PrepareOptions) ([]*Map, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading map dir %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	maps := make([]*Map, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := LoadMapFile(path, opts)
			if err != nil {
				return err
			}
			maps[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("maps loaded", "dir", dir, "count", len(maps))
	return maps, nil
}

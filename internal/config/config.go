package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rob-myers/npc-cli-sub000/internal/gmgraph"
	"github.com/rob-myers/npc-cli-sub000/internal/layout"
)

// Navgraph holds all configuration for the navgraph tool.
type Navgraph struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Maps
	MapsDir     string        `yaml:"maps_dir"`
	LoadTimeout time.Duration `yaml:"load_timeout"` // whole map directory (default: 30s)

	// Graph construction and search
	Nav NavConfig `yaml:"nav"`

	// Persistence of door states and graph snapshots; off by default
	Persist  bool           `yaml:"persist"`
	Database DatabaseConfig `yaml:"database"`
}

// NavConfig tunes graph construction and A* costs.
type NavConfig struct {
	GridSize    float64       `yaml:"grid_size"`
	EntryOffset float64       `yaml:"entry_offset"`
	Lenient     bool          `yaml:"lenient"` // missing door entries are warnings
	Costs       gmgraph.Costs `yaml:"costs"`
}

// GraphOptions returns the region graph options.
func (n NavConfig) GraphOptions() gmgraph.Options {
	return gmgraph.Options{GridSize: n.GridSize, Costs: n.Costs}
}

// PrepareOptions returns the layout validation options.
func (n NavConfig) PrepareOptions() layout.PrepareOptions {
	return layout.PrepareOptions{EntryOffset: n.EntryOffset, Lenient: n.Lenient}
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultNavgraph returns Navgraph config with sensible defaults.
func DefaultNavgraph() Navgraph {
	return Navgraph{
		LogLevel:    "info",
		MapsDir:     "maps",
		LoadTimeout: 30 * time.Second,
		Nav: NavConfig{
			GridSize:    gmgraph.DefaultGridSize,
			EntryOffset: layout.DefaultEntryOffset,
			Costs:       gmgraph.DefaultCosts,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "navgraph",
			Password: "navgraph",
			DBName:   "navgraph",
			SSLMode:  "disable",
		},
	}
}

// LoadNavgraph loads navgraph config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadNavgraph(path string) (Navgraph, error) {
	cfg := DefaultNavgraph()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

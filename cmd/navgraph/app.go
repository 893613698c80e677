package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rob-myers/npc-cli-sub000/internal/config"
	"github.com/rob-myers/npc-cli-sub000/internal/db"
	"github.com/rob-myers/npc-cli-sub000/internal/layout"
	"github.com/rob-myers/npc-cli-sub000/internal/world"
)

// app is the state shared by all subcommands of one invocation.
type app struct {
	configPath string
	mapsDir    string
	mapName    string

	cfg config.Navgraph
	out io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "navgraph",
		Short:         "Build and query navigation graphs of geomorph maps",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", ConfigPath, "config file (env NAVGRAPH_CONFIG)")
	root.PersistentFlags().StringVar(&a.mapsDir, "maps", "", "map directory (overrides maps_dir)")
	root.PersistentFlags().StringVar(&a.mapName, "map", "", "map to load (default: first map in the directory)")

	root.AddCommand(
		a.buildCmd(),
		a.pathCmd(),
		a.roomCmd(),
		a.aroundCmd(),
		a.doorCmd(),
		a.snapshotCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfgPath := a.configPath
	if p := os.Getenv("NAVGRAPH_CONFIG"); p != "" && !cmd.Flags().Changed("config") {
		cfgPath = p
	}
	cfg, err := config.LoadNavgraph(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.mapsDir != "" {
		cfg.MapsDir = a.mapsDir
	}
	a.cfg = cfg
	a.out = cmd.OutOrStdout()

	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Debug("config loaded", "path", cfgPath, "maps_dir", cfg.MapsDir, "persist", cfg.Persist)
	return nil
}

// loadMaps parses the whole map directory within the configured timeout.
func (a *app) loadMaps(ctx context.Context) ([]*layout.Map, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.LoadTimeout)
	defer cancel()

	maps, err := layout.LoadMapDir(ctx, a.cfg.MapsDir, a.cfg.Nav.PrepareOptions())
	if err != nil {
		return nil, fmt.Errorf("loading maps: %w", err)
	}
	if len(maps) == 0 {
		return nil, fmt.Errorf("no maps in %s", a.cfg.MapsDir)
	}
	return maps, nil
}

// loadWorld loads the selected map into the shared world. With persistence
// enabled the stored door states are restored into it.
func (a *app) loadWorld(ctx context.Context) (*world.World, error) {
	maps, err := a.loadMaps(ctx)
	if err != nil {
		return nil, err
	}

	m := maps[0]
	if a.mapName != "" {
		m = nil
		for _, candidate := range maps {
			if candidate.Name == a.mapName {
				m = candidate
				break
			}
		}
		if m == nil {
			return nil, fmt.Errorf("map %q not found in %s", a.mapName, a.cfg.MapsDir)
		}
	}

	w := a.sharedWorld()
	if err := w.Load(m.Name, m.Regions); err != nil {
		return nil, err
	}

	if a.cfg.Persist {
		err := a.withPersistence(ctx, func(p *persistence) error {
			n, err := p.service.RestoreDoors(ctx, w)
			if err != nil {
				return err
			}
			slog.Info("door states restored", "map", w.Name(), "doors", n)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return w, nil
}

// sharedWorld returns the process-wide world configured for this invocation,
// with every door closed.
func (a *app) sharedWorld() *world.World {
	w := world.Instance()
	w.Configure(a.cfg.Nav.GraphOptions())
	w.Doors().Load(nil)
	return w
}

type persistence struct {
	doors   *db.DoorStateRepository
	service *db.WorldPersistenceService
}

// withPersistence migrates and connects to the database, then runs fn.
func (a *app) withPersistence(ctx context.Context, fn func(*persistence) error) error {
	database, err := db.Open(ctx, a.cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	return fn(&persistence{
		doors:   database.Doors(),
		service: database.Persistence(),
	})
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rob-myers/npc-cli-sub000/internal/doorstate"
	"github.com/rob-myers/npc-cli-sub000/internal/geom"
	"github.com/rob-myers/npc-cli-sub000/internal/gmgraph"
)

func (a *app) buildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the graphs of every map and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			maps, err := a.loadMaps(cmd.Context())
			if err != nil {
				return err
			}
			for _, m := range maps {
				w := a.sharedWorld()
				if err := w.Load(m.Name, m.Regions); err != nil {
					return err
				}
				snap, err := w.Snapshot()
				if err != nil {
					return err
				}
				global := 0
				for _, e := range snap.Edges {
					if e.Kind == gmgraph.GlobalEdge {
						global++
					}
				}
				fmt.Fprintf(a.out, "%s: %d regions, %d nodes, %d edges (%d global), fingerprint %s\n",
					m.Name, len(m.Regions), len(snap.Nodes), len(snap.Edges), global, snap.Fingerprint[:12])
				w.Reset()
			}
			return nil
		},
	}
}

func (a *app) pathCmd() *cobra.Command {
	var (
		openAll bool
		open    []string
	)
	c := &cobra.Command{
		Use:   "path SRC_X SRC_Y DST_X DST_Y",
		Short: "Find a region-level path between two world points",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			pts, err := parsePoints(args)
			if err != nil {
				return err
			}
			w, err := a.loadWorld(cmd.Context())
			if err != nil {
				return err
			}
			if openAll {
				w.Doors().OpenAll(w.Regions())
			}
			for _, s := range open {
				regionID, doorID, err := parseDoor(s)
				if err != nil {
					return err
				}
				w.Doors().Set(regionID, doorID, true)
			}

			path, err := w.FindPath(pts[0], pts[1])
			if err != nil {
				return err
			}
			for _, n := range path.Nodes {
				fmt.Fprintln(a.out, n.ID())
			}
			for _, t := range path.Transitions {
				fmt.Fprintf(a.out, "cross region %d door %d %v -> region %d door %d %v\n",
					t.SrcRegionID, t.SrcDoorID, t.SrcEntry, t.DstRegionID, t.DstDoorID, t.DstEntry)
			}
			fmt.Fprintf(a.out, "cost %g\n", path.Cost)
			return nil
		},
	}
	c.Flags().BoolVar(&openAll, "open-all", false, "treat every door as open")
	c.Flags().StringSliceVar(&open, "open", nil, "open a door, as REGION:DOOR (repeatable)")
	return c
}

func (a *app) roomCmd() *cobra.Command {
	var includeDoors bool
	c := &cobra.Command{
		Use:   "room X Y",
		Short: "Print the room containing a world point",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pts, err := parsePoints(args)
			if err != nil {
				return err
			}
			w, err := a.loadWorld(cmd.Context())
			if err != nil {
				return err
			}
			room, ok := w.FindRoom(pts[0], includeDoors)
			if !ok {
				return fmt.Errorf("%w: %v", gmgraph.ErrPointNotInRegion, pts[0])
			}
			fmt.Fprintf(a.out, "region %d room %d\n", room.RegionID, room.RoomID)
			return nil
		},
	}
	c.Flags().BoolVar(&includeDoors, "doors", false, "also match points inside doorways")
	return c
}

func (a *app) aroundCmd() *cobra.Command {
	var openOnly bool
	c := &cobra.Command{
		Use:   "around X Y",
		Short: "Print the room containing a point and the rooms next to it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pts, err := parsePoints(args)
			if err != nil {
				return err
			}
			w, err := a.loadWorld(cmd.Context())
			if err != nil {
				return err
			}
			rooms, err := w.RoomsAround(pts[0], openOnly)
			if err != nil {
				return err
			}
			for _, r := range rooms {
				fmt.Fprintf(a.out, "region %d room %d\n", r.RegionID, r.RoomID)
			}
			return nil
		},
	}
	c.Flags().BoolVar(&openOnly, "open-only", false, "only cross open doors")
	return c
}

// doorCmd sets or toggles one door. The change outlives the process only
// when persistence is enabled.
func (a *app) doorCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "door",
		Short: "Change door state",
	}
	set := &cobra.Command{
		Use:       "set REGION:DOOR open|closed",
		Short:     "Open or close a door",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"open", "closed"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var open bool
			switch args[1] {
			case "open":
				open = true
			case "closed":
			default:
				return fmt.Errorf("door state %q: want open or closed", args[1])
			}
			return a.changeDoor(cmd, args[0], func(s *doorstate.Store, regionID, doorID int) bool {
				s.Set(regionID, doorID, open)
				return open
			})
		},
	}
	toggle := &cobra.Command{
		Use:   "toggle REGION:DOOR",
		Short: "Flip a door",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.changeDoor(cmd, args[0], (*doorstate.Store).Toggle)
		},
	}
	c.AddCommand(set, toggle)
	return c
}

func (a *app) changeDoor(cmd *cobra.Command, ref string, change func(*doorstate.Store, int, int) bool) error {
	regionID, doorID, err := parseDoor(ref)
	if err != nil {
		return err
	}
	w, err := a.loadWorld(cmd.Context())
	if err != nil {
		return err
	}
	r := w.Regions()
	if regionID < 0 || regionID >= len(r) || doorID < 0 || doorID >= len(r[regionID].Geomorph.Doors) {
		return fmt.Errorf("door %d of region %d does not exist", doorID, regionID)
	}

	open := change(w.Doors(), regionID, doorID)
	state := doorstate.State{RegionID: regionID, DoorID: doorID, Open: open}
	if a.cfg.Persist {
		err := a.withPersistence(cmd.Context(), func(p *persistence) error {
			return p.doors.Set(cmd.Context(), w.Name(), state)
		})
		if err != nil {
			return err
		}
	} else {
		slog.Warn("persistence disabled, door change is not saved")
	}

	word := "closed"
	if open {
		word = "open"
	}
	fmt.Fprintf(a.out, "region %d door %d %s\n", regionID, doorID, word)
	return nil
}

func (a *app) snapshotCmd() *cobra.Command {
	var outPath string
	c := &cobra.Command{
		Use:   "snapshot",
		Short: "Snapshot the region graph of a map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := a.loadWorld(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := w.Snapshot()
			if err != nil {
				return err
			}

			if outPath != "" {
				data, err := snap.Marshal()
				if err != nil {
					return err
				}
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					return fmt.Errorf("writing snapshot: %w", err)
				}
			}
			if a.cfg.Persist {
				err := a.withPersistence(cmd.Context(), func(p *persistence) error {
					changed, err := p.service.SnapshotChanged(cmd.Context(), w)
					if err != nil {
						return err
					}
					if !changed {
						slog.Info("stored snapshot is current", "fingerprint", snap.Fingerprint)
					}
					return p.service.SaveWorld(cmd.Context(), w)
				})
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(a.out, "%s %s %d nodes %d edges\n", w.Name(), snap.Fingerprint, len(snap.Nodes), len(snap.Edges))
			return nil
		},
	}
	c.Flags().StringVarP(&outPath, "out", "o", "", "write the msgpack snapshot to a file")
	return c
}

// parsePoints reads consecutive X Y pairs.
func parsePoints(args []string) ([]geom.Vec, error) {
	pts := make([]geom.Vec, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		x, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing x %q: %w", args[i], err)
		}
		y, err := strconv.ParseFloat(args[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing y %q: %w", args[i+1], err)
		}
		pts = append(pts, geom.V(x, y))
	}
	return pts, nil
}

// parseDoor reads REGION:DOOR.
func parseDoor(s string) (regionID, doorID int, err error) {
	var rest string
	if n, _ := fmt.Sscanf(s, "%d:%d%s", &regionID, &doorID, &rest); n != 2 {
		return 0, 0, fmt.Errorf("door %q: want REGION:DOOR", s)
	}
	return regionID, doorID, nil
}

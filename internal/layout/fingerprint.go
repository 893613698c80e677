package layout

import (
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/blake2b"

	"github.com/rob-myers/npc-cli-sub000/internal/geom"
)

type fingerprintRegion struct {
	Key       string            `msgpack:"k"`
	Transform geom.Transform    `msgpack:"t"`
	Bounds    geom.Rect         `msgpack:"b"`
	NavRects  []geom.Rect       `msgpack:"n"`
	Doors     []fingerprintDoor `msgpack:"d"`
	Windows   [][2]int          `msgpack:"w"`
	Rooms     int               `msgpack:"r"`
}

type fingerprintDoor struct {
	Seg     [2]geom.Vec  `msgpack:"s"`
	Normal  geom.Vec     `msgpack:"n"`
	RoomIDs [2]int       `msgpack:"r"`
	Hull    bool         `msgpack:"h"`
	Dir     int8         `msgpack:"d"`
	Entries [2]*geom.Vec `msgpack:"e"` // depend on the entry offset
}

// Fingerprint hashes everything the navigation graphs are built from,
// including the door entries computed by Prepare, so equal fingerprints
// mean equal graphs. Door state is not included.
func Fingerprint(regions []*Region) (string, error) {
	canon := make([]fingerprintRegion, len(regions))
	for i, r := range regions {
		g := r.Geomorph
		fr := fingerprintRegion{
			Key:       g.Key,
			Transform: r.Transform,
			Bounds:    g.Bounds,
			NavRects:  g.NavRects,
			Doors:     make([]fingerprintDoor, len(g.Doors)),
			Windows:   make([][2]int, len(g.Windows)),
			Rooms:     len(g.Rooms),
		}
		for j, d := range g.Doors {
			dir := int8(-1)
			if d.Direction != nil {
				dir = int8(*d.Direction)
			}
			fr.Doors[j] = fingerprintDoor{Seg: d.Seg, Normal: d.Normal, RoomIDs: d.RoomIDs, Hull: d.Hull, Dir: dir, Entries: d.Entries}
		}
		for j, w := range g.Windows {
			fr.Windows[j] = w.RoomIDs
		}
		canon[i] = fr
	}

	data, err := msgpack.Marshal(canon)
	if err != nil {
		return "", fmt.Errorf("encoding layout fingerprint: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

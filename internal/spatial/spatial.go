// Package spatial implements the hierarchical tile index used to answer
// "which services cover this position" without scanning the whole catalog.
//
// The globe is divided into five grids of increasing resolution. Level 0 is
// a 2x4 grid (90x90 degree tiles); each level doubles both axes, so level 4
// is a 32x64 grid of roughly 5.6x5.6 degree tiles. A tile is identified by a
// 32-bit key packing level, latitude index and longitude index. Lookups probe
// the finest level first and fall back toward level 0, so a dense regional
// network shadows a coarse continental one at the same position.
package spatial

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"ntrip-atlas/internal/catalog"
	"ntrip-atlas/internal/geo"
)

const (
	// MinLevel and MaxLevel bound the tile hierarchy.
	MinLevel = 0
	MaxLevel = 4

	levelShift = 29
	latShift   = 13
	indexMask  = 0x1FFF
	levelMask  = 0x7

	// MaxTiles and MaxPerTile are the default index capacities. They are
	// deliberately small; the database build fails loudly when either is
	// exceeded rather than degrading lookup behavior.
	MaxTiles   = 4096
	MaxPerTile = 64
)

var (
	ErrOutOfRange = errors.New("spatial: coordinate out of range")
	ErrBadLevel   = errors.New("spatial: level out of range")
	ErrTileFull   = errors.New("spatial: tile service list full")
	ErrIndexFull  = errors.New("spatial: tile capacity exhausted")
)

// Key is a packed tile identifier. Valid keys are never zero: the packed
// value is offset by one so a zero Key can mean "no tile".
type Key uint32

// LatTiles returns the number of latitude rows at a level.
func LatTiles(level int) int { return 2 << uint(level) }

// LonTiles returns the number of longitude columns at a level.
func LonTiles(level int) int { return 4 << uint(level) }

// MakeKey packs a tile address. Indices are masked to 13 bits; callers are
// expected to stay within the grid for the level.
func MakeKey(level, latIdx, lonIdx int) Key {
	packed := uint32(level&levelMask)<<levelShift |
		uint32(latIdx&indexMask)<<latShift |
		uint32(lonIdx&indexMask)
	return Key(packed + 1)
}

// Unpack splits a key back into level and grid indices.
func (k Key) Unpack() (level, latIdx, lonIdx int) {
	packed := uint32(k) - 1
	level = int(packed >> levelShift & levelMask)
	latIdx = int(packed >> latShift & indexMask)
	lonIdx = int(packed & indexMask)
	return
}

// TileFor returns the key of the tile containing a position at a level.
func TileFor(level int, lat, lon float64) (Key, error) {
	if level < MinLevel || level > MaxLevel {
		return 0, ErrBadLevel
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, ErrOutOfRange
	}
	return MakeKey(level, latIndex(level, lat), lonIndex(level, lon)), nil
}

func latIndex(level int, lat float64) int {
	n := LatTiles(level)
	i := int(math.Floor((lat + 90) * float64(n) / 180))
	if i >= n { // lat == +90 lands in the last row
		i = n - 1
	}
	return i
}

func lonIndex(level int, lon float64) int {
	n := LonTiles(level)
	i := int(math.Floor((lon + 180) * float64(n) / 360))
	if i >= n { // lon == +180 wraps into the last column
		i = n - 1
	}
	return i
}

// Bounds returns the geographic extent of the tile, in centi-degrees.
func (k Key) Bounds() geo.Rect {
	level, latIdx, lonIdx := k.Unpack()
	latSpan := 180.0 / float64(LatTiles(level))
	lonSpan := 360.0 / float64(LonTiles(level))
	return geo.Rect{
		LatMin: int16(math.Round((float64(latIdx)*latSpan - 90) * 100)),
		LatMax: int16(math.Round((float64(latIdx+1)*latSpan - 90) * 100)),
		LonMin: int16(math.Round((float64(lonIdx)*lonSpan - 180) * 100)),
		LonMax: int16(math.Round((float64(lonIdx+1)*lonSpan - 180) * 100)),
	}
}

func (k Key) String() string {
	level, latIdx, lonIdx := k.Unpack()
	return fmt.Sprintf("L%d[%d,%d]", level, latIdx, lonIdx)
}

// Config bounds an index build.
type Config struct {
	MaxTiles   int
	MaxPerTile int
}

// DefaultConfig returns the capacities the compiled-in database is built
// against.
func DefaultConfig() Config {
	return Config{MaxTiles: MaxTiles, MaxPerTile: MaxPerTile}
}

type tile struct {
	key      Key
	services []uint16
}

// Index maps positions to catalog service indices. It is built once and
// read-only afterward, so concurrent lookups need no locking.
type Index struct {
	tiles []tile // sorted by key
}

// Build indexes every regional service at every level it overlaps. Global
// services are not indexed; they are always candidates regardless of
// position. Returns ErrIndexFull or ErrTileFull when the configured
// capacities are exceeded.
func Build(services []catalog.Service, cfg Config) (*Index, error) {
	if cfg.MaxTiles <= 0 || cfg.MaxPerTile <= 0 {
		cfg = DefaultConfig()
	}
	byKey := make(map[Key][]uint16)
	for i, s := range services {
		if s.IsGlobal() {
			continue
		}
		r := s.Coverage.Bounds()
		for level := MinLevel; level <= MaxLevel; level++ {
			for _, k := range tilesOverlapping(level, r) {
				list := byKey[k]
				if len(list) >= cfg.MaxPerTile {
					return nil, fmt.Errorf("%w: %s (adding %s)", ErrTileFull, k, s.ID)
				}
				if list == nil && len(byKey) >= cfg.MaxTiles {
					return nil, fmt.Errorf("%w: %d tiles", ErrIndexFull, cfg.MaxTiles)
				}
				byKey[k] = append(list, uint16(i))
			}
		}
	}

	idx := &Index{tiles: make([]tile, 0, len(byKey))}
	for k, list := range byKey {
		idx.tiles = append(idx.tiles, tile{key: k, services: list})
	}
	sort.Slice(idx.tiles, func(a, b int) bool { return idx.tiles[a].key < idx.tiles[b].key })
	return idx, nil
}

// tilesOverlapping enumerates the keys of every tile at a level that
// intersects the coverage rectangle. Rectangles crossing the antimeridian
// split into two longitude spans.
func tilesOverlapping(level int, r geo.Rect) []Key {
	latLo := latIndex(level, float64(r.LatMin)/100)
	latHi := latIndex(level, float64(r.LatMax)/100)

	spans := [][2]int{}
	if r.Wraps() {
		spans = append(spans,
			[2]int{lonIndex(level, float64(r.LonMin) / 100), LonTiles(level) - 1},
			[2]int{0, lonIndex(level, float64(r.LonMax) / 100)})
	} else {
		spans = append(spans,
			[2]int{lonIndex(level, float64(r.LonMin) / 100), lonIndex(level, float64(r.LonMax) / 100)})
	}

	var keys []Key
	for _, span := range spans {
		for lat := latLo; lat <= latHi; lat++ {
			for lon := span[0]; lon <= span[1]; lon++ {
				keys = append(keys, MakeKey(level, lat, lon))
			}
		}
	}
	return keys
}

// Lookup returns the catalog indices of services indexed at the finest
// populated level covering the position, or nil when no tile matches.
func (x *Index) Lookup(lat, lon float64) []uint16 {
	for level := MaxLevel; level >= MinLevel; level-- {
		k, err := TileFor(level, lat, lon)
		if err != nil {
			return nil
		}
		if list := x.find(k); list != nil {
			return list
		}
	}
	return nil
}

func (x *Index) find(k Key) []uint16 {
	i := sort.Search(len(x.tiles), func(i int) bool { return x.tiles[i].key >= k })
	if i < len(x.tiles) && x.tiles[i].key == k {
		return x.tiles[i].services
	}
	return nil
}

// Stats summarizes an index for diagnostics and the database build step.
type Stats struct {
	Tiles      int
	Entries    int
	MaxPerTile int
}

func (x *Index) Stats() Stats {
	st := Stats{Tiles: len(x.tiles)}
	for _, t := range x.tiles {
		st.Entries += len(t.services)
		if len(t.services) > st.MaxPerTile {
			st.MaxPerTile = len(t.services)
		}
	}
	return st
}

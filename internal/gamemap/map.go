package gamemap

import (
	"fmt"
	"log"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gravitas-015/hexward/internal/config"
	"github.com/gravitas-015/hexward/pkg/hex"
	"github.com/paulmach/orb"
)

// Hex is the payload stored in each cell of the shared map
type Hex struct {
	Terrain string `json:"terrain"`
}

// CellView is a read-only copy of a cell and its pixel geometry
type CellView struct {
	Point   hex.Point
	Col     int
	Row     int
	Center  orb.Point
	Corners [6]orb.Point
	Hex     Hex
}

// Info summarizes the map's shape
type Info struct {
	Radius      int
	Orientation hex.Orientation
	CellSize    float64
	Cells       int
}

// GameMap is a hex.Map guarded by a RWMutex so connections can share it
type GameMap struct {
	mu   sync.RWMutex
	grid *hex.Map[Hex]
}

// New creates the map described by cfg, pre-filled with cfg.FillTerrain
// when it is set
func New(cfg config.GridConfig) (*GameMap, error) {
	log.Printf("Creating %s hex map with radius %d", cfg.Orientation, cfg.Radius)

	grid, err := hex.NewMap[Hex](cfg.Radius, cfg.Orientation, hex.WithCellSize(cfg.CellSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create hex map: %w", err)
	}

	if cfg.FillTerrain != "" {
		n, err := grid.Fill(cfg.Radius, func(hex.Point) Hex { return Hex{Terrain: cfg.FillTerrain} })
		if err != nil {
			return nil, fmt.Errorf("failed to fill hex map: %w", err)
		}
		log.Printf("Filled %s cells with %q", humanize.Comma(int64(n)), cfg.FillTerrain)
	}

	return &GameMap{grid: grid}, nil
}

// Info returns the map's radius, layout and cell count
func (gm *GameMap) Info() Info {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	l := gm.grid.Layout()
	return Info{
		Radius:      gm.grid.Radius(),
		Orientation: l.Orientation,
		CellSize:    l.Size,
		Cells:       gm.grid.Len(),
	}
}

// Len returns the number of stored cells
func (gm *GameMap) Len() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return gm.grid.Len()
}

// GetHex returns the cell at p; the error wraps hex.ErrAbsentKey or
// hex.ErrOutOfBounds when there is nothing to return
func (gm *GameMap) GetHex(p hex.Point) (CellView, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if _, err := gm.grid.Lookup(p); err != nil {
		return CellView{}, err
	}
	c, _ := gm.grid.Cell(p)
	return view(c), nil
}

// SetHex stores h at p
func (gm *GameMap) SetHex(p hex.Point, h Hex) (CellView, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if err := gm.grid.Set(p, h); err != nil {
		return CellView{}, err
	}
	c, _ := gm.grid.Cell(p)
	return view(c), nil
}

// RemoveHex deletes the cell at p
func (gm *GameMap) RemoveHex(p hex.Point) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	return gm.grid.Remove(p)
}

// Neighbors returns the occupied neighbors of p
func (gm *GameMap) Neighbors(p hex.Point) []CellView {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return views(gm.grid.NeighborsOf(p))
}

// Range returns occupied cells within k of center
func (gm *GameMap) Range(center hex.Point, k int) []CellView {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return views(gm.grid.CellsInRange(center, k))
}

// Ring returns occupied cells exactly k from center
func (gm *GameMap) Ring(center hex.Point, k int) []CellView {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return views(gm.grid.CellsInRing(center, k))
}

// Line returns occupied cells on the segment a-b
func (gm *GameMap) Line(a, b hex.Point) []CellView {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return views(gm.grid.CellsOnLine(a, b))
}

// Cells returns every stored cell in spiral order
func (gm *GameMap) Cells() []CellView {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return views(gm.grid.Cells())
}

// PointAt returns the point under a pixel and whether it is inside the map
func (gm *GameMap) PointAt(pt orb.Point) (hex.Point, bool) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	p := gm.grid.FromPixel(pt)
	return p, gm.grid.InBounds(p)
}

// Bound returns the pixel bounding box of stored cells
func (gm *GameMap) Bound() (orb.Bound, bool) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return gm.grid.Bound()
}

func view(c *hex.Cell[Hex]) CellView {
	col, row := c.Offset()
	return CellView{
		Point:   c.Point(),
		Col:     col,
		Row:     row,
		Center:  c.Center(),
		Corners: c.Corners(),
		Hex:     c.Data(),
	}
}

func views(cells []*hex.Cell[Hex]) []CellView {
	out := make([]CellView, len(cells))
	for i, c := range cells {
		out[i] = view(c)
	}
	return out
}

// Package collisionmap implements the sparse bit-tile collision grid of
// §4.D: an auto-expanding, chunk-indexed map over the tilemask pool.
package collisionmap

import (
	"unsafe"

	"github.com/outpost-sim/asteroids/tilemask"
)

const (
	// ChunkBits is log2 of the chunk size: each chunk covers 32x32 tiles.
	ChunkBits = 5
	ChunkSize = 1 << ChunkBits

	// Border is the constant padding added to platform_bound on all sides
	// before deriving the indexable chunk grid.
	Border = 48

	// PadDefault is the hub's half-extent: New seeds the square
	// [-PadDefault, PadDefault] on both axes, and Unset treats
	// [-PadDefault, PadDefault) on both axes as immutable.
	PadDefault = 5
)

// Bound is an inclusive axis-aligned box in world tile coordinates.
type Bound struct {
	Left, Right, Top, Bottom int32
}

// Map is the sparse collision grid: a rectangular region of chunk-pool
// indices, auto-expanded as writes fall outside the current bound.
type Map struct {
	platformBound Bound

	xOffset, yOffset int32
	gridW, gridH     int32
	tiles            []uint32

	pool *tilemask.Pool
}

// divFloor divides by the chunk size, flooring toward negative infinity —
// an arithmetic right shift does exactly this for two's-complement ints.
func divFloor(v int32) int32 { return v >> ChunkBits }

// mod32 is the non-negative modulo used to find a tile's local bit
// coordinate: ((v & 31) + 32) & 31.
func mod32(v int32) uint32 {
	return uint32((v&(ChunkSize-1))+ChunkSize) & (ChunkSize - 1)
}

// New constructs a Map with platform_bound = {0,0,0,0}, then immediately
// seeds the immutable hub square of radius PadDefault, matching the
// original's constructor (set_bounds to the hub extent, then Set every
// hub tile).
func New() *Map {
	m := NewBare()
	for i := int32(-PadDefault); i <= PadDefault; i++ {
		for j := int32(-PadDefault); j <= PadDefault; j++ {
			m.Set(i, j)
		}
	}
	return m
}

// NewBare constructs a Map sized to the same default hub extent as New,
// but without seeding any solid tiles — every position starts clear,
// including the hub square itself. This is a testing convenience for
// exercising the kernel's integration and escape-culling math in
// isolation from the hub's permanent collision geometry; it has no
// analogue in the original source, which always seeds the hub.
func NewBare() *Map {
	m := &Map{pool: tilemask.NewPool()}
	m.setBounds(-PadDefault, PadDefault, PadDefault, -PadDefault)
	return m
}

// PlatformBound returns the current (non-border-expanded) platform bound.
func (m *Map) PlatformBound() Bound { return m.platformBound }

// Offsets returns the chunk-space origin and grid dimensions currently
// indexed by tiles[].
func (m *Map) Offsets() (xOffset, yOffset, gridW, gridH int32) {
	return m.xOffset, m.yOffset, m.gridW, m.gridH
}

func (m *Map) chunkIndex(cx, cy int32) (int32, bool) {
	if cx < m.xOffset || cx >= m.xOffset+m.gridW ||
		cy < m.yOffset || cy >= m.yOffset+m.gridH {
		return 0, false
	}
	return (cx - m.xOffset) + (cy-m.yOffset)*m.gridW, true
}

// GetTile returns the mask for chunk (cx, cy), or (nil, false) if that
// chunk falls outside the currently indexed grid.
func (m *Map) GetTile(cx, cy int32) (*tilemask.Mask, bool) {
	idx, ok := m.chunkIndex(cx, cy)
	if !ok {
		return nil, false
	}
	return m.pool.Get(m.tiles[idx]), true
}

// Set sets the tile bit at world position (x, y). It returns true iff the
// bit transitioned from 0 to 1.
func (m *Map) Set(x, y int32) bool {
	if x < m.platformBound.Left || x > m.platformBound.Right ||
		y > m.platformBound.Top || y < m.platformBound.Bottom {
		left := min32(m.platformBound.Left, x)
		right := max32(m.platformBound.Right, x)
		top := max32(m.platformBound.Top, y)
		bottom := min32(m.platformBound.Bottom, y)
		m.setBounds(left, right, top, bottom)
	}

	cx, cy := divFloor(x), divFloor(y)
	idx, ok := m.chunkIndex(cx, cy)
	if !ok {
		// Unreachable given the expansion above: every position inside
		// platform_bound indexes within the BORDER-inflated grid.
		return false
	}

	if m.tiles[idx] == tilemask.EmptySentinel {
		m.tiles[idx] = m.pool.NewTile(true)
	}
	if m.tiles[idx] == tilemask.FullSentinel {
		return false
	}

	tx, ty := mod32(x), mod32(y)
	ti := m.tiles[idx]
	mask := m.pool.Get(ti)
	was := mask.GetBit(tx, ty)
	mask.SetBit(tx, ty, true)
	if mask.All() {
		m.pool.FreeTile(ti)
		m.tiles[idx] = tilemask.FullSentinel
	}
	return !was
}

// Unset clears the tile bit at world position (x, y). It returns true iff
// the bit transitioned from 1 to 0. Positions inside the immutable hub
// square [-PadDefault, PadDefault) on both axes are always a no-op,
// returning false.
func (m *Map) Unset(x, y int32) bool {
	if x >= -PadDefault && x < PadDefault && y >= -PadDefault && y < PadDefault {
		return false
	}

	cx, cy := divFloor(x), divFloor(y)
	idx, ok := m.chunkIndex(cx, cy)
	if !ok {
		return false
	}

	if m.tiles[idx] == tilemask.FullSentinel {
		ti := m.pool.NewTile(false)
		m.pool.Get(ti).SetAll()
		m.tiles[idx] = ti
	}
	if m.tiles[idx] == tilemask.EmptySentinel {
		return false
	}

	tx, ty := mod32(x), mod32(y)
	ti := m.tiles[idx]
	mask := m.pool.Get(ti)
	was := mask.GetBit(tx, ty)
	mask.SetBit(tx, ty, false)
	if mask.None() {
		m.pool.FreeTile(ti)
		m.tiles[idx] = tilemask.EmptySentinel
	}
	return was
}

// setBounds derives new chunk-space geometry for a BORDER-inflated
// [left,right] x [bottom,top] region. If the derived geometry matches the
// current one, only platform_bound is refreshed; otherwise tiles[] is
// reallocated, overlapping chunks are copied to their new slot, and
// everything else is freed back to the pool.
func (m *Map) setBounds(left, right, top, bottom int32) {
	newLeft := divFloor(left - Border)
	newRight := divFloor(right + Border)
	newTop := divFloor(top + Border)
	newBottom := divFloor(bottom - Border)

	newW := newRight - newLeft + 1
	newH := newTop - newBottom + 1

	if newLeft == m.xOffset && newBottom == m.yOffset &&
		newW == m.gridW && newH == m.gridH {
		m.platformBound = Bound{Left: left, Right: right, Top: top, Bottom: bottom}
		return
	}

	newTiles := make([]uint32, newW*newH)
	for y := int32(0); y < m.gridH; y++ {
		for x := int32(0); x < m.gridW; x++ {
			oldX := x + m.xOffset
			oldY := y + m.yOffset
			old := m.tiles[x+y*m.gridW]

			if oldX >= newLeft && oldX <= newRight && oldY >= newBottom && oldY <= newTop {
				nx := oldX - newLeft
				ny := oldY - newBottom
				newTiles[nx+ny*newW] = old
			} else {
				m.pool.FreeTile(old)
			}
		}
	}

	m.tiles = newTiles
	m.xOffset, m.yOffset = newLeft, newBottom
	m.gridW, m.gridH = newW, newH
	m.platformBound = Bound{Left: left, Right: right, Top: top, Bottom: bottom}
}

// ShrinkBounds scans every indexed chunk, computes the tight world-tile
// AABB of every set bit (a full-sentinel chunk contributes its whole
// 32x32 extent), and calls setBounds with that box. A map with no set
// bits at all (impossible in practice: the hub is immutable) leaves the
// bound unchanged.
func (m *Map) ShrinkBounds() {
	found := false
	var minX, maxX, minY, maxY int32

	for cy := int32(0); cy < m.gridH; cy++ {
		for cx := int32(0); cx < m.gridW; cx++ {
			poolIdx := m.tiles[cx+cy*m.gridW]
			if poolIdx == tilemask.EmptySentinel {
				continue
			}

			worldCX := cx + m.xOffset
			worldCY := cy + m.yOffset

			accumulate := func(wx, wy int32) {
				if !found {
					minX, maxX, minY, maxY = wx, wx, wy, wy
					found = true
					return
				}
				minX = min32(minX, wx)
				maxX = max32(maxX, wx)
				minY = min32(minY, wy)
				maxY = max32(maxY, wy)
			}

			if poolIdx == tilemask.FullSentinel {
				accumulate(worldCX*ChunkSize, worldCY*ChunkSize)
				accumulate(worldCX*ChunkSize+ChunkSize-1, worldCY*ChunkSize+ChunkSize-1)
				continue
			}

			mask := m.pool.Get(poolIdx)
			for ty := uint32(0); ty < ChunkSize; ty++ {
				for tx := uint32(0); tx < ChunkSize; tx++ {
					if mask.GetBit(tx, ty) {
						accumulate(worldCX*ChunkSize+int32(tx), worldCY*ChunkSize+int32(ty))
					}
				}
			}
		}
	}

	if !found {
		return
	}
	m.setBounds(minX, maxX, maxY, minY)
}

// MemoryUsageBytes estimates the map's resident memory: the struct itself,
// the pool's mask storage, the tiles index array, and the free list.
func (m *Map) MemoryUsageBytes() int {
	size := int(unsafe.Sizeof(*m))
	size += m.pool.Len() * int(unsafe.Sizeof(tilemask.Mask{}))
	size += m.pool.FreeLen() * int(unsafe.Sizeof(uint32(0)))
	size += len(m.tiles) * int(unsafe.Sizeof(uint32(0)))
	return size
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

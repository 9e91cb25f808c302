// Package tilemask implements the 1024-bit chunk mask and its interning
// pool, the core of §4.C: a 32x32 block of tile bits stored as sixteen
// uint64 words, plus an append-only pool of masks with a free-list and two
// permanent sentinels (index 0 = all-empty, index 1 = all-full).
package tilemask

import "math/bits"

// words is the number of uint64 words backing a 32*32 = 1024 bit mask.
const words = 1024 / 64

// Mask is a 1024-bit vector addressed as a 32x32 grid, bit x + 32*y.
type Mask struct {
	bits [words]uint64
}

func bitIndex(x, y uint32) (word, bit uint32) {
	idx := x + 32*y
	return idx / 64, idx % 64
}

// SetBit sets or clears bit (x, y).
func (m *Mask) SetBit(x, y uint32, value bool) {
	w, b := bitIndex(x, y)
	if value {
		m.bits[w] |= 1 << b
	} else {
		m.bits[w] &^= 1 << b
	}
}

// GetBit reads bit (x, y).
func (m *Mask) GetBit(x, y uint32) bool {
	w, b := bitIndex(x, y)
	return m.bits[w]&(1<<b) != 0
}

// Bit reads the flattened bit index directly (x + 32*y), matching the
// kernel's precomputed bit_index.
func (m *Mask) Bit(index uint32) bool {
	return m.bits[index/64]&(1<<(index%64)) != 0
}

// All reports whether every bit is set.
func (m *Mask) All() bool {
	for _, w := range m.bits {
		if w != ^uint64(0) {
			return false
		}
	}
	return true
}

// None reports whether every bit is clear.
func (m *Mask) None() bool {
	for _, w := range m.bits {
		if w != 0 {
			return false
		}
	}
	return true
}

// Reset clears every bit.
func (m *Mask) Reset() {
	for i := range m.bits {
		m.bits[i] = 0
	}
}

// SetAll sets every bit.
func (m *Mask) SetAll() {
	for i := range m.bits {
		m.bits[i] = ^uint64(0)
	}
}

// PopCount returns the number of set bits, useful for tests and
// memory/occupancy diagnostics.
func (m *Mask) PopCount() int {
	n := 0
	for _, w := range m.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// Sentinel pool indices. These are never allocated to callers of NewTile
// and never appear in a Pool's free list.
const (
	EmptySentinel = 0
	FullSentinel  = 1
)

// Pool is an append-only vector of tile masks with a LIFO free-list of
// reusable indices. Indices 0 and 1 are permanent sentinels standing for
// the canonical all-empty and all-full masks.
type Pool struct {
	tiles []Mask
	free  []uint32
}

// NewPool creates a pool with both sentinels installed.
func NewPool() *Pool {
	p := &Pool{tiles: make([]Mask, 2)}
	p.tiles[EmptySentinel].Reset()
	p.tiles[FullSentinel].SetAll()
	return p
}

// Get returns the mask stored at index i. The sentinels are valid indices.
func (p *Pool) Get(i uint32) *Mask {
	return &p.tiles[i]
}

// Len returns the number of tiles ever allocated (including sentinels and
// currently-free slots).
func (p *Pool) Len() int { return len(p.tiles) }

// FreeLen returns the number of reusable slots on the free list.
func (p *Pool) FreeLen() int { return len(p.free) }

// NewTile pops a reusable index off the free list, or appends a new slot
// if the free list is empty. If zero is true the returned mask is reset to
// all-clear; otherwise its contents are whatever the slot last held and
// the caller must overwrite every bit it cares about.
func (p *Pool) NewTile(zero bool) uint32 {
	var idx uint32
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		p.tiles = append(p.tiles, Mask{})
		idx = uint32(len(p.tiles) - 1)
	}
	if zero {
		p.tiles[idx].Reset()
	}
	return idx
}

// FreeTile returns a tile's storage to the free list. Freeing a sentinel
// is a no-op — sentinels are never allocated to a caller and never appear
// on the free list.
func (p *Pool) FreeTile(i uint32) {
	if i <= FullSentinel {
		return
	}
	p.free = append(p.free, i)
}

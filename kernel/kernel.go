// Package kernel implements the per-tick asteroid update of §4.F/§4.G:
// integrate position by velocity (plus a shared platform drift), test for
// tile collision and directional escape, and branchlessly compact the
// surviving lanes. UpdateScalar and UpdateVector must be bit-identical.
package kernel

import (
	"github.com/outpost-sim/asteroids/asteroid"
	"github.com/outpost-sim/asteroids/collisionmap"
	"github.com/outpost-sim/asteroids/fixedpoint"
	"github.com/outpost-sim/asteroids/hwy"
	"github.com/outpost-sim/asteroids/hwy/contrib/workerpool"
)

const (
	chunkBits = collisionmap.ChunkBits
	border    = int32(collisionmap.Border)
	frac      = fixedpoint.Frac
)

// bounds holds the per-tick precomputed quantities shared by both kernels:
// the world-coordinate escape box (BORDER-inflated platform_bound, shifted
// by the fractional width) and its midpoint, used by the inward-motion
// test.
type bounds struct {
	minX, maxX, minY, maxY int32
	cx, cy                 int64
}

func precompute(m *collisionmap.Map, platformVelDouble float64) (pv int32, b bounds) {
	pb := m.PlatformBound()
	b.minX = (pb.Left - border) << frac
	b.maxX = (pb.Right + border) << frac
	b.minY = (pb.Bottom - border) << frac
	b.maxY = (pb.Top + border) << frac
	b.cx = (int64(b.minX) + int64(b.maxX)) / 2
	b.cy = (int64(b.minY) + int64(b.maxY)) / 2
	pv = fixedpoint.PosFromReal(platformVelDouble).Raw()
	return pv, b
}

func clampI32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mod32 is the non-negative modulo used to recover a tile's local bit
// coordinate from a clamped fixed-to-int tile position.
func mod32(v int32) uint32 {
	return uint32((v&31)+32) & 31
}

// collides reports whether the tile bit at clamped tile coordinates
// (clampedPX, clampedPY) is set, consulting the map once per lane. This is
// the gather-shaped step the spec calls out as not vectorizable.
func collides(m *collisionmap.Map, clampedPX, clampedPY int32) bool {
	cx := clampedPX >> chunkBits
	cy := clampedPY >> chunkBits
	tile, ok := m.GetTile(cx, cy)
	if !ok {
		return false
	}
	return tile.GetBit(mod32(clampedPX), mod32(clampedPY))
}

// lane is the per-asteroid result of one tick's integrate-and-test step.
type lane struct {
	newPX, newPY int32
	remove       bool
}

func updateLane(b bounds, pv, px, py, vx, vy int32, m *collisionmap.Map) lane {
	newPX := px + vx
	newPY := py + vy + pv

	escaped := newPX < b.minX || newPX > b.maxX || newPY < b.minY || newPY > b.maxY

	clampedPX := clampI32(newPX, b.minX, b.maxX) >> frac
	clampedPY := clampI32(newPY, b.minY, b.maxY) >> frac

	colli := collides(m, clampedPX, clampedPY)

	dx := b.cx - int64(newPX)
	dy := b.cy - int64(newPY)
	dx >>= frac
	dy >>= frac
	dot := dx*int64(vx) + dy*int64(vy+pv)
	leaving := escaped && dot <= 0

	return lane{newPX: newPX, newPY: newPY, remove: colli || leaving}
}

// UpdateScalar is the reference per-tick update: a plain per-lane loop
// followed by an eager branchless compaction pass.
func UpdateScalar(store *asteroid.Store, m *collisionmap.Map, platformVelDouble float64) {
	pv, b := precompute(m, platformVelDouble)

	n := store.Size()
	state := store.RawState()
	posX := store.RawPositionX()
	posY := store.RawPositionY()
	velX := store.RawVelocityX()
	velY := store.RawVelocityY()

	writeIndex := 0
	for i := 0; i < n; i++ {
		vx := int32(velX[i].Raw())
		vy := int32(velY[i].Raw())
		l := updateLane(b, pv, posX[i].Raw(), posY[i].Raw(), vx, vy, m)

		state[writeIndex] = state[i]
		posX[writeIndex] = fixedpoint.PosFromRaw(l.newPX)
		posY[writeIndex] = fixedpoint.PosFromRaw(l.newPY)
		velX[writeIndex] = velX[i]
		velY[writeIndex] = velY[i]

		if !l.remove {
			writeIndex++
		}
	}

	store.Resize(writeIndex)
}

// UpdateVector processes lanes in blocks of W = hwy.MaxLanes[int32](),
// using hwy vector operations for the integrate/clamp/escape/inward-motion
// arithmetic. The per-lane tile lookup and the compaction write are
// performed scalarly within the block, matching §4.G: the bit lookup is
// inherently a gather and is not vectorized.
func UpdateVector(store *asteroid.Store, m *collisionmap.Map, platformVelDouble float64) {
	pv, b := precompute(m, platformVelDouble)

	n := store.Size()
	state := store.RawState()
	posX := store.RawPositionX()
	posY := store.RawPositionY()
	velX := store.RawVelocityX()
	velY := store.RawVelocityY()

	w := hwy.MaxLanes[int32]()
	if w <= 0 {
		w = 1
	}
	for w > 16 || (16%w != 0 && w > 1) {
		w /= 2
	}

	pxBuf := make([]int32, w)
	pyBuf := make([]int32, w)
	vxBuf := make([]int32, w)
	vyBuf := make([]int32, w)

	minXVec := hwy.Set[int32](b.minX)
	maxXVec := hwy.Set[int32](b.maxX)
	minYVec := hwy.Set[int32](b.minY)
	maxYVec := hwy.Set[int32](b.maxY)
	pvVec := hwy.Set[int32](pv)

	writeIndex := 0
	for base := 0; base < n; base += w {
		for k := 0; k < w; k++ {
			pxBuf[k] = posX[base+k].Raw()
			pyBuf[k] = posY[base+k].Raw()
			vxBuf[k] = int32(velX[base+k].Raw())
			vyBuf[k] = int32(velY[base+k].Raw())
		}

		px := hwy.Load(pxBuf)
		py := hwy.Load(pyBuf)
		vx := hwy.Load(vxBuf)
		vy := hwy.Load(vyBuf)

		newPX := hwy.Add(px, vx)
		newPY := hwy.Add(hwy.Add(py, vy), pvVec)

		escMask := hwy.MaskOr(
			hwy.MaskOr(hwy.LessThan(newPX, minXVec), hwy.GreaterThan(newPX, maxXVec)),
			hwy.MaskOr(hwy.LessThan(newPY, minYVec), hwy.GreaterThan(newPY, maxYVec)),
		)

		clampedPX := hwy.ShiftRight(hwy.Min(hwy.Max(newPX, minXVec), maxXVec), frac)
		clampedPY := hwy.ShiftRight(hwy.Min(hwy.Max(newPY, minYVec), maxYVec), frac)

		newPXData := newPX.Data()
		newPYData := newPY.Data()
		clampedPXData := clampedPX.Data()
		clampedPYData := clampedPY.Data()

		for k := 0; k < w; k++ {
			i := base + k
			if i >= n {
				// Last block overruns the logical size when n isn't a
				// multiple of w; the remaining lanes are Capacity() padding
				// (asteroid.Store.padLane), not real asteroids.
				break
			}

			colli := collides(m, clampedPXData[k], clampedPYData[k])

			dx := b.cx - int64(newPXData[k])
			dy := b.cy - int64(newPYData[k])
			dx >>= frac
			dy >>= frac
			dot := dx*int64(vxBuf[k]) + dy*int64(vyBuf[k]+pv)
			leaving := escMask.GetBit(k) && dot <= 0

			remove := colli || leaving

			state[writeIndex] = state[i]
			posX[writeIndex] = fixedpoint.PosFromRaw(newPXData[k])
			posY[writeIndex] = fixedpoint.PosFromRaw(newPYData[k])
			velX[writeIndex] = velX[i]
			velY[writeIndex] = velY[i]

			if !remove {
				writeIndex++
			}
		}
	}

	store.Resize(writeIndex)
}

// UpdateSharded splits the per-lane integrate/collide/escape math across
// pool's workers, then performs the order-preserving compaction pass
// serially: the branchless write index is inherently a running count over
// the whole store, so it cannot itself be sharded without breaking the
// "survivors keep relative order" property. Each worker only ever reads
// lane i and writes results[i], so shards never race on the store.
func UpdateSharded(store *asteroid.Store, m *collisionmap.Map, platformVelDouble float64, pool *workerpool.Pool) {
	pv, b := precompute(m, platformVelDouble)

	n := store.Size()
	state := store.RawState()
	posX := store.RawPositionX()
	posY := store.RawPositionY()
	velX := store.RawVelocityX()
	velY := store.RawVelocityY()

	results := make([]lane, n)
	pool.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			vx := int32(velX[i].Raw())
			vy := int32(velY[i].Raw())
			results[i] = updateLane(b, pv, posX[i].Raw(), posY[i].Raw(), vx, vy, m)
		}
	})

	writeIndex := 0
	for i := 0; i < n; i++ {
		l := results[i]

		state[writeIndex] = state[i]
		posX[writeIndex] = fixedpoint.PosFromRaw(l.newPX)
		posY[writeIndex] = fixedpoint.PosFromRaw(l.newPY)
		velX[writeIndex] = velX[i]
		velY[writeIndex] = velY[i]

		if !l.remove {
			writeIndex++
		}
	}

	store.Resize(writeIndex)
}

// Package asteroid implements the Structure-of-Arrays particle store of
// §4.E: five parallel aligned buffers (state, positions, velocities) with a
// logical size distinct from physical capacity, the latter always rounded
// up to a multiple of 16 so the vector kernel never needs a scalar tail.
package asteroid

import (
	"github.com/outpost-sim/asteroids/align"
	"github.com/outpost-sim/asteroids/fixedpoint"
)

// RemoveBit marks a lane as logically dead; it occupies bit 15 of state,
// the top bit of the low 16-bit flags word. The high 16 bits hold the
// prototype id.
const RemoveBit uint32 = 1 << 15

// capAlign is the SoA's capacity rounding granularity: wide enough that
// both the 8-lane and 16-lane vector kernels divide it evenly.
const capAlign = 16

func roundUp16(n int) int {
	return (n + capAlign - 1) &^ (capAlign - 1)
}

// Store is the SoA particle store. Size() is the number of logically live
// lanes; Capacity() is the physical buffer length, always size rounded up
// to capAlign. Lanes in [Size(), Capacity()) are padding: RemoveBit set in
// state, positions and velocities zero.
type Store struct {
	size int

	state  *align.Buffer[uint32]
	posX   *align.Buffer[fixedpoint.Pos]
	posY   *align.Buffer[fixedpoint.Pos]
	velX   *align.Buffer[fixedpoint.Vel]
	velY   *align.Buffer[fixedpoint.Vel]
}

// New creates an empty store.
func New() *Store {
	s := &Store{}
	s.state = align.NewBuffer[uint32](0)
	s.posX = align.NewBuffer[fixedpoint.Pos](0)
	s.posY = align.NewBuffer[fixedpoint.Pos](0)
	s.velX = align.NewBuffer[fixedpoint.Vel](0)
	s.velY = align.NewBuffer[fixedpoint.Vel](0)
	return s
}

// Size returns the number of logically live lanes.
func (s *Store) Size() int { return s.size }

// Capacity returns the physical length shared by every backing buffer.
func (s *Store) Capacity() int { return s.state.Cap() }

func (s *Store) padLane(i int) {
	s.state.Slice()[i] = RemoveBit
	s.posX.Slice()[i] = fixedpoint.PosFromRaw(0)
	s.posY.Slice()[i] = fixedpoint.PosFromRaw(0)
	s.velX.Slice()[i] = fixedpoint.VelFromRaw(0)
	s.velY.Slice()[i] = fixedpoint.VelFromRaw(0)
}

func (s *Store) clearLane(i int) {
	s.state.Slice()[i] = 0
	s.posX.Slice()[i] = fixedpoint.PosFromRaw(0)
	s.posY.Slice()[i] = fixedpoint.PosFromRaw(0)
	s.velX.Slice()[i] = fixedpoint.VelFromRaw(0)
	s.velY.Slice()[i] = fixedpoint.VelFromRaw(0)
}

// Resize sets the logical size to newSize, growing every buffer to
// round_up(newSize, 16) physical elements if that exceeds the current
// physical capacity — Resize never shrinks capacity on its own, only
// Shrink does that. Lanes newly entering the logical range (index in
// [oldSize, newSize)) are reset to blank live defaults (zero state, zero
// position/velocity). Lanes in the padding tail [newSize, Capacity()) are
// always normalized to the padding values, keeping the padding invariant
// exact even across a shrink, though the spec only requires it be
// preserved, not necessarily re-established, for indices that were live a
// moment before.
func (s *Store) Resize(newSize int) {
	oldSize := s.size
	targetCap := roundUp16(newSize)
	oldCap := s.Capacity()

	if targetCap > oldCap {
		s.state.Resize(targetCap)
		s.posX.Resize(targetCap)
		s.posY.Resize(targetCap)
		s.velX.Resize(targetCap)
		s.velY.Resize(targetCap)
	}

	s.size = newSize
	cap := s.Capacity()

	for i := oldSize; i < newSize && i < cap; i++ {
		s.clearLane(i)
	}
	for i := newSize; i < cap; i++ {
		s.padLane(i)
	}
}

// Shrink releases unused physical capacity, reallocating every buffer down
// to round_up(Size(), 16).
func (s *Store) Shrink() {
	newCap := roundUp16(s.size)
	if newCap == s.Capacity() {
		return
	}
	s.state.Resize(newCap)
	s.posX.Resize(newCap)
	s.posY.Resize(newCap)
	s.velX.Resize(newCap)
	s.velY.Resize(newCap)
}

// State returns the state word view over exactly Size() logical lanes,
// backed by the full physical buffer.
func (s *Store) State() []uint32 { return s.state.Slice()[:s.size] }

// PositionX returns the x-position view over exactly Size() logical lanes.
func (s *Store) PositionX() []fixedpoint.Pos { return s.posX.Slice()[:s.size] }

// PositionY returns the y-position view over exactly Size() logical lanes.
func (s *Store) PositionY() []fixedpoint.Pos { return s.posY.Slice()[:s.size] }

// VelocityX returns the x-velocity view over exactly Size() logical lanes.
func (s *Store) VelocityX() []fixedpoint.Vel { return s.velX.Slice()[:s.size] }

// VelocityY returns the y-velocity view over exactly Size() logical lanes.
func (s *Store) VelocityY() []fixedpoint.Vel { return s.velY.Slice()[:s.size] }

// RawState returns the full physical window, including padding lanes —
// used by the kernel and by padding-invariant property tests.
func (s *Store) RawState() []uint32 { return s.state.Slice() }

// RawPositionX returns the full physical window of x-positions.
func (s *Store) RawPositionX() []fixedpoint.Pos { return s.posX.Slice() }

// RawPositionY returns the full physical window of y-positions.
func (s *Store) RawPositionY() []fixedpoint.Pos { return s.posY.Slice() }

// RawVelocityX returns the full physical window of x-velocities.
func (s *Store) RawVelocityX() []fixedpoint.Vel { return s.velX.Slice() }

// RawVelocityY returns the full physical window of y-velocities.
func (s *Store) RawVelocityY() []fixedpoint.Vel { return s.velY.Slice() }

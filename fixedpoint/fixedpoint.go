// Package fixedpoint provides the two Q-formats shared by the asteroid
// kernel: Pos (32-bit raw, position) and Vel (16-bit raw, velocity). Both
// use a fractional width of 11 bits, so 1.0 world unit is raw value 2048.
package fixedpoint

import "math"

// Frac is the shared fractional bit width of Pos and Vel.
const Frac = 11

// Pos is a Q(32-11) fixed-point world coordinate. Range is roughly ±10^6
// world units.
type Pos struct {
	raw int32
}

// PosFromRaw wraps an existing raw value.
func PosFromRaw(raw int32) Pos { return Pos{raw: raw} }

// PosFromReal converts a real-valued coordinate, truncating toward zero.
func PosFromReal(v float64) Pos {
	return Pos{raw: int32(Trunc(v))}
}

// Raw returns the underlying fixed-point value.
func (p Pos) Raw() int32 { return p.raw }

// Real converts back to a floating-point world unit. For diagnostics only;
// the kernel never uses this on its hot path.
func (p Pos) Real() float64 { return float64(p.raw) / (1 << Frac) }

// Add performs raw integer addition of a widened Vel. No saturation is
// performed: the kernel's clamp-to-bounds discipline keeps positions well
// within int32 range (see collisionmap's BORDER-expanded bounds).
func (p Pos) Add(v Vel) Pos {
	return Pos{raw: p.raw + int32(v.raw)}
}

// AddRaw adds an already-widened raw velocity value.
func (p Pos) AddRaw(vraw int32) Pos {
	return Pos{raw: p.raw + vraw}
}

// Vel is a Q(16-11) fixed-point velocity, roughly ±16 world units/tick.
type Vel struct {
	raw int16
}

// VelFromRaw wraps an existing raw value.
func VelFromRaw(raw int16) Vel { return Vel{raw: raw} }

// VelFromReal converts a real-valued velocity, truncating toward zero.
func VelFromReal(v float64) Vel {
	return Vel{raw: int16(Trunc(v))}
}

// Raw returns the underlying fixed-point value.
func (v Vel) Raw() int16 { return v.raw }

// Widen sign-extends the raw velocity to the Pos raw type, the first step
// of any Pos+Vel addition.
func (v Vel) Widen() int32 { return int32(v.raw) }

// Real converts back to a floating-point units/tick value.
func (v Vel) Real() float64 { return float64(v.raw) / (1 << Frac) }

// Trunc rounds a float64 toward zero after scaling by 2^Frac. Shared by
// PosFromReal/VelFromReal so both formats truncate identically.
func Trunc(v float64) int64 {
	return int64(math.Trunc(v * (1 << Frac)))
}

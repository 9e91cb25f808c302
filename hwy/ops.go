package hwy

// Load builds a Vec from the first MaxLanes[T]() elements of src (fewer if
// src is shorter).
func Load[T Lanes](src []T) Vec[T] {
	n := min(len(src), MaxLanes[T]())
	data := make([]T, n)
	copy(data, src[:n])
	return Vec[T]{data: data}
}

// Set builds a full-width Vec with every lane equal to value.
func Set[T Lanes](value T) Vec[T] {
	data := make([]T, MaxLanes[T]())
	for i := range data {
		data[i] = value
	}
	return Vec[T]{data: data}
}

// Add returns the lane-wise sum of a and b.
func Add[T Lanes](a, b Vec[T]) Vec[T] {
	n := min(len(a.data), len(b.data))
	out := make([]T, n)
	for i := range n {
		out[i] = a.data[i] + b.data[i]
	}
	return Vec[T]{data: out}
}

// Min returns the lane-wise minimum of a and b.
func Min[T Lanes](a, b Vec[T]) Vec[T] {
	n := min(len(a.data), len(b.data))
	out := make([]T, n)
	for i := range n {
		if a.data[i] < b.data[i] {
			out[i] = a.data[i]
		} else {
			out[i] = b.data[i]
		}
	}
	return Vec[T]{data: out}
}

// Max returns the lane-wise maximum of a and b.
func Max[T Lanes](a, b Vec[T]) Vec[T] {
	n := min(len(a.data), len(b.data))
	out := make([]T, n)
	for i := range n {
		if a.data[i] > b.data[i] {
			out[i] = a.data[i]
		} else {
			out[i] = b.data[i]
		}
	}
	return Vec[T]{data: out}
}

// ShiftRight returns v with every lane shifted right by bits: arithmetic for
// signed lane types, logical for unsigned.
func ShiftRight[T Integers](v Vec[T], bits int) Vec[T] {
	out := make([]T, len(v.data))
	for i, lane := range v.data {
		out[i] = lane >> bits
	}
	return Vec[T]{data: out}
}

// LessThan returns a mask with bit i set where a's lane i is less than b's.
func LessThan[T Lanes](a, b Vec[T]) Mask[T] {
	n := min(len(a.data), len(b.data))
	bits := make([]bool, n)
	for i := range n {
		bits[i] = a.data[i] < b.data[i]
	}
	return Mask[T]{bits: bits}
}

// GreaterThan returns a mask with bit i set where a's lane i is greater
// than b's.
func GreaterThan[T Lanes](a, b Vec[T]) Mask[T] {
	n := min(len(a.data), len(b.data))
	bits := make([]bool, n)
	for i := range n {
		bits[i] = a.data[i] > b.data[i]
	}
	return Mask[T]{bits: bits}
}

// MaskOr returns the lane-wise logical OR of a and b.
func MaskOr[T Lanes](a, b Mask[T]) Mask[T] {
	n := min(len(a.bits), len(b.bits))
	bits := make([]bool, n)
	for i := range n {
		bits[i] = a.bits[i] || b.bits[i]
	}
	return Mask[T]{bits: bits}
}

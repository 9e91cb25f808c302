package kernel

import (
	"testing"

	"github.com/outpost-sim/asteroids/asteroid"
	"github.com/outpost-sim/asteroids/collisionmap"
	"github.com/outpost-sim/asteroids/fixedpoint"
	"github.com/outpost-sim/asteroids/hwy/contrib/workerpool"
)

func newSingleLaneStore(px, py, vx, vy float64) *asteroid.Store {
	s := asteroid.New()
	s.Resize(1)
	s.RawPositionX()[0] = fixedpoint.PosFromReal(px)
	s.RawPositionY()[0] = fixedpoint.PosFromReal(py)
	s.RawVelocityX()[0] = fixedpoint.VelFromReal(vx)
	s.RawVelocityY()[0] = fixedpoint.VelFromReal(vy)
	return s
}

func TestScalarIntegratesWithoutCollisionOrEscape(t *testing.T) {
	s := newSingleLaneStore(0, 0, 1.0, 0.5)
	m := collisionmap.NewBare()

	UpdateScalar(s, m, 0.0)

	if s.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", s.Size())
	}
	if got := s.PositionX()[0].Raw(); got != 2048 {
		t.Errorf("pos_x.raw = %d, want 2048", got)
	}
	if got := s.PositionY()[0].Raw(); got != 1024 {
		t.Errorf("pos_y.raw = %d, want 1024", got)
	}
}

func TestVectorMatchesScalarOnSameScenario(t *testing.T) {
	s1 := newSingleLaneStore(0, 0, 1.0, 0.5)
	s2 := newSingleLaneStore(0, 0, 1.0, 0.5)
	m1 := collisionmap.NewBare()
	m2 := collisionmap.NewBare()

	UpdateScalar(s1, m1, 0.0)
	UpdateVector(s2, m2, 0.0)

	if s1.Size() != s2.Size() {
		t.Fatalf("size mismatch: scalar=%d vector=%d", s1.Size(), s2.Size())
	}
	for i := 0; i < s1.Size(); i++ {
		if s1.State()[i] != s2.State()[i] {
			t.Errorf("lane %d: state mismatch %d vs %d", i, s1.State()[i], s2.State()[i])
		}
		if s1.PositionX()[i].Raw() != s2.PositionX()[i].Raw() {
			t.Errorf("lane %d: pos_x mismatch %d vs %d", i, s1.PositionX()[i].Raw(), s2.PositionX()[i].Raw())
		}
		if s1.PositionY()[i].Raw() != s2.PositionY()[i].Raw() {
			t.Errorf("lane %d: pos_y mismatch %d vs %d", i, s1.PositionY()[i].Raw(), s2.PositionY()[i].Raw())
		}
	}
}

func TestAsteroidEnteringHubTileIsRemoved(t *testing.T) {
	s := newSingleLaneStore(4.0, 4.0, 0, 0)
	m := collisionmap.New()

	UpdateScalar(s, m, 0.0)

	if s.Size() != 0 {
		t.Fatalf("Size() = %d, want 0 for a stationary asteroid sitting on a hub tile", s.Size())
	}
}

func TestEscapeCullingDirectionality(t *testing.T) {
	// NewBare carries no solid tiles anywhere, isolating the escape/inward-
	// motion test from tile collision entirely.
	probe := collisionmap.NewBare()
	pb := probe.PlatformBound()
	minX := int64(pb.Left-border) << frac
	minY := int64(pb.Bottom-border) << frac
	maxY := int64(pb.Top+border) << frac
	midY := (minY + maxY) / 2

	approachPX := float64(minX-1) / (1 << frac)
	midPYReal := float64(midY) / (1 << frac)

	sApproach := newSingleLaneStore(approachPX, midPYReal, 2.0, 0)
	UpdateScalar(sApproach, collisionmap.NewBare(), 0.0)
	if sApproach.Size() != 1 {
		t.Errorf("asteroid moving back into bounds should survive, size=%d", sApproach.Size())
	}

	sLeaving := newSingleLaneStore(approachPX, midPYReal, -2.0, 0)
	UpdateScalar(sLeaving, collisionmap.NewBare(), 0.0)
	if sLeaving.Size() != 0 {
		t.Errorf("asteroid moving further out of bounds should be removed, size=%d", sLeaving.Size())
	}
}

func TestPaddingPreservedAfterUpdateWithNoCollisions(t *testing.T) {
	s := asteroid.New()
	s.Resize(3)
	for i := 0; i < 3; i++ {
		s.RawPositionX()[i] = fixedpoint.PosFromReal(10.0 + float64(i))
		s.RawPositionY()[i] = fixedpoint.PosFromReal(10.0)
	}
	m := collisionmap.NewBare()

	UpdateScalar(s, m, 0.0)

	if s.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", s.Size())
	}
	for i := s.Size(); i < s.Capacity(); i++ {
		if s.RawState()[i]&asteroid.RemoveBit == 0 {
			t.Errorf("padding lane %d missing RemoveBit after update", i)
		}
		if s.RawPositionX()[i].Raw() != 0 || s.RawPositionY()[i].Raw() != 0 {
			t.Errorf("padding lane %d has nonzero position after update", i)
		}
	}
}

func TestMod32NonNegativeForAllInputs(t *testing.T) {
	cases := []int32{-100, -33, -32, -1, 0, 1, 31, 32, 100}
	for _, v := range cases {
		if got := mod32(v); got > 31 {
			t.Errorf("mod32(%d) = %d, want in [0,31]", v, got)
		}
	}
}

func TestShardedMatchesScalarOnSameScenario(t *testing.T) {
	s := asteroid.New()
	s.Resize(32)
	for i := 0; i < 32; i++ {
		s.RawPositionX()[i] = fixedpoint.PosFromReal(float64(1000 + i))
		s.RawPositionY()[i] = fixedpoint.PosFromReal(1000.0)
		s.RawVelocityX()[i] = fixedpoint.VelFromReal(0.5)
		s.RawState()[i] = uint32(i) << 16
	}
	// A handful of lanes sit on hub tiles and should be culled identically
	// by every kernel variant.
	s.RawPositionX()[3] = fixedpoint.PosFromReal(4.0)
	s.RawPositionY()[3] = fixedpoint.PosFromReal(4.0)
	s.RawPositionX()[17] = fixedpoint.PosFromReal(4.0)
	s.RawPositionY()[17] = fixedpoint.PosFromReal(4.0)

	sScalar := asteroid.New()
	sScalar.Resize(32)
	copy(sScalar.RawState(), s.RawState())
	copy(sScalar.RawPositionX(), s.RawPositionX())
	copy(sScalar.RawPositionY(), s.RawPositionY())
	copy(sScalar.RawVelocityX(), s.RawVelocityX())
	copy(sScalar.RawVelocityY(), s.RawVelocityY())

	m1 := collisionmap.New()
	m2 := collisionmap.New()

	pool := workerpool.New(4)
	defer pool.Close()

	UpdateScalar(sScalar, m1, 0.0)
	UpdateSharded(s, m2, 0.0, pool)

	if s.Size() != sScalar.Size() {
		t.Fatalf("size mismatch: sharded=%d scalar=%d", s.Size(), sScalar.Size())
	}
	for i := 0; i < s.Size(); i++ {
		if s.State()[i] != sScalar.State()[i] {
			t.Errorf("lane %d: state mismatch %d vs %d", i, s.State()[i], sScalar.State()[i])
		}
		if s.PositionX()[i].Raw() != sScalar.PositionX()[i].Raw() {
			t.Errorf("lane %d: pos_x mismatch", i)
		}
	}
}

func TestCompactionPreservesOrderOfSurvivors(t *testing.T) {
	s := asteroid.New()
	s.Resize(4)
	// Lanes 1 and 3 sit on a hub tile and will be removed; 0 and 2 survive
	// inside the escape box, clear of any solid geometry.
	s.RawPositionX()[0] = fixedpoint.PosFromReal(20.0)
	s.RawPositionY()[0] = fixedpoint.PosFromReal(20.0)
	s.RawState()[0] = 0xAAAA0000

	s.RawPositionX()[1] = fixedpoint.PosFromReal(4.0)
	s.RawPositionY()[1] = fixedpoint.PosFromReal(4.0)
	s.RawState()[1] = 0xBBBB0000

	s.RawPositionX()[2] = fixedpoint.PosFromReal(30.0)
	s.RawPositionY()[2] = fixedpoint.PosFromReal(30.0)
	s.RawState()[2] = 0xCCCC0000

	s.RawPositionX()[3] = fixedpoint.PosFromReal(4.0)
	s.RawPositionY()[3] = fixedpoint.PosFromReal(4.0)
	s.RawState()[3] = 0xDDDD0000

	m := collisionmap.New()
	UpdateScalar(s, m, 0.0)

	if s.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", s.Size())
	}
	if s.State()[0]>>16 != 0xAAAA || s.State()[1]>>16 != 0xCCCC {
		t.Errorf("surviving lanes out of order: %x, %x", s.State()[0], s.State()[1])
	}
}

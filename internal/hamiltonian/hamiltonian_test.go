package hamiltonian

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/vmc/internal/system"
	"github.com/san-kum/vmc/internal/vmc"
	"github.com/san-kum/vmc/internal/wavefunction"
)

func particleAt(t *testing.T, c ...float64) vmc.Particle {
	t.Helper()
	v, err := vmc.NewVector(c...)
	if err != nil {
		t.Fatal(err)
	}
	return vmc.NewParticle(v)
}

func newSystem(t *testing.T, cfg system.Config, alpha, beta float64, jastrow bool, seed int64) *system.System {
	t.Helper()
	wf, err := wavefunction.New(alpha, beta, 1, jastrow)
	if err != nil {
		t.Fatal(err)
	}
	s, err := system.New(cfg, wf, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRepulsive(t *testing.T) {
	a := particleAt(t, 0, 0, 0)
	b := particleAt(t, 2, 0, 0)

	r, err := a.DistanceTo(b)
	if err != nil {
		t.Fatal(err)
	}
	if r != 2 {
		t.Errorf("distance = %v, want 2", r)
	}

	got, err := Repulsive([]vmc.Particle{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if got != 0.5 {
		t.Errorf("Repulsive = %v, want 0.5", got)
	}
}

func TestRepulsive_SumsPairs(t *testing.T) {
	ps := []vmc.Particle{particleAt(t, 0, 0), particleAt(t, 1, 0), particleAt(t, 0, 2)}
	got, err := Repulsive(ps)
	if err != nil {
		t.Fatal(err)
	}
	want := 1 + 0.5 + 1/math.Sqrt(5)
	if math.Abs(got-want) > 1e-15 {
		t.Errorf("Repulsive = %v, want %v", got, want)
	}
}

func TestRepulsive_Errors(t *testing.T) {
	if _, err := Repulsive([]vmc.Particle{particleAt(t, 1, 1), particleAt(t, 1, 1)}); !errors.Is(err, vmc.ErrDegenerateDistance) {
		t.Errorf("expected ErrDegenerateDistance, got %v", err)
	}
	if _, err := Repulsive([]vmc.Particle{particleAt(t, 1, 1), particleAt(t, 1, 1, 0)}); !errors.Is(err, vmc.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestTrap(t *testing.T) {
	ps := []vmc.Particle{particleAt(t, 2.5, 1.001, 68.2)}
	if got := Elliptical(0.3).Trap(ps, 1); math.Abs(got-0.5*1402.624001) > 1e-9 {
		t.Errorf("elliptical trap = %v, want %v", got, 0.5*1402.624001)
	}
	if got, want := Spherical().Trap(ps, 2), 2*ps[0].SquaredSum(); math.Abs(got-want) > 1e-9 {
		t.Errorf("spherical trap = %v, want %v", got, want)
	}
}

func TestEnergy_ExactGroundState(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		cfg := system.DefaultConfig()
		cfg.Dim = dim
		s := newSystem(t, cfg, 1, 0, false, int64(dim))

		total, kinetic, err := Spherical().Energy(s)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(total-float64(dim)) > 1e-12 {
			t.Errorf("%dD: local energy = %v, want %d", dim, total, dim)
		}
		if want := float64(dim) - Spherical().Trap(s.Particles(), 1); math.Abs(kinetic-want) > 1e-12 {
			t.Errorf("%dD: kinetic = %v, want %v", dim, kinetic, want)
		}
	}
}

func TestEnergy_ClosedFormMatchesGeneralPath(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		for _, jastrow := range []bool{false, true} {
			cfg := system.DefaultConfig()
			cfg.Dim = dim
			cfg.Interacting = true
			cfg.Spread = 2
			closed := newSystem(t, cfg, 0.9, 0.35, jastrow, 99)

			cfg.NumericalLaplace = true
			numerical := newSystem(t, cfg, 0.9, 0.35, jastrow, 99)

			e1, k1, err := Spherical().Energy(closed)
			if err != nil {
				t.Fatal(err)
			}
			e2, k2, err := Spherical().Energy(numerical)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(k1-k2) > 1e-5*math.Max(1, math.Abs(k1)) {
				t.Errorf("%dD jastrow=%v: kinetic closed %v, numerical %v", dim, jastrow, k1, k2)
			}
			if math.Abs(e1-e2) > 1e-5*math.Max(1, math.Abs(e1)) {
				t.Errorf("%dD jastrow=%v: energy closed %v, numerical %v", dim, jastrow, e1, e2)
			}

			lap, err := closed.Laplace()
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(k1+0.5*lap) > 1e-10*math.Max(1, math.Abs(k1)) {
				t.Errorf("%dD jastrow=%v: closed form %v, analytic laplacian gives %v", dim, jastrow, k1, -0.5*lap)
			}
		}
	}
}

func TestEnergy_ManyParticles(t *testing.T) {
	cfg := system.DefaultConfig()
	cfg.Particles = 6
	cfg.Spread = 2
	s := newSystem(t, cfg, 1, 0, false, 4)

	total, _, err := Spherical().Energy(s)
	if err != nil {
		t.Fatal(err)
	}
	// closed shells at α=1 are exact eigenstates: E = Σ(nx+ny+1)
	if math.Abs(total-10) > 1e-9 {
		t.Errorf("six-particle local energy = %v, want 10", total)
	}
}

func TestEnergy_DegenerateDistance(t *testing.T) {
	cfg := system.DefaultConfig()
	cfg.Interacting = true
	s := newSystem(t, cfg, 1, 0.5, true, 1)

	m, err := s.Propose(1, s.Particles()[0].Position)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Commit(m); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Spherical().Energy(s); !errors.Is(err, vmc.ErrDegenerateDistance) {
		t.Errorf("expected ErrDegenerateDistance, got %v", err)
	}
}

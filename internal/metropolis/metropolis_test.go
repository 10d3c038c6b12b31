package metropolis_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/vmc/internal/hamiltonian"
	"github.com/san-kum/vmc/internal/metropolis"
	"github.com/san-kum/vmc/internal/system"
	"github.com/san-kum/vmc/internal/vmc"
	"github.com/san-kum/vmc/internal/wavefunction"
)

// fixedRand returns the same draws forever.
type fixedRand struct {
	u, normal float64
	index     int
}

func (f fixedRand) Float64() float64     { return f.u }
func (f fixedRand) NormFloat64() float64 { return f.normal }
func (f fixedRand) Intn(int) int         { return f.index }

func newSystem(n, dim int, interacting, jastrow bool, rng vmc.Rand) *system.System {
	wf, err := wavefunction.New(1, 0.4, 1, jastrow)
	Expect(err).NotTo(HaveOccurred())
	cfg := system.DefaultConfig()
	cfg.Particles = n
	cfg.Dim = dim
	cfg.Interacting = interacting
	cfg.Spread = 2
	sys, err := system.New(cfg, wf, rng)
	Expect(err).NotTo(HaveOccurred())
	return sys
}

func vec(c ...float64) vmc.Vector {
	v, err := vmc.NewVector(c...)
	Expect(err).NotTo(HaveOccurred())
	return v
}

var _ = Describe("HastingsCheck", func() {
	rng := rand.New(rand.NewSource(1))

	It("always accepts ratios of at least one", func() {
		for i := 0; i < 100; i++ {
			Expect(metropolis.HastingsCheck(1.0, rng)).To(BeTrue())
			Expect(metropolis.HastingsCheck(2.0, rng)).To(BeTrue())
		}
	})

	It("never accepts a zero ratio", func() {
		for i := 0; i < 1000; i++ {
			Expect(metropolis.HastingsCheck(0, rng)).To(BeFalse())
		}
		Expect(metropolis.HastingsCheck(0, fixedRand{u: 0})).To(BeFalse())
	})

	It("accepts a fractional ratio with that probability", func() {
		accepted := 0
		const n = 20000
		for i := 0; i < n; i++ {
			if metropolis.HastingsCheck(0.3, rng) {
				accepted++
			}
		}
		Expect(float64(accepted) / n).To(BeNumerically("~", 0.3, 0.02))
	})
})

var _ = Describe("Greens", func() {
	zero := vec(0, 0)

	It("is one without drift", func() {
		g, err := metropolis.Greens(vec(0.1, 0.2), vec(0.3, -0.1), zero, zero)
		Expect(err).NotTo(HaveOccurred())
		Expect(g).To(BeNumerically("~", 1, 1e-15))
	})

	It("inverts when the move is reversed", func() {
		x, y := vec(0.1, 0.2), vec(0.15, 0.18)
		fx, fy := vec(-0.4, 1.2), vec(0.7, -0.3)
		forward, err := metropolis.Greens(x, y, fx, fy)
		Expect(err).NotTo(HaveOccurred())
		backward, err := metropolis.Greens(y, x, fy, fx)
		Expect(err).NotTo(HaveOccurred())
		Expect(forward * backward).To(BeNumerically("~", 1, 1e-12))
	})

	It("matches the explicit transition densities", func() {
		x, y := vec(0.5), vec(0.52)
		fx, fy := vec(-1.0), vec(-1.04)
		dt, d := metropolis.TimeStep, metropolis.Diffusion
		density := func(from, to, f float64) float64 {
			m := to - from - d*dt*f
			return math.Exp(-m*m/(4*d*dt)) / math.Sqrt(4*math.Pi*d*dt)
		}
		want := density(0.52, 0.5, -1.04) / density(0.5, 0.52, -1.0)
		got, err := metropolis.Greens(x, y, fx, fy)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeNumerically("~", want, 1e-12))
	})

	It("rejects mixed dimensions", func() {
		_, err := metropolis.Greens(vec(0, 0), vec(0, 0, 0), zero, zero)
		Expect(err).To(MatchError(vmc.ErrDimensionMismatch))
	})
})

var _ = Describe("BruteForce", func() {
	ham := hamiltonian.Spherical()

	It("accepts a null move and measures the new state", func() {
		sys := newSystem(2, 2, false, true, rand.New(rand.NewSource(3)))
		s := metropolis.NewBruteForce(0, ham, rand.New(rand.NewSource(4)))

		sample, err := s.Step(sys)
		Expect(err).NotTo(HaveOccurred())
		Expect(sample).NotTo(BeNil())
		Expect(s.State()).To(Equal(metropolis.Accepted))
		Expect(s.Stats()).To(Equal(metropolis.Stats{Proposed: 1, Accepted: 1}))

		want, err := metropolis.Sample(sys, ham)
		Expect(err).NotTo(HaveOccurred())
		Expect(*sample).To(Equal(want))
	})

	It("rejects a hopeless move and leaves the system alone", func() {
		sys := newSystem(2, 2, false, false, rand.New(rand.NewSource(3)))
		before := vmc.CloneParticles(sys.Particles())
		s := metropolis.NewBruteForce(100, ham, fixedRand{u: 0.99})

		sample, err := s.Step(sys)
		Expect(err).NotTo(HaveOccurred())
		Expect(sample).To(BeNil())
		Expect(s.State()).To(Equal(metropolis.Rejected))
		Expect(s.Stats().Accepted).To(Equal(0))
		Expect(sys.Particles()).To(Equal(before))
	})

	It("keeps the Slater inverse exact over many steps", func() {
		rng := rand.New(rand.NewSource(8))
		sys := newSystem(6, 2, true, true, rng)
		s := metropolis.NewBruteForce(0.5, ham, rng)

		for s.Stats().Accepted < 200 {
			_, err := s.Step(sys)
			Expect(err).NotTo(HaveOccurred())
		}
		var inv mat.Dense
		Expect(inv.Inverse(sys.SlaterMatrix())).To(Succeed())
		Expect(mat.EqualApprox(&inv, sys.SlaterInverse(), 1e-8)).To(BeTrue())
	})

	It("propagates a degenerate configuration as a particle error", func() {
		// every coordinate lands on (0.5-0.5)*spread
		sys := newSystem(2, 2, true, false, fixedRand{u: 0.5})
		s := metropolis.NewBruteForce(0, ham, fixedRand{u: 0.5, index: 1})

		_, err := s.Step(sys)
		Expect(err).To(MatchError(vmc.ErrDegenerateDistance))
		var se *vmc.StepError
		Expect(err).To(BeAssignableToTypeOf(se))
		Expect(err.(*vmc.StepError).Particle).To(Equal(1))
	})
})

var _ = Describe("Importance", func() {
	ham := hamiltonian.Spherical()

	It("accepts nearly every small Langevin step", func() {
		rng := rand.New(rand.NewSource(12))
		sys := newSystem(2, 3, true, true, rng)
		s := metropolis.NewImportance(123, ham, rng)

		for i := 0; i < 2000; i++ {
			_, err := s.Step(sys)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(s.Stats().Proposed).To(Equal(2000))
		Expect(s.Stats().AcceptanceRate()).To(BeNumerically(">", 0.95))
	})

	It("drifts along the quantum force", func() {
		sys := newSystem(2, 2, false, false, rand.New(rand.NewSource(2)))
		old := sys.Particles()[0].Position
		force, err := sys.QuantumForce(0)
		Expect(err).NotTo(HaveOccurred())

		s := metropolis.NewImportance(0, ham, fixedRand{u: 0, normal: 0, index: 0})
		_, err = s.Step(sys)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.State()).To(Equal(metropolis.Accepted))

		moved := sys.Particles()[0].Position
		for d := 0; d < 2; d++ {
			want := old.At(d) + metropolis.Diffusion*force.At(d)*metropolis.TimeStep
			Expect(moved.At(d)).To(BeNumerically("~", want, 1e-15))
		}
		next, err := sys.QuantumForce(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(next.Dim()).To(Equal(2))
	})

	It("keeps the Slater inverse exact for twelve particles", func() {
		rng := rand.New(rand.NewSource(21))
		sys := newSystem(12, 2, true, true, rng)
		s := metropolis.NewImportance(0, ham, rng)

		for i := 0; i < 1000; i++ {
			_, err := s.Step(sys)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(s.Stats().Accepted).To(BeNumerically(">", 100))
		var inv mat.Dense
		Expect(inv.Inverse(sys.SlaterMatrix())).To(Succeed())
		Expect(mat.EqualApprox(&inv, sys.SlaterInverse(), 1e-8)).To(BeTrue())
	})
})

var _ = Describe("State", func() {
	It("names every state", func() {
		Expect(metropolis.Proposed.String()).To(Equal("proposed"))
		Expect(metropolis.Accepted.String()).To(Equal("accepted"))
		Expect(metropolis.Rejected.String()).To(Equal("rejected"))
	})
})

package montecarlo_test

import (
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/vmc/internal/hamiltonian"
	"github.com/san-kum/vmc/internal/metropolis"
	"github.com/san-kum/vmc/internal/montecarlo"
	"github.com/san-kum/vmc/internal/system"
	"github.com/san-kum/vmc/internal/vmc"
	"github.com/san-kum/vmc/internal/wavefunction"
)

// scriptedSampler returns energy k on its k-th step (1-based) when
// accept(k) holds, and nil otherwise.
type scriptedSampler struct {
	initial float64
	accept  func(k int) bool
	energy  func(k int) float64
	failAt  int
	calls   int
}

func (s *scriptedSampler) Sample(*system.System) (montecarlo.SampledValues, error) {
	return montecarlo.NewSample(s.initial, 0, 0, 0), nil
}

func (s *scriptedSampler) Step(*system.System) (*montecarlo.SampledValues, error) {
	s.calls++
	if s.calls == s.failAt {
		return nil, &vmc.StepError{Particle: 4, Wrapped: vmc.ErrDegenerateDistance}
	}
	if !s.accept(s.calls) {
		return nil, nil
	}
	e := float64(s.calls)
	if s.energy != nil {
		e = s.energy(s.calls)
	}
	v := montecarlo.NewSample(e, 0, 0, 0)
	return &v, nil
}

func always(int) bool { return true }

type chain struct {
	sys     *system.System
	sampler montecarlo.Sampler
}

func newChain(n, dim int, alpha, beta float64, interacting, jastrow, importance bool, seed int64) chain {
	rng := rand.New(rand.NewSource(seed))
	wf, err := wavefunction.New(alpha, beta, 1, jastrow)
	Expect(err).NotTo(HaveOccurred())
	cfg := system.DefaultConfig()
	cfg.Particles = n
	cfg.Dim = dim
	cfg.Interacting = interacting
	cfg.Spread = 2
	sys, err := system.New(cfg, wf, rng)
	Expect(err).NotTo(HaveOccurred())

	var s montecarlo.Sampler = metropolis.NewBruteForce(1.0, hamiltonian.Spherical(), rng)
	if importance {
		s = metropolis.NewImportance(0, hamiltonian.Spherical(), rng)
	}
	return chain{sys: sys, sampler: s}
}

var _ = Describe("Integrator", func() {
	Context("with a scripted sampler", func() {
		It("discards burn-in statistics", func() {
			s := &scriptedSampler{
				accept: always,
				energy: func(k int) float64 {
					if k <= 25 {
						return 1000
					}
					return 1
				},
			}
			got, err := montecarlo.MonteCarlo(100, nil, s)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.calls).To(Equal(125))
			Expect(got.Energy).To(Equal(1.0))
			Expect(got.Accepted).To(Equal(100))
			Expect(got.Steps).To(Equal(100))
		})

		It("repeats the last accepted sample on rejection", func() {
			s := &scriptedSampler{accept: func(k int) bool { return k%2 == 1 }}
			got, err := montecarlo.MonteCarlo(4, nil, s)
			Expect(err).NotTo(HaveOccurred())
			// burn-in step 1 accepted; production 2..5 add 1, 3, 3, 5
			Expect(got.Energy).To(Equal(3.0))
			Expect(got.EnergySquared).To(Equal((1.0 + 9 + 9 + 25) / 4))
			Expect(got.Accepted).To(Equal(2))
			Expect(got.AcceptanceRate()).To(Equal(0.5))
		})

		It("falls back to the initial state when nothing is accepted", func() {
			s := &scriptedSampler{initial: 7, accept: func(int) bool { return false }}
			got, err := montecarlo.MonteCarlo(40, nil, s)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Energy).To(Equal(7.0))
			Expect(got.Variance()).To(Equal(0.0))
			Expect(got.Accepted).To(BeZero())
		})

		It("notifies observers once per production step", func() {
			s := &scriptedSampler{accept: func(k int) bool { return k%3 == 0 }}
			steps, accepted := 0, 0
			in := montecarlo.New(s)
			in.AddObserver(montecarlo.ObserverFunc(func(step int, _ *system.System, _ montecarlo.SampledValues, ok bool) {
				Expect(step).To(Equal(steps))
				steps++
				if ok {
					accepted++
				}
			}))
			got, err := in.Run(30, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(steps).To(Equal(30))
			Expect(accepted).To(Equal(got.Accepted))
		})

		It("reports where a chain failed", func() {
			s := &scriptedSampler{accept: always, failAt: 12}
			_, err := montecarlo.MonteCarlo(20, nil, s)
			Expect(err).To(MatchError(vmc.ErrDegenerateDistance))

			var se *vmc.StepError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Phase).To(Equal("production"))
			Expect(se.Step).To(Equal(6))
			Expect(se.Particle).To(Equal(4))
		})

		It("rejects an empty run", func() {
			_, err := montecarlo.MonteCarlo(0, nil, &scriptedSampler{accept: always})
			Expect(err).To(MatchError(vmc.ErrInvalidParameter))
		})
	})

	Context("with real samplers", func() {
		It("is deterministic for a fixed seed", func() {
			for _, importance := range []bool{false, true} {
				a := newChain(6, 2, 0.9, 0.4, true, true, importance, 17)
				b := newChain(6, 2, 0.9, 0.4, true, true, importance, 17)
				ra, err := montecarlo.MonteCarlo(2000, a.sys, a.sampler)
				Expect(err).NotTo(HaveOccurred())
				rb, err := montecarlo.MonteCarlo(2000, b.sys, b.sampler)
				Expect(err).NotTo(HaveOccurred())
				Expect(ra).To(Equal(rb))
			}
		})

		DescribeTable("reproduces the exact non-interacting energy at α=1",
			func(dim int, importance bool) {
				c := newChain(2, dim, 1, 0, false, false, importance, int64(dim))
				got, err := montecarlo.MonteCarlo(5000, c.sys, c.sampler)
				Expect(err).NotTo(HaveOccurred())
				Expect(got.Energy).To(BeNumerically("~", float64(dim), 1e-10))
				Expect(got.Variance()).To(BeNumerically("<", 1e-10))
				Expect(got.AlphaGradient()).To(BeNumerically("~", 0, 1e-9))
			},
			Entry("1D brute force", 1, false),
			Entry("2D brute force", 2, false),
			Entry("3D importance", 3, true),
		)

		It("converges to the variational energy away from α=1", func() {
			c := newChain(2, 2, 0.9, 0, false, false, false, 5)
			got, err := montecarlo.MonteCarlo(100000, c.sys, c.sampler)
			Expect(err).NotTo(HaveOccurred())
			// d/2·(α + 1/α)
			Expect(got.Energy).To(BeNumerically("~", 0.9+1/0.9, 0.02))
			Expect(got.Variance()).To(BeNumerically(">", 0))
		})

		It("finds the interacting two-electron dot energy", func() {
			c := newChain(2, 2, 0.99, 0.4, true, true, true, 9)
			got, err := montecarlo.MonteCarlo(100000, c.sys, c.sampler)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Energy).To(BeNumerically("~", 3.0, 0.01))
			Expect(got.AcceptanceRate()).To(BeNumerically(">", 0.9))
		})

		It("finds the closed-shell six-particle energy at α=1", func() {
			c := newChain(6, 2, 1, 0, false, false, false, 13)
			got, err := montecarlo.MonteCarlo(3000, c.sys, c.sampler)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Energy).To(BeNumerically("~", 10, 1e-6))
		})
	})
})

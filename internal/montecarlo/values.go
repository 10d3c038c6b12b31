package montecarlo

// SampledValues holds the observables of one configuration, or their
// running sums and means during integration.
type SampledValues struct {
	Energy                  float64
	EnergySquared           float64
	Kinetic                 float64
	WfDerivAlpha            float64
	WfDerivAlphaTimesEnergy float64
	WfDerivBeta             float64
	WfDerivBetaTimesEnergy  float64

	// Accepted counts accepted production steps; Steps is the divisor of
	// the means. Both are set by the integrator.
	Accepted int
	Steps    int
}

// NewSample builds the observables of a single configuration from its local
// energy and the log-derivatives of the wavefunction.
func NewSample(energy, kinetic, derivAlpha, derivBeta float64) SampledValues {
	return SampledValues{
		Energy:                  energy,
		EnergySquared:           energy * energy,
		Kinetic:                 kinetic,
		WfDerivAlpha:            derivAlpha,
		WfDerivAlphaTimesEnergy: derivAlpha * energy,
		WfDerivBeta:             derivBeta,
		WfDerivBetaTimesEnergy:  derivBeta * energy,
	}
}

// Add accumulates the observables of o. Counters are left alone.
func (s *SampledValues) Add(o SampledValues) {
	s.Energy += o.Energy
	s.EnergySquared += o.EnergySquared
	s.Kinetic += o.Kinetic
	s.WfDerivAlpha += o.WfDerivAlpha
	s.WfDerivAlphaTimesEnergy += o.WfDerivAlphaTimesEnergy
	s.WfDerivBeta += o.WfDerivBeta
	s.WfDerivBetaTimesEnergy += o.WfDerivBetaTimesEnergy
}

// Divide turns sums over n steps into means.
func (s *SampledValues) Divide(n int) {
	f := float64(n)
	s.Energy /= f
	s.EnergySquared /= f
	s.Kinetic /= f
	s.WfDerivAlpha /= f
	s.WfDerivAlphaTimesEnergy /= f
	s.WfDerivBeta /= f
	s.WfDerivBetaTimesEnergy /= f
	s.Steps = n
}

// Variance is <E²> − <E>². Only meaningful after Divide.
func (s SampledValues) Variance() float64 {
	return s.EnergySquared - s.Energy*s.Energy
}

// AlphaGradient is dE/dα = 2(<E·∂lnΨ/∂α> − <E><∂lnΨ/∂α>).
func (s SampledValues) AlphaGradient() float64 {
	return 2 * (s.WfDerivAlphaTimesEnergy - s.WfDerivAlpha*s.Energy)
}

// BetaGradient is dE/dβ, see AlphaGradient.
func (s SampledValues) BetaGradient() float64 {
	return 2 * (s.WfDerivBetaTimesEnergy - s.WfDerivBeta*s.Energy)
}

func (s SampledValues) AcceptanceRate() float64 {
	if s.Steps == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Steps)
}

// Map exposes the observables by name.
func (s SampledValues) Map() map[string]float64 {
	return map[string]float64{
		"energy":                      s.Energy,
		"energy_squared":              s.EnergySquared,
		"kinetic":                     s.Kinetic,
		"wf_deriv_alpha":              s.WfDerivAlpha,
		"wf_deriv_alpha_times_energy": s.WfDerivAlphaTimesEnergy,
		"wf_deriv_beta":               s.WfDerivBeta,
		"wf_deriv_beta_times_energy":  s.WfDerivBetaTimesEnergy,
		"accepted":                    float64(s.Accepted),
	}
}

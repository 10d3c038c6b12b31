// Package analysis provides statistics for correlated Monte Carlo series.
//
// The samples of one Markov chain are correlated, so the naive standard
// error of their mean is too small. Two estimates correct for this:
//
//   - [Blocking]: repeated pairwise averaging until the error plateaus
//   - [AutocorrelationTime]: integrated autocorrelation time from the
//     FFT of the series, with a self-consistent summation window
//
// [EnergyTrace] and [OneBodyDensity] are montecarlo observers that collect
// the raw material during a run:
//
//	trace := analysis.NewEnergyTrace(steps)
//	in := montecarlo.New(sampler)
//	in.AddObserver(trace)
//	in.Run(steps, sys)
//	res, err := analysis.Blocking(trace.Values())
package analysis

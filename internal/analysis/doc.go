// Package analysis post-processes solver output.
//
//   - [PowerSpectrum] and [DominantFrequency]: spectral content of a sampled
//     trace, for example the Rabi frequency of a population
//   - [BlochTrajectory]: Bloch vectors of a two-level subspace
//   - [ProjectionToASCII]: terminal plot of a trajectory projected on a plane
package analysis

package gpi

import "math"

// tracker detects changes of the external dependencies. Each detected change
// bumps a generation counter; caches and consumers remember the generation
// they last saw, so invalidation never needs to walk anything.
type tracker struct {
	meanVersion uint64  // Last seen version of the mean function.
	covVersion  uint64  // Last seen version of the covariance function.
	sigmaVal    float64 // Snapshot of the noise scale used in Omega.

	meanGen  uint64 // Bumped when m changes.
	wGen     uint64 // Bumped when W changes.
	omegaGen uint64 // Bumped when Omega changes (W or sigma).
}

func newTracker(meanVersion, covVersion uint64, sigmaVal float64) tracker {
	return tracker{
		meanVersion: meanVersion,
		covVersion:  covVersion,
		sigmaVal:    sigmaVal,
		meanGen:     1,
		wGen:        1,
		omegaGen:    1,
	}
}

// stamps records the generations the engine's own caches were computed at.
// Zero means never computed.
type stamps struct {
	m      uint64
	w      uint64
	dW     uint64
	omega  uint64
	chol   uint64
	omi    uint64
	omiImM uint64 // Mean generation of OmiIm.
	omiImO uint64 // Omega generation of OmiIm.
}

// Watermark is a consumer's own view of the change state. Consumers other
// than the engine hold one each, so reading their change flags never clears
// anyone else's.
type Watermark struct {
	mean  uint64
	omega uint64
}

// Stats counts recomputations of the cached quantities.
type Stats struct {
	MeanVectors    int // Evaluations of m.
	Covariances    int // Assemblies of W.
	Omegas         int // Assemblies of Omega.
	Factorizations int // Factorizations of Omega.
	Inversions     int // Computations of Omega⁻¹.
	Weights        int // Computations of Omega⁻¹ (I - m).
}

func (g *Interpolation) refreshMean() bool {
	v := g.meanFn.Version()
	if v == g.meanVersion {
		return false
	}
	g.meanVersion = v
	g.meanGen++
	g.logger.Debug("prior mean changed", "version", v)
	return true
}

func (g *Interpolation) refreshCovariance() bool {
	changed := false
	v := g.covFn.Version()
	if v != g.covVersion {
		g.covVersion = v
		g.wGen++
		g.omegaGen++
		changed = true
		g.logger.Debug("prior covariance changed", "version", v)
	}
	s := g.sigma.Value()
	if s != g.sigmaVal && !(math.IsNaN(s) && math.IsNaN(g.sigmaVal)) {
		g.sigmaVal = s
		if !changed {
			g.omegaGen++
		}
		changed = true
		g.logger.Debug("noise scale changed", "sigma", s)
	}
	return changed
}

// ForceMeanUpdate invalidates everything depending on the prior mean. Use it
// when the mean function changed without bumping its version.
func (g *Interpolation) ForceMeanUpdate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.meanVersion = g.meanFn.Version()
	g.meanGen++
}

// ForceCovarianceUpdate invalidates everything depending on the prior
// covariance and the noise scale.
func (g *Interpolation) ForceCovarianceUpdate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.covVersion = g.covFn.Version()
	g.sigmaVal = g.sigma.Value()
	g.wGen++
	g.omegaGen++
}

func (g *Interpolation) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stats
}

func (g *Interpolation) meanChangedFor(w *Watermark) bool {
	g.refreshMean()
	changed := w.mean != g.meanGen
	w.mean = g.meanGen
	return changed
}

func (g *Interpolation) omegaChangedFor(w *Watermark) bool {
	g.refreshCovariance()
	changed := w.omega != g.omegaGen
	w.omega = g.omegaGen
	return changed
}

// Package entropy provides the seeded randomness used by the simulation:
// a deterministic per-run source, per-company personality draws and the
// slow macro demand index.
package entropy

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Source wraps a seeded RNG. One Source drives a whole run so that a seed
// replays identically.
type Source struct {
	rng *rand.Rand
}

// NewSource creates a deterministic source from a run seed.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Float returns a uniform draw in [0, 1).
func (s *Source) Float() float64 { return s.rng.Float64() }

// Uniform returns a uniform draw in [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// Gauss returns a normal draw with the given mean and standard deviation.
func (s *Source) Gauss(mean, stddev float64) float64 {
	return mean + s.rng.NormFloat64()*stddev
}

// Intn returns a uniform draw in [0, n). n must be positive.
func (s *Source) Intn(n int) int { return s.rng.Intn(n) }

// Chance returns true with probability p.
func (s *Source) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.rng.Float64() < p
}

// PRound rounds v to an integer probabilistically so that the expectation
// equals v. Fractional inventory never exists, but totals stay unbiased.
func (s *Source) PRound(v float64) int {
	if v <= 0 {
		return 0
	}
	base := math.Floor(v)
	n := int(base)
	if s.rng.Float64() < v-base {
		n++
	}
	return n
}

// Shuffle randomizes order in place.
func (s *Source) Shuffle(n int, swap func(i, j int)) { s.rng.Shuffle(n, swap) }

// Personality is a company's fixed decision temperament.
type Personality struct {
	Patience       float64 // 0.5-1.5, scales price adjustment caution
	Aggressiveness float64 // 0.8-1.2, scales growth targets
}

// PersonalityFor derives a stable personality from a company ID. The draw is
// independent of the run source so respawned companies keep distinct temper.
func PersonalityFor(companyID int64) Personality {
	rng := rand.New(rand.NewSource(companyID * 7919))
	return Personality{
		Patience:       0.5 + rng.Float64(),
		Aggressiveness: 0.8 + rng.Float64()*0.4,
	}
}

// MacroIndex is a slow noise walk over weeks that scales consumer demand.
type MacroIndex struct {
	noise opensimplex.Noise
}

// NewMacroIndex builds the demand index for a run seed.
func NewMacroIndex(seed int64) *MacroIndex {
	return &MacroIndex{noise: opensimplex.NewNormalized(seed + 17)}
}

// At returns the demand multiplier for a week, clamped to [0.8, 1.2].
func (m *MacroIndex) At(week int) float64 {
	// One noise octave sampled along a slow time axis.
	v := m.noise.Eval2(float64(week)*0.02, 0.5)
	idx := 0.8 + v*0.4
	if idx < 0.8 {
		idx = 0.8
	}
	if idx > 1.2 {
		idx = 1.2
	}
	return idx
}

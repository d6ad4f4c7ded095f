// Package random holds the two sampling primitives shared by the
// reputation and encounter systems. Both take an explicit source so
// tests can seed their own and get deterministic draws.
package random

import "math/rand"

// Source is the subset of *rand.Rand the engine draws from.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// NewSource returns a seeded pseudo-random source.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// Bernoulli returns true with probability p. Values of p at or below 0
// never succeed; values at or above 1 always succeed.
func Bernoulli(p float64, src Source) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// WeightedPick draws one entry from items proportionally to the weight
// function. A uniform value in [0, totalWeight) is drawn, then weights are
// subtracted in order until the remainder drops to or below zero.
// Returns false when no entry is selectable (empty list or no positive
// weight), which callers treat as a normal "no selection" outcome.
func WeightedPick[T any](items []T, weight func(T) float64, src Source) (T, bool) {
	var zero T
	var total float64
	for _, it := range items {
		w := weight(it)
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return zero, false
	}

	r := src.Float64() * total
	for _, it := range items {
		w := weight(it)
		if w <= 0 {
			continue
		}
		r -= w
		if r <= 0 {
			return it, true
		}
	}

	// Floating point can leave a sliver of remainder; fall back to the
	// last positively weighted entry.
	for i := len(items) - 1; i >= 0; i-- {
		if weight(items[i]) > 0 {
			return items[i], true
		}
	}
	return zero, false
}

// IntBetween returns a uniform integer in [min, max] inclusive.
func IntBetween(min, max int, src Source) int {
	if max <= min {
		return min
	}
	return min + src.Intn(max-min+1)
}

// Package rotation provides the deterministic ordering primitives behind
// time-rotated browse rows. All functions are pure: the same inputs always
// produce the same output, so every server instance (and every retry)
// agrees on the ordering within a rotation window.
package rotation

import (
	"math"
	"sort"
	"time"
)

// hash32 is a rolling 31-multiplier string hash with 32-bit wraparound.
// The empty string hashes to 0.
func hash32(s string) int32 {
	var h int32
	for _, c := range s {
		h = h*31 + int32(c)
	}
	return h
}

// Seed returns the rotation seed for the current time. The seed is stable
// for windowHours at a time and offset by a salt so different sections
// rotate independently.
func Seed(windowHours float64, salt string) int64 {
	return SeedAt(time.Now(), windowHours, salt)
}

// SeedAt is Seed evaluated at an explicit instant.
func SeedAt(now time.Time, windowHours float64, salt string) int64 {
	window := int64(math.Floor(float64(now.UnixMilli()) / (windowHours * 3_600_000)))
	return window + int64(hash32(salt))
}

// rng is a mulberry32 generator. Small state, good enough distribution for
// shuffling, and trivially portable across runtimes.
type rng struct {
	state uint32
}

func newRNG(seed int64) *rng {
	return &rng{state: uint32(seed)}
}

// next returns a float64 in [0, 1).
func (r *rng) next() float64 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296
}

// Shuffle returns a seeded Fisher-Yates permutation of items. The input
// slice is not modified.
func Shuffle[T any](items []T, seed int64) []T {
	out := make([]T, len(items))
	copy(out, items)

	r := newRNG(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := int(math.Floor(r.next() * float64(i+1)))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// StableSort orders items by a per-item score derived from the seed and the
// item's identity string. Unlike Shuffle, an item's position depends only
// on its own identity, so adding or removing items does not reshuffle the
// rest of the list. Score ties keep input order. The input slice is not
// modified.
func StableSort[T any](items []T, seed int64, id func(T) string) []T {
	type scored struct {
		item  T
		score int32
	}

	ranked := make([]scored, len(items))
	for i, item := range items {
		h := int32(seed)
		for _, c := range id(item) {
			h = h*31 + int32(c)
		}
		ranked[i] = scored{item: item, score: h}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score < ranked[b].score
	})

	out := make([]T, len(ranked))
	for i, s := range ranked {
		out[i] = s.item
	}
	return out
}

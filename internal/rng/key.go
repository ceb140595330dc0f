// Package rng threads randomness explicitly through environment and
// generator calls. A Key is a plain value: splitting it never mutates it,
// so the same key always yields the same stream.
package rng

import (
	"golang.org/x/exp/rand"
)

// Key is an immutable random key.
type Key uint64

// NewKey returns the key for an integer seed.
func NewKey(seed int64) Key {
	return Key(mix(uint64(seed) ^ 0x6a09e667f3bcc909))
}

// gamma is the splitmix64 increment.
const gamma uint64 = 0x9e3779b97f4a7c15

// Split derives two independent keys from k.
func (k Key) Split() (Key, Key) {
	x := uint64(k) + gamma
	return Key(mix(x)), Key(mix(x + gamma))
}

// SplitN derives n independent keys from k. The count is mixed in, so
// SplitN(2) and Split give different keys.
func (k Key) SplitN(n int) []Key {
	base := uint64(k) ^ mix(uint64(n))
	keys := make([]Key, n)
	for i := range keys {
		keys[i] = Key(mix(base + uint64(i+1)*gamma))
	}
	return keys
}

// Fold mixes data into k, e.g. an episode index.
func (k Key) Fold(data uint64) Key {
	return Key(mix(uint64(k) ^ mix(data)))
}

// Source returns a fresh random source seeded from k.
func (k Key) Source() rand.Source {
	return rand.NewSource(uint64(k))
}

// Rand returns a fresh generator seeded from k.
func (k Key) Rand() *rand.Rand {
	return rand.New(k.Source())
}

// mix is the splitmix64 finaliser.
func mix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

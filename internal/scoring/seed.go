// Package scoring holds the health-score engine: the weighted-factor
// aggregator, the journey stage resolver and the engagement ranking engine.
// Everything here is pure — no I/O, no clocks other than the ones callers
// pass in, no shared mutable state.
package scoring

import "hash/fnv"

// seededUnit maps a seed string to a stable value in [0, 1).
// Accounts without persisted metrics or journey get them synthesized from
// this value, so the same account always bootstraps the same way across
// sessions. FNV-64a hashes the string; a splitmix64 step whitens the hash
// so nearby ids don't produce nearby units.
func seededUnit(seed string) float64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return float64(splitmix64(h.Sum64())>>11) / float64(1<<53)
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

package random

import (
	"crypto/rand"
	"encoding/binary"
)

// Base36 is the alphabet of lowercase letters and digits
const Base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// Random supplies randomness to code that must stay deterministic under test
type Random interface {
	// Intn returns a value in [0, n); n <= 0 yields 0
	Intn(n int) int

	// String returns length characters drawn uniformly from alphabet
	String(length int, alphabet string) string
}

// CryptoRandom draws from crypto/rand
type CryptoRandom struct{}

// New returns a CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	// Rejection sampling keeps the distribution uniform
	bound := uint64(n)
	limit := ^uint64(0) - (^uint64(0) % bound)
	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0
		}
		v := binary.LittleEndian.Uint64(buf[:])
		if v < limit {
			return int(v % bound)
		}
	}
}

func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || alphabet == "" {
		return ""
	}
	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(out)
}

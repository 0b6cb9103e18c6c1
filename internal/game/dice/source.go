package dice

import (
	"crypto/rand"
	"math/big"
	"sync"
)

type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Intn panics if n <= 0 or if crypto/rand fails.
func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(v.Int64())
}

// SequenceSource replays fixed die faces, cycling when exhausted. It is used
// to reproduce a recorded roll and in tests.
type SequenceSource struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewSequenceSource returns a Source that yields the given 1-based die faces in order.
//
// Precondition: faces must be non-empty.
func NewSequenceSource(faces ...int) *SequenceSource {
	if len(faces) == 0 {
		panic("dice: NewSequenceSource requires at least one face")
	}
	return &SequenceSource{faces: append([]int(nil), faces...)}
}

// Intn returns the next face minus one, clamped into [0, n).
func (s *SequenceSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.faces[s.next%len(s.faces)] - 1
	s.next++
	switch {
	case f < 0:
		return 0
	case f >= n:
		return n - 1
	}
	return f
}

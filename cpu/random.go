package cpu

import (
	"math/rand"
	"time"
)

// RandomSource supplies the uniformly distributed bytes consumed by the
// RND opcode. Injecting it keeps the machine deterministic under test.
type RandomSource interface {
	Byte() byte
}

type timeSeededSource struct {
	rng *rand.Rand
}

func newTimeSeededSource() *timeSeededSource {
	return &timeSeededSource{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *timeSeededSource) Byte() byte {
	return byte(s.rng.Intn(256))
}

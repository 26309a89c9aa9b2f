package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratioSampler lets numerator out of every denominator events through.
// A zero ratio lets everything through.
type ratioSampler struct {
	ratio   atomic.Uint64 // numerator<<32 | denominator
	counter atomic.Uint64
}

func newRatioSampler(numerator, denominator int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(numerator, denominator)
	return s
}

// Set replaces the ratio and restarts the cycle.
func (s *ratioSampler) Set(numerator, denominator int) {
	var packed uint64
	if numerator > 0 && denominator > 0 {
		numerator = min(numerator, denominator)
		packed = uint64(uint32(numerator))<<32 | uint64(uint32(denominator))
	}
	s.ratio.Store(packed)
	s.counter.Store(0)
}

// Allow reports whether the next event passes.
func (s *ratioSampler) Allow() bool {
	packed := s.ratio.Load()
	num, den := packed>>32, packed&0xffffffff
	if num == 0 || den == 0 {
		return true
	}
	n := s.counter.Add(1) - 1
	return n%den < num
}

// parseRatioSpec reads "n/d" or "d" (meaning 1/d). Invalid input disables sampling.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0
	}
	if a, b, ok := strings.Cut(spec, "/"); ok {
		num, err1 := strconv.Atoi(strings.TrimSpace(a))
		den, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 != nil || err2 != nil {
			return 0, 0
		}
		return num, den
	}
	v, err := strconv.Atoi(spec)
	if err != nil || v <= 0 {
		return 0, 0
	}
	return 1, v
}

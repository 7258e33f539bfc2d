// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package status

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// Source yields uniform draws in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Picker chooses the status message returned for a recorded vote
type Picker struct {
	rate float64

	mu  sync.Mutex
	src Source
}

// NewPicker returns a Picker that emits the legend message with probability rate.
// A nil src uses a randomly seeded PCG source.
func NewPicker(rate float64, src Source) *Picker {
	if src == nil {
		src = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Picker{rate: rate, src: src}
}

// Message returns the status text for a vote on pollID
func (p *Picker) Message(pollID string) string {
	if p.draw() < p.rate {
		return Legend(pollID)
	}
	return Recorded(pollID)
}

// *rand.Rand is not safe for concurrent use
func (p *Picker) draw() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.src.Float64()
}

func Recorded(pollID string) string {
	return fmt.Sprintf("Vote for %s recorded", pollID)
}

func Legend(pollID string) string {
	return fmt.Sprintf("Vote for %s counted, Fort Atkinson legend!", pollID)
}

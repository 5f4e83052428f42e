package ledger

import (
	"sync/atomic"

	"canopy/pkg/domain"
)

// Sequencer hands out the strictly increasing height values the substrate
// stamps on mutating calls. Heights start at 1; a consumed height is never
// reissued, even when the operation it was minted for fails validation.
type Sequencer struct {
	height atomic.Uint64
}

// NewSequencer returns a sequencer starting at height 1.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Next allocates the next height.
func (s *Sequencer) Next() domain.Height {
	return domain.Height(s.height.Add(1))
}

// Current reports the last allocated height without consuming one.
func (s *Sequencer) Current() domain.Height {
	return domain.Height(s.height.Load())
}

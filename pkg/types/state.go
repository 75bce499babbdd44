package types

import "errors"

// DefaultLevels is the number of visibility levels an object carries unless
// its constructor says otherwise. Every observed domain uses seven.
const DefaultLevels = 7

// Transition errors (prd001-helix-core R3.4).
var (
	ErrInvalidTransition = errors.New("invalid helix transition")
	ErrLevelOutOfRange   = errors.New("level out of range")
	ErrInvalidLevels     = errors.New("level count must be at least 1")
)

// HelixState is the finite coordinate governing current visibility: an outer
// cycle counter and a level in [0, levels-1]. It is an immutable value;
// transitions return a replacement state and never mutate the receiver.
// Implements: prd001-helix-core R3.
type HelixState struct {
	Cycle int `json:"cycle"`
	Level int `json:"level"`
}

// Invoke moves to level k within the current cycle. Total over [0, levels-1];
// out-of-range k is a caller bug and is rejected with ErrLevelOutOfRange,
// never clamped.
func (s HelixState) Invoke(k, levels int) (HelixState, error) {
	if k < 0 || k >= levels {
		return s, ErrLevelOutOfRange
	}
	return HelixState{Cycle: s.Cycle, Level: k}, nil
}

// CycleUp wraps from the top level into the next cycle: (c, levels-1) to
// (c+1, 0). Returns ErrInvalidTransition unless the current level is the top.
func (s HelixState) CycleUp(levels int) (HelixState, error) {
	if s.Level != levels-1 {
		return s, ErrInvalidTransition
	}
	return HelixState{Cycle: s.Cycle + 1, Level: 0}, nil
}

// CycleDown wraps from the bottom level into the previous cycle: (c, 0) to
// (c-1, levels-1). Returns ErrInvalidTransition unless the current level is 0.
func (s HelixState) CycleDown(levels int) (HelixState, error) {
	if s.Level != 0 {
		return s, ErrInvalidTransition
	}
	return HelixState{Cycle: s.Cycle - 1, Level: levels - 1}, nil
}

// Reset returns to level 0 of the current cycle. Always succeeds.
func (s HelixState) Reset() HelixState {
	return HelixState{Cycle: s.Cycle}
}

// InRange reports whether the state's level is valid for the given level count.
func (s HelixState) InRange(levels int) bool {
	return s.Level >= 0 && s.Level < levels
}

package material

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-render/engine/frontend"
)

// RenderStateSet holds at most one render state per state type. A nil set is a valid empty set.
type RenderStateSet struct {
	states []frontend.RenderState
	mask   uint32
}

// NewRenderStateSet builds a set from states. A later state of the same type replaces an earlier one.
func NewRenderStateSet(states ...frontend.RenderState) *RenderStateSet {
	s := &RenderStateSet{}
	for _, st := range states {
		s.AddState(st)
	}
	return s
}

func typeBit(t frontend.RenderStateType) uint32 { return 1 << uint32(t) }

// AddState inserts st, replacing the state of the same type if there is one.
func (s *RenderStateSet) AddState(st frontend.RenderState) {
	if s.HasType(st.Type) {
		for i := range s.states {
			if s.states[i].Type == st.Type {
				s.states[i] = st
				return
			}
		}
	}
	s.states = append(s.states, st)
	s.mask |= typeBit(st.Type)
}

// States returns the states in insertion order. The slice must not be modified.
func (s *RenderStateSet) States() []frontend.RenderState {
	if s == nil {
		return nil
	}
	return s.states
}

// Len returns the number of states.
func (s *RenderStateSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.states)
}

// HasType reports whether the set holds a state of type t.
func (s *RenderStateSet) HasType(t frontend.RenderStateType) bool {
	return s != nil && s.mask&typeBit(t) != 0
}

// Contains reports whether the set holds st with identical parameters.
func (s *RenderStateSet) Contains(st frontend.RenderState) bool {
	return s.HasType(st.Type) && slices.Contains(s.states, st)
}

// Merge adds the states of other whose type is not already present. Existing states are never overridden,
// so the set built first along a frame-graph path has the highest priority.
func (s *RenderStateSet) Merge(other *RenderStateSet) {
	for _, st := range other.States() {
		if !s.HasType(st.Type) {
			s.states = append(s.states, st)
			s.mask |= typeBit(st.Type)
		}
	}
}

// Clone returns an independent copy. Cloning nil yields an empty set.
func (s *RenderStateSet) Clone() *RenderStateSet {
	if s == nil {
		return &RenderStateSet{}
	}
	return &RenderStateSet{states: slices.Clone(s.states), mask: s.mask}
}

// ChangeCost estimates the cost of switching from previous to s: every state of previous whose type s does not set
// has to be reset (cost 1), and every state of s that previous does not already hold has to be applied (cost 2).
//
// Parameters:
//   - previous: the set active before s, nil for none
//
// Returns:
//   - int: the cost, 0 when previous is s
func (s *RenderStateSet) ChangeCost(previous *RenderStateSet) int {
	if previous == s {
		return 0
	}
	cost := 0
	for _, st := range previous.States() {
		if !s.HasType(st.Type) {
			cost++
		}
	}
	for _, st := range s.States() {
		if !previous.Contains(st) {
			cost += 2
		}
	}
	return cost
}

// Equal reports whether both sets hold the same states regardless of order.
func (s *RenderStateSet) Equal(other *RenderStateSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, st := range s.States() {
		if !other.Contains(st) {
			return false
		}
	}
	return true
}

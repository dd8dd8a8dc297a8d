package pipeline

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition indicates a trigger fired from a state that does
// not permit it.
var ErrInvalidTransition = errors.New("invalid state transition")

// Machine tracks the current lifecycle state and validates transitions.
// One Machine instance belongs to exactly one batch job; it is driven by
// the single orchestrating goroutine and needs no locking.
type Machine struct {
	current     State
	transitions map[State]map[Trigger]State
}

// machineBuilder accumulates the permitted transition table.
type machineBuilder struct {
	transitions map[State]map[Trigger]State
}

func newMachineBuilder() *machineBuilder {
	return &machineBuilder{transitions: make(map[State]map[Trigger]State)}
}

// permit allows a trigger to transition fromState to toState.
func (b *machineBuilder) permit(fromState State, trigger Trigger, toState State) *machineBuilder {
	if !fromState.IsValid() || !toState.IsValid() {
		panic(fmt.Sprintf("invalid state in transition %s -> %s", fromState, toState))
	}
	if b.transitions[fromState] == nil {
		b.transitions[fromState] = make(map[Trigger]State)
	}
	b.transitions[fromState][trigger] = toState
	return b
}

func (b *machineBuilder) build(initial State) *Machine {
	return &Machine{current: initial, transitions: b.transitions}
}

// newLifecycle builds the batch lifecycle machine:
//
//	Validating -> Generating -> Rendering -> Merging -> Completed
//
// Failed is reachable from every working state. PartiallyCompleted is
// reachable from Rendering (skip policy without a merge) and Merging
// (render failures or a merge failure alongside successful variants).
func newLifecycle() *Machine {
	b := newMachineBuilder()
	b.permit(StateValidating, TriggerStartGeneration, StateGenerating).
		permit(StateValidating, TriggerFail, StateFailed).
		permit(StateGenerating, TriggerStartRendering, StateRendering).
		permit(StateGenerating, TriggerFail, StateFailed).
		permit(StateRendering, TriggerStartMerge, StateMerging).
		permit(StateRendering, TriggerCompletePartial, StatePartiallyCompleted).
		permit(StateRendering, TriggerFail, StateFailed).
		permit(StateMerging, TriggerComplete, StateCompleted).
		permit(StateMerging, TriggerCompletePartial, StatePartiallyCompleted).
		permit(StateMerging, TriggerFail, StateFailed)
	return b.build(StateValidating)
}

// State returns the current state.
func (m *Machine) State() State {
	return m.current
}

// CanFire returns true if the trigger is permitted in the current state.
func (m *Machine) CanFire(trigger Trigger) bool {
	_, ok := m.transitions[m.current][trigger]
	return ok
}

// Fire executes the trigger, transitioning to the new state if allowed.
func (m *Machine) Fire(trigger Trigger) error {
	next, ok := m.transitions[m.current][trigger]
	if !ok {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.current)
	}
	m.current = next
	return nil
}

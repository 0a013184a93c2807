// Package fsm implements a small table-driven state machine shared by the
// audio capture and session lifecycles.
package fsm

import "fmt"

// State is one lifecycle state.
type State string

// Event is one transition trigger consumed by the state machine.
type Event string

// transitionKey identifies one (state, event) pair in a table.
type transitionKey struct {
	state State
	event Event
}

// Table maps (state, event) pairs to the resulting state. Missing entries
// are invalid transitions.
type Table map[transitionKey]State

// NewTable builds an empty transition table.
func NewTable() Table {
	return make(Table)
}

// Allow registers one valid transition and returns the table for chaining.
func (t Table) Allow(from State, event Event, to State) Table {
	t[transitionKey{from, event}] = to
	return t
}

// Machine drives a State through a Table, guarding invalid transitions.
type Machine struct {
	table   Table
	current State
}

// NewMachine creates a Machine starting in the given state.
func NewMachine(table Table, initial State) *Machine {
	return &Machine{table: table, current: initial}
}

// Current returns the machine's current state.
func (m *Machine) Current() State {
	return m.current
}

// Fire applies event to the current state, returning the resulting state.
// The machine's state only advances when the transition is valid.
func (m *Machine) Fire(event Event) (State, error) {
	next, ok := m.table[transitionKey{m.current, event}]
	if !ok {
		return m.current, invalidTransition(m.current, event)
	}
	m.current = next
	return next, nil
}

// invalidTransition formats a stable error message used by tests and callers.
func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}

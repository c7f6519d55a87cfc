package workflow

import (
	"context"
	"fmt"
)

// GuardFunc evaluates whether a permitted transition may actually fire.
type GuardFunc func(ctx context.Context) bool

// transition is one permitted outcome of a trigger, with an optional guard.
type transition struct {
	to    State
	guard GuardFunc
}

// Builder accumulates the transition table for a machine. Configure each
// state, then Build machines positioned at any initial state; built machines
// are independent of the builder and of each other.
type Builder struct {
	table map[State]map[Trigger][]transition
}

// NewBuilder creates an empty state machine builder.
func NewBuilder() *Builder {
	return &Builder{table: make(map[State]map[Trigger][]transition)}
}

// StateConfig configures the outgoing transitions of a single state.
type StateConfig struct {
	builder *Builder
	from    State
}

// Configure returns the configuration handle for a state.
func (b *Builder) Configure(state State) *StateConfig {
	if !state.IsValid() {
		panic(fmt.Sprintf("workflow: configuring invalid state %q", state))
	}
	if b.table[state] == nil {
		b.table[state] = make(map[Trigger][]transition)
	}
	return &StateConfig{builder: b, from: state}
}

// Permit allows a trigger to move the state to the target state.
func (c *StateConfig) Permit(trigger Trigger, to State) *StateConfig {
	return c.PermitIf(trigger, to, nil)
}

// PermitIf allows a trigger to move the state to the target state when the
// guard passes. Multiple transitions on one trigger are tried in the order
// they were registered.
func (c *StateConfig) PermitIf(trigger Trigger, to State, guard GuardFunc) *StateConfig {
	if !to.IsValid() {
		panic(fmt.Sprintf("workflow: permitting transition to invalid state %q", to))
	}
	c.builder.table[c.from][trigger] = append(c.builder.table[c.from][trigger], transition{to: to, guard: guard})
	return c
}

// Build creates a machine positioned at the given initial state. The
// transition table is copied so later builder changes do not leak in.
func (b *Builder) Build(initial State) *Machine {
	if !initial.IsValid() {
		panic(fmt.Sprintf("workflow: building machine with invalid initial state %q", initial))
	}
	table := make(map[State]map[Trigger][]transition, len(b.table))
	for state, triggers := range b.table {
		copied := make(map[Trigger][]transition, len(triggers))
		for trig, ts := range triggers {
			copied[trig] = append([]transition(nil), ts...)
		}
		table[state] = copied
	}
	return &Machine{current: initial, table: table}
}

// Machine tracks the current state and validates transitions against the
// configured table. It is not safe for concurrent use; callers serialize
// access per application.
type Machine struct {
	current State
	table   map[State]map[Trigger][]transition
}

// State returns the current state.
func (m *Machine) State() State {
	return m.current
}

// CanFire reports whether the trigger has any permitted transition in the
// current state. Guards are not evaluated here.
func (m *Machine) CanFire(trigger Trigger) bool {
	return len(m.table[m.current][trigger]) > 0
}

// Fire attempts the trigger, moving to the first transition whose guard
// passes. The state is unchanged on error.
func (m *Machine) Fire(ctx context.Context, trigger Trigger) error {
	ts := m.table[m.current][trigger]
	if len(ts) == 0 {
		return fmt.Errorf("%w: trigger %s from state %s", ErrInvalidTransition, trigger, m.current)
	}
	for _, t := range ts {
		if t.guard == nil || t.guard(ctx) {
			m.current = t.to
			return nil
		}
	}
	return fmt.Errorf("%w: trigger %s from state %s", ErrGuardFailed, trigger, m.current)
}

// PermittedTriggers returns the triggers that have at least one transition
// registered for the current state.
func (m *Machine) PermittedTriggers() []Trigger {
	triggers := make([]Trigger, 0, len(m.table[m.current]))
	for trig := range m.table[m.current] {
		triggers = append(triggers, trig)
	}
	return triggers
}

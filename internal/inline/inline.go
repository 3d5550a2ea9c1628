// Package inline implements the single inline content slot of a table: an
// editor that either opens as an ephemeral row above the current page
// (create) or replaces one visible row in place (edit).
//
// At most one slot is open. Opening a slot while another is open replaces
// it. Closing always succeeds and takes effect immediately; ExitDelay is
// only a hint for renderers that animate the removal.
package inline

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/grid/pkg/types"
)

// Machine holds the slot state.
type Machine struct {
	state     types.InlineState
	exitDelay time.Duration
	newKey    func() (uuid.UUID, error)
}

// New returns a closed machine. A non-positive exitDelay selects
// types.DefaultInlineExitDelay.
func New(exitDelay time.Duration) *Machine {
	if exitDelay <= 0 {
		exitDelay = types.DefaultInlineExitDelay
	}
	return &Machine{
		state:     types.InlineState{Mode: types.InlineClosed},
		exitDelay: exitDelay,
		newKey:    uuid.NewV7,
	}
}

// State returns the current slot.
func (m *Machine) State() types.InlineState { return m.state }

// ExitDelay is how long a renderer may keep a closed slot on screen.
func (m *Machine) ExitDelay() time.Duration { return m.exitDelay }

// OpenCreate opens the create slot with a fresh key, replacing any open
// slot.
func (m *Machine) OpenCreate() (types.InlineState, error) {
	key, err := m.newKey()
	if err != nil {
		return m.state, fmt.Errorf("generating create key: %w", err)
	}
	m.state = types.InlineState{Mode: types.InlineCreate, CreateKey: key.String()}
	return m.state, nil
}

// OpenEdit opens the edit slot on rowID, replacing any open slot. The row
// must be among visible, the ids of the rows on the current page; otherwise
// the state is left unchanged and types.ErrRowNotOnPage is returned.
func (m *Machine) OpenEdit(rowID string, visible []string) (types.InlineState, error) {
	if rowID == "" {
		return m.state, fmt.Errorf("%w: empty row id", types.ErrInvalidTransition)
	}
	if !slices.Contains(visible, rowID) {
		return m.state, fmt.Errorf("%w: %q", types.ErrRowNotOnPage, rowID)
	}
	m.state = types.InlineState{Mode: types.InlineEdit, EditingRowID: rowID}
	return m.state, nil
}

// Close closes any open slot. It returns the state that was closed.
func (m *Machine) Close() types.InlineState {
	prev := m.state
	m.state = types.InlineState{Mode: types.InlineClosed}
	return prev
}

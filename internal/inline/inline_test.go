package inline

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/grid/pkg/types"
)

func TestNewDefaults(t *testing.T) {
	m := New(0)
	assert.Equal(t, types.DefaultInlineExitDelay, m.ExitDelay())
	assert.Equal(t, types.InlineState{Mode: types.InlineClosed}, m.State())
	assert.Equal(t, time.Second, New(time.Second).ExitDelay())
}

func TestTransitions(t *testing.T) {
	visible := []string{"a", "b"}

	tests := []struct {
		name    string
		steps   func(m *Machine) error
		want    string
		editing string
		wantErr error
	}{
		{
			name:  "closed to create",
			steps: func(m *Machine) error { _, err := m.OpenCreate(); return err },
			want:  types.InlineCreate,
		},
		{
			name:    "closed to edit",
			steps:   func(m *Machine) error { _, err := m.OpenEdit("a", visible); return err },
			want:    types.InlineEdit,
			editing: "a",
		},
		{
			name: "edit to create clears the row",
			steps: func(m *Machine) error {
				if _, err := m.OpenEdit("a", visible); err != nil {
					return err
				}
				_, err := m.OpenCreate()
				return err
			},
			want: types.InlineCreate,
		},
		{
			name: "create to edit",
			steps: func(m *Machine) error {
				if _, err := m.OpenCreate(); err != nil {
					return err
				}
				_, err := m.OpenEdit("b", visible)
				return err
			},
			want:    types.InlineEdit,
			editing: "b",
		},
		{
			name: "edit to edit",
			steps: func(m *Machine) error {
				if _, err := m.OpenEdit("a", visible); err != nil {
					return err
				}
				_, err := m.OpenEdit("b", visible)
				return err
			},
			want:    types.InlineEdit,
			editing: "b",
		},
		{
			name: "edit off page rejected",
			steps: func(m *Machine) error {
				if _, err := m.OpenCreate(); err != nil {
					return err
				}
				_, err := m.OpenEdit("z", visible)
				return err
			},
			want:    types.InlineCreate,
			wantErr: types.ErrRowNotOnPage,
		},
		{
			name:    "edit without id rejected",
			steps:   func(m *Machine) error { _, err := m.OpenEdit("", visible); return err },
			want:    types.InlineClosed,
			wantErr: types.ErrInvalidTransition,
		},
		{
			name: "any to closed",
			steps: func(m *Machine) error {
				if _, err := m.OpenEdit("a", visible); err != nil {
					return err
				}
				m.Close()
				return nil
			},
			want: types.InlineClosed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(0)
			err := tt.steps(m)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			st := m.State()
			assert.Equal(t, tt.want, st.Mode)
			assert.Equal(t, tt.editing, st.EditingRowID)
			assert.True(t, st.Valid(), "%+v", st)
		})
	}
}

func TestCreateKeyIsUUIDv7(t *testing.T) {
	m := New(0)
	st, err := m.OpenCreate()
	require.NoError(t, err)
	id, err := uuid.Parse(st.CreateKey)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	again, err := m.OpenCreate()
	require.NoError(t, err)
	assert.NotEqual(t, st.CreateKey, again.CreateKey)
}

func TestCreateKeyFailureKeepsState(t *testing.T) {
	m := New(0)
	m.newKey = func() (uuid.UUID, error) { return uuid.Nil, errors.New("entropy") }
	_, err := m.OpenCreate()
	assert.Error(t, err)
	assert.Equal(t, types.InlineClosed, m.State().Mode)
}

func TestClose(t *testing.T) {
	m := New(0)
	_, err := m.OpenEdit("a", []string{"a"})
	require.NoError(t, err)
	prev := m.Close()
	assert.Equal(t, "a", prev.EditingRowID)
	assert.False(t, m.State().IsOpen())
	assert.Equal(t, types.InlineClosed, m.Close().Mode)
}

type vm struct {
	ID string
}

func vmID(v vm) string { return v.ID }

func TestEntries(t *testing.T) {
	page := []vm{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	got := Entries(types.InlineState{Mode: types.InlineClosed}, page, vmID)
	require.Len(t, got, 3)
	for _, e := range got {
		assert.False(t, e.IsSlot())
	}

	got = Entries(types.InlineState{Mode: types.InlineCreate, CreateKey: "k"}, page, vmID)
	require.Len(t, got, 4)
	assert.Equal(t, Entry[vm]{Slot: types.InlineCreate, Key: "k"}, got[0])
	assert.Equal(t, "a", got[1].Key)

	got = Entries(types.InlineState{Mode: types.InlineEdit, EditingRowID: "b"}, page, vmID)
	require.Len(t, got, 3)
	assert.Equal(t, Entry[vm]{Slot: types.InlineEdit, Key: "b", Row: vm{ID: "b"}}, got[1])
	assert.False(t, got[0].IsSlot())

	got = Entries(types.InlineState{Mode: types.InlineEdit, EditingRowID: "gone"}, page, vmID)
	for _, e := range got {
		assert.False(t, e.IsSlot())
	}

	got = Entries(types.InlineState{}, page, nil)
	assert.Equal(t, []string{"#0", "#1", "#2"}, []string{got[0].Key, got[1].Key, got[2].Key})
}

func TestRender(t *testing.T) {
	page := []vm{{ID: "a"}, {ID: "b"}}
	closed := 0
	slot := func(mode string, data *vm, onClose func()) string {
		onClose()
		if data == nil {
			return mode + ":new"
		}
		return mode + ":" + data.ID
	}
	row := func(v vm) string { return fmt.Sprintf("row:%s", v.ID) }
	onClose := func() { closed++ }

	out := Render(Entries(types.InlineState{Mode: types.InlineCreate, CreateKey: "k"}, page, vmID), slot, row, onClose)
	assert.Equal(t, []string{"create:new", "row:a", "row:b"}, out)

	out = Render(Entries(types.InlineState{Mode: types.InlineEdit, EditingRowID: "b"}, page, vmID), slot, row, onClose)
	assert.Equal(t, []string{"row:a", "edit:b"}, out)
	assert.Equal(t, 2, closed)
}

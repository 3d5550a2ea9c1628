package types

// SortKey orders rows by one column.
type SortKey struct {
	ColumnID string
	Desc     bool
}

// SortState is an ordered list of sort keys. Earlier keys take precedence.
// An empty state keeps rows in insertion order.
type SortState []SortKey

// Clone returns a copy of the state.
func (s SortState) Clone() SortState {
	if s == nil {
		return nil
	}
	out := make(SortState, len(s))
	copy(out, s)
	return out
}

// Find returns the key for columnID and its position, or -1.
func (s SortState) Find(columnID string) (SortKey, int) {
	for i, k := range s {
		if k.ColumnID == columnID {
			return k, i
		}
	}
	return SortKey{}, -1
}

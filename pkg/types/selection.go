package types

// SelectionSource is an externally owned selection. When a table is given a
// SelectionSource it never mutates selection itself; it reads Selected and
// reports the desired next selection through OnChange.
type SelectionSource struct {
	Selected func() map[string]bool
	OnChange func(next map[string]bool)
}

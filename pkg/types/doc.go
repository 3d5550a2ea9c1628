// Package types defines the data model shared by the grid engine: column
// descriptors, filter values and filter state, sort and paging state, the
// inline content slot, table configuration and the standard error values.
//
// Everything here is plain data. Behavior lives in the engine packages and
// in pkg/grid, which threads these values between them.
package types

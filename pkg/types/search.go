package types

// Global search match modes.
const (
	MatchContains   = "contains"
	MatchStartsWith = "startsWith"
	MatchExact      = "exact"
)

var validMatchModes = map[string]bool{
	MatchContains:   true,
	MatchStartsWith: true,
	MatchExact:      true,
}

// IsValidMatchMode reports whether mode names a known match mode.
func IsValidMatchMode(mode string) bool {
	return validMatchModes[mode]
}

// SearchScope restricts which columns the global search reads. A non-empty
// Allow list wins; otherwise every column with a value source is searched
// except those in Deny and those that opt out.
type SearchScope struct {
	Allow []string
	Deny  []string
}

// DefaultSearchSeparator joins stringified array members for search.
const DefaultSearchSeparator = " "

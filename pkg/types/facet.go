package types

// FacetScope selects which rows a facet counts.
type FacetScope string

const (
	// FacetFiltered counts rows that pass every other active column filter
	// and the global search. The column's own filter is excluded so that
	// its unselected options keep their counts.
	FacetFiltered FacetScope = "filtered"
	// FacetUnfiltered counts the raw rows.
	FacetUnfiltered FacetScope = "unfiltered"
)

// IsValidFacetScope reports whether s names a known scope.
func IsValidFacetScope(s FacetScope) bool {
	return s == FacetFiltered || s == FacetUnfiltered
}

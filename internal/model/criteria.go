package model

// Filters holds the structured search filters. A zero field imposes no constraint.
type Filters struct {
	Location     string
	MinSize      float64
	MaxSize      float64
	PropertyType PropertyType
	MinPrice     float64
	MaxPrice     float64
	Purpose      ListingType
	Floors       int
	Rooms        int
	Bedrooms     int
}

// SearchCriteria is a free-text term plus structured filters.
type SearchCriteria struct {
	SearchTerm string
	Filters
}

// IsEmpty reports whether the criteria impose no constraint at all.
func (c SearchCriteria) IsEmpty() bool {
	return c.SearchTerm == "" && c.Filters == Filters{}
}

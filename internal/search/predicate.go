package search

import (
	"strings"

	"github.com/dtroode/homescout/internal/model"
)

type predicate func(l *model.Listing) bool

// predicates builds the ordered conjunction for the non-empty criteria fields.
func (e *Engine) predicates(c model.SearchCriteria) []predicate {
	var ps []predicate

	if c.SearchTerm != "" {
		term := strings.ToLower(c.SearchTerm)
		ps = append(ps, func(l *model.Listing) bool {
			return containsFold(l.Title, term) ||
				containsFold(l.Description, term) ||
				containsFold(l.Address, term)
		})
	}
	if c.Location != "" {
		location := strings.ToLower(c.Location)
		ps = append(ps, func(l *model.Listing) bool {
			return containsFold(l.Address, location)
		})
	}
	if c.MinSize != 0 {
		ps = append(ps, func(l *model.Listing) bool { return l.SquareMeters >= c.MinSize })
	}
	if c.MaxSize != 0 {
		ps = append(ps, func(l *model.Listing) bool { return l.SquareMeters <= c.MaxSize })
	}
	if c.PropertyType != "" {
		ps = append(ps, func(l *model.Listing) bool { return l.PropertyType == c.PropertyType })
	}
	if c.MinPrice != 0 {
		ps = append(ps, func(l *model.Listing) bool { return l.Price >= c.MinPrice })
	}
	if c.MaxPrice != 0 {
		ps = append(ps, func(l *model.Listing) bool { return l.Price <= c.MaxPrice })
	}
	if c.Purpose != "" {
		ps = append(ps, func(l *model.Listing) bool { return l.ListingType == c.Purpose })
	}
	if c.Floors != 0 {
		// Only apartments carry a building height; other types pass through.
		ps = append(ps, func(l *model.Listing) bool {
			if l.PropertyType != model.PropertyApartment {
				return true
			}
			return l.TotalFloors != nil && *l.TotalFloors == c.Floors
		})
	}
	if c.Rooms != 0 {
		ps = append(ps, func(l *model.Listing) bool { return e.roomPolicy.match(l.Rooms, c.Rooms) })
	}
	if c.Bedrooms != 0 {
		ps = append(ps, func(l *model.Listing) bool { return e.roomPolicy.match(l.Bedrooms, c.Bedrooms) })
	}

	return ps
}

// containsFold reports whether s contains the already lower-cased substr.
func containsFold(s, lowerSubstr string) bool {
	return strings.Contains(strings.ToLower(s), lowerSubstr)
}

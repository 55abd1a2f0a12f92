package search

import (
	"slices"

	"github.com/dtroode/homescout/internal/model"
)

// Page returns the items on the 1-based page and the total number of pages.
// Pages outside [1, totalPages] yield an empty slice; callers are expected to clamp.
func Page[T any](items []T, page, size int) ([]T, int) {
	if size <= 0 {
		return []T{}, 0
	}

	totalPages := (len(items) + size - 1) / size
	if page < 1 || page > totalPages {
		return []T{}, totalPages
	}

	start := (page - 1) * size
	end := min(start+size, len(items))
	return items[start:end], totalPages
}

// MostRecent returns up to n listings ordered by creation time, newest first.
// It is a placeholder feed, not a recommendation system.
func MostRecent(listings []model.Listing, n int) []model.Listing {
	if n <= 0 {
		return []model.Listing{}
	}

	sorted := slices.Clone(listings)
	slices.SortStableFunc(sorted, func(a, b model.Listing) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

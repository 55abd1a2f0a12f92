// Package search filters and paginates listing snapshots.
package search

import (
	"fmt"
	"strings"

	"github.com/dtroode/homescout/internal/model"
)

// DefaultPageSize is the number of results shown per page.
const DefaultPageSize = 9

// RoomPolicy decides how the rooms and bedrooms filters compare counts.
type RoomPolicy string

const (
	// RoomsExact keeps listings whose count equals the filter value.
	RoomsExact RoomPolicy = "exact"
	// RoomsAtLeast keeps listings whose count is greater than or equal to the filter value ("N+").
	RoomsAtLeast RoomPolicy = "at_least"
)

// ParseRoomPolicy converts a configuration string to a RoomPolicy.
func ParseRoomPolicy(s string) (RoomPolicy, error) {
	switch RoomPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoomsExact:
		return RoomsExact, nil
	case RoomsAtLeast:
		return RoomsAtLeast, nil
	default:
		return "", fmt.Errorf("unknown room policy %q", s)
	}
}

func (p RoomPolicy) match(actual *int, want int) bool {
	if actual == nil {
		return false
	}
	if p == RoomsAtLeast {
		return *actual >= want
	}
	return *actual == want
}

// Option configures an Engine.
type Option func(*Engine)

// WithRoomPolicy sets the comparison used by the rooms and bedrooms filters.
func WithRoomPolicy(p RoomPolicy) Option {
	return func(e *Engine) {
		e.roomPolicy = p
	}
}

// Engine evaluates search criteria against listing snapshots. It holds no listing state.
type Engine struct {
	roomPolicy RoomPolicy
}

// NewEngine creates an Engine. The default room policy is RoomsExact.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{roomPolicy: RoomsExact}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RoomPolicy returns the policy the engine was configured with.
func (e *Engine) RoomPolicy() RoomPolicy {
	return e.roomPolicy
}

// Search returns the listings matching every supplied criterion, in input order.
func (e *Engine) Search(listings []model.Listing, criteria model.SearchCriteria) []model.Listing {
	predicates := e.predicates(criteria)

	result := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if matchAll(predicates, &l) {
			result = append(result, l)
		}
	}
	return result
}

// Match reports whether a single listing satisfies the criteria.
func (e *Engine) Match(l model.Listing, criteria model.SearchCriteria) bool {
	return matchAll(e.predicates(criteria), &l)
}

func matchAll(predicates []predicate, l *model.Listing) bool {
	for _, p := range predicates {
		if !p(l) {
			return false
		}
	}
	return true
}

// Package query maps search criteria to and from flat URL query parameters.
package query

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/dtroode/homescout/internal/model"
)

// Query parameter keys.
const (
	KeyTerm         = "q"
	KeyLocation     = "location"
	KeyMinSize      = "minSize"
	KeyMaxSize      = "maxSize"
	KeyPropertyType = "propertyType"
	KeyMinPrice     = "minPrice"
	KeyMaxPrice     = "maxPrice"
	KeyPurpose      = "purpose"
	KeyFloors       = "floors"
	KeyRooms        = "rooms"
	KeyBedrooms     = "bedrooms"
)

// ToQuery flattens filters and the free-text term. Empty fields are omitted.
func ToQuery(f model.Filters, term string) map[string]string {
	q := make(map[string]string)

	setString(q, KeyTerm, term)
	setString(q, KeyLocation, f.Location)
	setFloat(q, KeyMinSize, f.MinSize)
	setFloat(q, KeyMaxSize, f.MaxSize)
	setString(q, KeyPropertyType, string(f.PropertyType))
	setFloat(q, KeyMinPrice, f.MinPrice)
	setFloat(q, KeyMaxPrice, f.MaxPrice)
	setString(q, KeyPurpose, string(f.Purpose))
	setInt(q, KeyFloors, f.Floors)
	setInt(q, KeyRooms, f.Rooms)
	setInt(q, KeyBedrooms, f.Bedrooms)

	return q
}

// FromQuery is the inverse of ToQuery. Missing, malformed or negative numbers are treated as absent.
func FromQuery(q map[string]string) (model.Filters, string) {
	f := model.Filters{
		Location:     q[KeyLocation],
		MinSize:      parseFloat(q[KeyMinSize]),
		MaxSize:      parseFloat(q[KeyMaxSize]),
		PropertyType: model.PropertyType(q[KeyPropertyType]),
		MinPrice:     parseFloat(q[KeyMinPrice]),
		MaxPrice:     parseFloat(q[KeyMaxPrice]),
		Purpose:      model.ListingType(q[KeyPurpose]),
		Floors:       parseInt(q[KeyFloors]),
		Rooms:        parseInt(q[KeyRooms]),
		Bedrooms:     parseInt(q[KeyBedrooms]),
	}
	return f, q[KeyTerm]
}

// Criteria builds SearchCriteria from a flat query.
func Criteria(q map[string]string) model.SearchCriteria {
	f, term := FromQuery(q)
	return model.SearchCriteria{SearchTerm: term, Filters: f}
}

// Encode renders the criteria as a URL query string with keys in sorted order.
func Encode(f model.Filters, term string) string {
	values := url.Values{}
	for k, v := range ToQuery(f, term) {
		values.Set(k, v)
	}
	return values.Encode()
}

// Decode parses a URL query string. Only the first value of a repeated key is used.
// Pairs that cannot be unescaped are skipped; the well-formed ones are still
// decoded and the returned error describes the first skipped pair.
func Decode(raw string) (model.Filters, string, error) {
	values, parseErr := url.ParseQuery(raw)

	q := make(map[string]string, len(values))
	for k := range values {
		q[k] = values.Get(k)
	}

	f, term := FromQuery(q)
	if parseErr != nil {
		return f, term, fmt.Errorf("skipped malformed query part: %w", parseErr)
	}
	return f, term, nil
}

func setString(q map[string]string, key, value string) {
	if value != "" {
		q[key] = value
	}
}

func setFloat(q map[string]string, key string, value float64) {
	if value != 0 {
		q[key] = strconv.FormatFloat(value, 'f', -1, 64)
	}
}

func setInt(q map[string]string, key string, value int) {
	if value != 0 {
		q[key] = strconv.Itoa(value)
	}
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v != v {
		return 0
	}
	return v
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

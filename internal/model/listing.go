package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PropertyType enumerates kinds of property.
type PropertyType string

const (
	// PropertyApartment is a flat inside a multi-storey building.
	PropertyApartment PropertyType = "apartment"
	// PropertyHouse is a detached or terraced house.
	PropertyHouse PropertyType = "house"
	// PropertyCottage is a cottage or summer house.
	PropertyCottage PropertyType = "cottage"
	// PropertyCommercial is an office, shop or other commercial space.
	PropertyCommercial PropertyType = "commercial"
	// PropertyLand is a plot without buildings.
	PropertyLand PropertyType = "land"
)

// PropertyTypes lists every known property type.
var PropertyTypes = []PropertyType{PropertyApartment, PropertyHouse, PropertyCottage, PropertyCommercial, PropertyLand}

// Valid reports whether t is a known property type.
func (t PropertyType) Valid() bool {
	for _, known := range PropertyTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ListingType says whether the property is offered for sale or for rent.
type ListingType string

const (
	// ListingSale means Price is the total price.
	ListingSale ListingType = "sale"
	// ListingRent means Price is a monthly amount.
	ListingRent ListingType = "rent"
)

// Valid reports whether t is a known listing type.
func (t ListingType) Valid() bool {
	return t == ListingSale || t == ListingRent
}

// Listing represents a property offered on the marketplace.
type Listing struct {
	ID           uuid.UUID    `json:"id"`
	OwnerID      uuid.UUID    `json:"ownerId"`
	OwnerName    string       `json:"ownerName"`
	OwnerEmail   string       `json:"ownerEmail"`
	Title        string       `json:"title"`
	Address      string       `json:"address"`
	Description  string       `json:"description"`
	PropertyType PropertyType `json:"propertyType"`
	ListingType  ListingType  `json:"listingType"`
	SquareMeters float64      `json:"squareMeters"`
	Price        float64      `json:"price"`
	Rooms        *int         `json:"rooms,omitempty"`
	Bedrooms     *int         `json:"bedrooms,omitempty"`
	Floor        *int         `json:"floor,omitempty"`
	TotalFloors  *int         `json:"totalFloors,omitempty"`
	ContactPhone string       `json:"contactPhone"`
	Images       []string     `json:"images"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// ListingInput is the raw listing payload supplied by forms.
// Nil fields are left untouched when the input is applied to an existing listing.
// A JSON null decodes to nil, so an update cannot clear an optional count
// (rooms, bedrooms, floor, totalFloors) once set, and a null images list keeps
// the current images.
type ListingInput struct {
	Title        *string       `json:"title,omitempty"`
	Address      *string       `json:"address,omitempty"`
	Description  *string       `json:"description,omitempty"`
	PropertyType *PropertyType `json:"propertyType,omitempty"`
	ListingType  *ListingType  `json:"listingType,omitempty"`
	SquareMeters *float64      `json:"squareMeters,omitempty"`
	Price        *float64      `json:"price,omitempty"`
	Rooms        *int          `json:"rooms,omitempty"`
	Bedrooms     *int          `json:"bedrooms,omitempty"`
	Floor        *int          `json:"floor,omitempty"`
	TotalFloors  *int          `json:"totalFloors,omitempty"`
	ContactPhone *string       `json:"contactPhone,omitempty"`
	Images       []string      `json:"images,omitempty"`
}

// ApplyTo overwrites the fields of l that are set in the input.
func (in ListingInput) ApplyTo(l *Listing) {
	if in.Title != nil {
		l.Title = *in.Title
	}
	if in.Address != nil {
		l.Address = *in.Address
	}
	if in.Description != nil {
		l.Description = *in.Description
	}
	if in.PropertyType != nil {
		l.PropertyType = *in.PropertyType
	}
	if in.ListingType != nil {
		l.ListingType = *in.ListingType
	}
	if in.SquareMeters != nil {
		l.SquareMeters = *in.SquareMeters
	}
	if in.Price != nil {
		l.Price = *in.Price
	}
	if in.Rooms != nil {
		l.Rooms = cloneInt(in.Rooms)
	}
	if in.Bedrooms != nil {
		l.Bedrooms = cloneInt(in.Bedrooms)
	}
	if in.Floor != nil {
		l.Floor = cloneInt(in.Floor)
	}
	if in.TotalFloors != nil {
		l.TotalFloors = cloneInt(in.TotalFloors)
	}
	if in.ContactPhone != nil {
		l.ContactPhone = *in.ContactPhone
	}
	if in.Images != nil {
		l.Images = append([]string(nil), in.Images...)
	}
}

// Validate checks the input the way the listing form does before submitting it.
// The listing service itself trusts its input; callers are expected to validate.
func (in ListingInput) Validate() error {
	var errs []error
	required := func(field string, ok bool) {
		if !ok {
			errs = append(errs, fmt.Errorf("%s is required", field))
		}
	}

	required("title", nonBlank(in.Title))
	required("address", nonBlank(in.Address))
	required("description", nonBlank(in.Description))
	required("contactPhone", nonBlank(in.ContactPhone))
	required("propertyType", in.PropertyType != nil && *in.PropertyType != "")
	required("squareMeters", in.SquareMeters != nil && *in.SquareMeters != 0)
	required("price", in.Price != nil && *in.Price != 0)

	if in.PropertyType != nil && *in.PropertyType != "" && !in.PropertyType.Valid() {
		errs = append(errs, fmt.Errorf("unknown propertyType %q", *in.PropertyType))
	}
	if in.ListingType == nil || !in.ListingType.Valid() {
		errs = append(errs, errors.New("listingType must be sale or rent"))
	}
	if in.SquareMeters != nil && *in.SquareMeters < 0 {
		errs = append(errs, errors.New("squareMeters must be positive"))
	}
	if in.Price != nil && *in.Price < 0 {
		errs = append(errs, errors.New("price must be positive"))
	}

	if in.PropertyType != nil && *in.PropertyType == PropertyApartment {
		required("floor", in.Floor != nil && *in.Floor != 0)
		required("totalFloors", in.TotalFloors != nil && *in.TotalFloors != 0)
	}
	if in.PropertyType == nil || *in.PropertyType != PropertyLand {
		required("rooms", in.Rooms != nil && *in.Rooms != 0)
		required("bedrooms", in.Bedrooms != nil && *in.Bedrooms != 0)
	}
	for _, n := range []*int{in.Rooms, in.Bedrooms, in.Floor, in.TotalFloors} {
		if n != nil && *n < 0 {
			errs = append(errs, errors.New("counts must not be negative"))
			break
		}
	}

	if len(in.Images) == 0 {
		errs = append(errs, errors.New("at least one image is required"))
	}

	return errors.Join(errs...)
}

// Clone returns a deep copy of the listing.
func (l Listing) Clone() Listing {
	c := l
	c.Rooms = cloneInt(l.Rooms)
	c.Bedrooms = cloneInt(l.Bedrooms)
	c.Floor = cloneInt(l.Floor)
	c.TotalFloors = cloneInt(l.TotalFloors)
	if l.Images != nil {
		c.Images = append([]string(nil), l.Images...)
	}
	return c
}

func nonBlank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}

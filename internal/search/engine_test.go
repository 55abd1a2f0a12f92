package search

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/homescout/internal/model"
)

func intPtr(n int) *int { return &n }

func fixtures() []model.Listing {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []model.Listing{
		{
			ID: uuid.New(), Title: "Modern 2BR Apartment", Address: "Narva mnt 5, Tallinn",
			Description: "Bright flat with balcony", PropertyType: model.PropertyApartment,
			ListingType: model.ListingRent, SquareMeters: 50, Price: 1200,
			Rooms: intPtr(2), Bedrooms: intPtr(1), Floor: intPtr(3), TotalFloors: intPtr(5),
			CreatedAt: base,
		},
		{
			ID: uuid.New(), Title: "Spacious Family Home", Address: "Riia 10, Tartu",
			Description: "Garden and sauna", PropertyType: model.PropertyHouse,
			ListingType: model.ListingSale, SquareMeters: 180, Price: 350000,
			Rooms: intPtr(5), Bedrooms: intPtr(3),
			CreatedAt: base.Add(time.Hour),
		},
		{
			ID: uuid.New(), Title: "Building plot", Address: "Pärnu county",
			Description: "Quiet area near the sea", PropertyType: model.PropertyLand,
			ListingType: model.ListingSale, SquareMeters: 1500, Price: 45000,
			CreatedAt: base.Add(2 * time.Hour),
		},
		{
			ID: uuid.New(), Title: "Penthouse", Address: "Rotermanni 2, Tallinn",
			Description: "Top floor luxury", PropertyType: model.PropertyApartment,
			ListingType: model.ListingSale, SquareMeters: 140, Price: 550000,
			Rooms: intPtr(4), Bedrooms: intPtr(2), Floor: intPtr(9), TotalFloors: intPtr(9),
			CreatedAt: base.Add(3 * time.Hour),
		},
		{
			ID: uuid.New(), Title: "Office space", Address: "Ülemiste, Tallinn",
			Description: "Open plan commercial SPACE", PropertyType: model.PropertyCommercial,
			ListingType: model.ListingRent, SquareMeters: 300, Price: 2500,
			Rooms: intPtr(6), Bedrooms: intPtr(0),
			CreatedAt: base.Add(4 * time.Hour),
		},
	}
}

func titles(ls []model.Listing) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.Title)
	}
	return out
}

func TestEngine_Search_SinglePredicates(t *testing.T) {
	all := fixtures()
	e := NewEngine()

	tests := []struct {
		name     string
		criteria model.SearchCriteria
		want     []string
	}{
		{
			name: "empty criteria returns everything",
			want: titles(all),
		},
		{
			name:     "search term matches title case-insensitively",
			criteria: model.SearchCriteria{SearchTerm: "PENTHOUSE"},
			want:     []string{"Penthouse"},
		},
		{
			name:     "search term matches description",
			criteria: model.SearchCriteria{SearchTerm: "sauna"},
			want:     []string{"Spacious Family Home"},
		},
		{
			name:     "search term matches address",
			criteria: model.SearchCriteria{SearchTerm: "tartu"},
			want:     []string{"Spacious Family Home"},
		},
		{
			name:     "location matches address only",
			criteria: model.SearchCriteria{Filters: model.Filters{Location: "tallinn"}},
			want:     []string{"Modern 2BR Apartment", "Penthouse", "Office space"},
		},
		{
			name:     "min size is inclusive",
			criteria: model.SearchCriteria{Filters: model.Filters{MinSize: 180}},
			want:     []string{"Spacious Family Home", "Building plot", "Office space"},
		},
		{
			name:     "max size is inclusive",
			criteria: model.SearchCriteria{Filters: model.Filters{MaxSize: 140}},
			want:     []string{"Modern 2BR Apartment", "Penthouse"},
		},
		{
			name:     "property type",
			criteria: model.SearchCriteria{Filters: model.Filters{PropertyType: model.PropertyLand}},
			want:     []string{"Building plot"},
		},
		{
			name:     "min price is inclusive",
			criteria: model.SearchCriteria{Filters: model.Filters{MinPrice: 350000}},
			want:     []string{"Spacious Family Home", "Penthouse"},
		},
		{
			name:     "max price is inclusive",
			criteria: model.SearchCriteria{Filters: model.Filters{MaxPrice: 2500}},
			want:     []string{"Modern 2BR Apartment", "Office space"},
		},
		{
			name:     "purpose",
			criteria: model.SearchCriteria{Filters: model.Filters{Purpose: model.ListingRent}},
			want:     []string{"Modern 2BR Apartment", "Office space"},
		},
		{
			name:     "floors only constrains apartments",
			criteria: model.SearchCriteria{Filters: model.Filters{Floors: 5}},
			want:     []string{"Modern 2BR Apartment", "Spacious Family Home", "Building plot", "Office space"},
		},
		{
			name:     "rooms is exact by default and skips land",
			criteria: model.SearchCriteria{Filters: model.Filters{Rooms: 4}},
			want:     []string{"Penthouse"},
		},
		{
			name:     "bedrooms is exact by default",
			criteria: model.SearchCriteria{Filters: model.Filters{Bedrooms: 2}},
			want:     []string{"Penthouse"},
		},
		{
			name:     "no match",
			criteria: model.SearchCriteria{SearchTerm: "castle"},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Search(all, tt.criteria)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestEngine_Search_Combined(t *testing.T) {
	all := fixtures()
	e := NewEngine()

	got := e.Search(all, model.SearchCriteria{
		SearchTerm: "tallinn",
		Filters: model.Filters{
			PropertyType: model.PropertyApartment,
			Purpose:      model.ListingSale,
			MinSize:      100,
			MaxPrice:     600000,
		},
	})
	assert.Equal(t, []string{"Penthouse"}, titles(got))

	got = e.Search(all, model.SearchCriteria{
		Filters: model.Filters{PropertyType: model.PropertyApartment, MaxPrice: 1500},
	})
	assert.Equal(t, []string{"Modern 2BR Apartment"}, titles(got))
}

func TestEngine_Search_IsSoundAndComplete(t *testing.T) {
	all := fixtures()
	e := NewEngine()
	criteria := model.SearchCriteria{Filters: model.Filters{Location: "tallinn", MinSize: 100}}

	got := e.Search(all, criteria)

	var want []string
	for _, l := range all {
		if e.Match(l, criteria) {
			want = append(want, l.Title)
		}
	}
	assert.Equal(t, want, titles(got))
	for _, l := range got {
		assert.Contains(t, l.Address, "Tallinn")
		assert.GreaterOrEqual(t, l.SquareMeters, 100.0)
	}
}

func TestEngine_Search_AtLeastPolicy(t *testing.T) {
	all := fixtures()
	e := NewEngine(WithRoomPolicy(RoomsAtLeast))

	got := e.Search(all, model.SearchCriteria{Filters: model.Filters{Rooms: 4}})
	assert.Equal(t, []string{"Spacious Family Home", "Penthouse", "Office space"}, titles(got))

	got = e.Search(all, model.SearchCriteria{Filters: model.Filters{Bedrooms: 2}})
	assert.Equal(t, []string{"Spacious Family Home", "Penthouse"}, titles(got))
	assert.Equal(t, RoomsAtLeast, e.RoomPolicy())
}

func TestEngine_Search_DoesNotMutateInput(t *testing.T) {
	all := fixtures()
	before := titles(all)

	_ = NewEngine().Search(all, model.SearchCriteria{Filters: model.Filters{PropertyType: model.PropertyHouse}})

	assert.Equal(t, before, titles(all))
}

func TestParseRoomPolicy(t *testing.T) {
	p, err := ParseRoomPolicy("")
	require.NoError(t, err)
	assert.Equal(t, RoomsExact, p)

	p, err = ParseRoomPolicy(" AT_LEAST ")
	require.NoError(t, err)
	assert.Equal(t, RoomsAtLeast, p)

	_, err = ParseRoomPolicy("minimum")
	assert.Error(t, err)
}

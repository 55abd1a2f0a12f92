package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/dtroode/homescout/internal/model"
)

var printer = message.NewPrinter(language.English)

// formatPrice renders a price the way listing cards show it: €1,200/month for
// rentals and €350,000 for sales.
func formatPrice(price float64, listingType model.ListingType) string {
	s := printer.Sprintf("€%v", number.Decimal(price, number.MaxFractionDigits(0)))
	if listingType == model.ListingRent {
		s += "/month"
	}
	return s
}

func formatArea(m2 float64) string {
	return printer.Sprintf("%v m²", number.Decimal(m2, number.MaxFractionDigits(1)))
}

func formatCount(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprint(*n)
}

func writeListings(w io.Writer, listings []model.Listing) {
	if len(listings) == 0 {
		fmt.Fprintln(w, "No listings found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tAREA\tROOMS\tPRICE\tADDRESS")
	for _, l := range listings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Title, l.PropertyType, formatArea(l.SquareMeters),
			formatCount(l.Rooms), formatPrice(l.Price, l.ListingType), l.Address)
	}
	tw.Flush()
}

func writeListing(w io.Writer, l model.Listing) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(k, v string) { fmt.Fprintf(tw, "%s:\t%s\n", k, v) }

	row("ID", l.ID.String())
	row("Title", l.Title)
	row("Price", formatPrice(l.Price, l.ListingType))
	row("For", string(l.ListingType))
	row("Type", string(l.PropertyType))
	row("Area", formatArea(l.SquareMeters))
	row("Rooms", formatCount(l.Rooms))
	row("Bedrooms", formatCount(l.Bedrooms))
	if l.PropertyType == model.PropertyApartment {
		row("Floor", fmt.Sprintf("%s of %s", formatCount(l.Floor), formatCount(l.TotalFloors)))
	}
	row("Address", l.Address)
	row("Contact", fmt.Sprintf("%s, %s <%s>", l.ContactPhone, l.OwnerName, l.OwnerEmail))
	row("Images", fmt.Sprint(len(l.Images)))
	row("Listed", l.CreatedAt.Format("2 Jan 2006"))
	tw.Flush()

	if d := strings.TrimSpace(l.Description); d != "" {
		fmt.Fprintf(w, "\n%s\n", d)
	}
}

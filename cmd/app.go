package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/dtroode/homescout/internal/model"
	"github.com/dtroode/homescout/internal/query"
	"github.com/dtroode/homescout/internal/search"
	"github.com/dtroode/homescout/internal/service"
)

// errUsage marks errors caused by bad command-line input.
var errUsage = errors.New("usage error")

type app struct {
	identity *service.Identity
	listings *service.Listings
	pageSize int
	feedSize int
	out      io.Writer
}

type command struct {
	summary string
	run     func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"register": {"create an account and sign in", (*app).register},
	"login":    {"sign in", (*app).login},
	"logout":   {"sign out", (*app).logout},
	"whoami":   {"show the signed-in user", (*app).whoami},
	"create":   {"create a listing from a JSON file", (*app).create},
	"update":   {"update a listing from a JSON file", (*app).update},
	"delete":   {"delete a listing", (*app).delete},
	"get":      {"show a listing", (*app).get},
	"list":     {"list all listings", (*app).list},
	"mine":     {"list your listings", (*app).mine},
	"owner":    {"list listings of a user", (*app).owner},
	"search":   {"search listings", (*app).search},
	"recent":   {"show the most recent listings", (*app).recent},
	"version":  {"print build information", (*app).version},
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return fmt.Errorf("%w: missing command", errUsage)
	}

	cmd, ok := commands[args[0]]
	if !ok {
		a.usage()
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	return cmd.run(a, ctx, args[1:])
}

func (a *app) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(a.out, "Usage: homescout <command> [flags]")
	fmt.Fprintln(a.out)
	for _, name := range names {
		fmt.Fprintf(a.out, "  %-9s %s\n", name, commands[name].summary)
	}
}

func (a *app) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func requireFlag(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: --%s is required", errUsage, name)
	}
	return nil
}

func parseID(raw string) (uuid.UUID, error) {
	if err := requireFlag("id", raw); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", errUsage, raw)
	}
	return id, nil
}

func readInput(path string) (model.ListingInput, error) {
	var in model.ListingInput
	if err := requireFlag("file", path); err != nil {
		return in, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("failed to read listing file: %w", err)
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("%w: listing file is not valid JSON: %v", errUsage, err)
	}
	return in, nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "display name")
	if err := parse(fs, args); err != nil {
		return err
	}
	for _, f := range []struct{ name, value string }{{"email", *email}, {"password", *password}, {"name", *name}} {
		if err := requireFlag(f.name, f.value); err != nil {
			return err
		}
	}

	user, err := a.identity.Register(ctx, *email, *password, *name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s! You are signed in as %s.\n", user.Name, user.Email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := parse(fs, args); err != nil {
		return err
	}

	user, err := a.identity.Authenticate(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s.\n", user.Email)
	return nil
}

func (a *app) logout(ctx context.Context, _ []string) error {
	if err := a.identity.EndSession(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *app) whoami(_ context.Context, _ []string) error {
	user, ok := a.identity.CurrentPrincipal()
	if !ok {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> (%s)\n", user.Name, user.Email, user.ID)
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := a.flags("create")
	file := fs.String("file", "", "path to the listing JSON")
	if err := parse(fs, args); err != nil {
		return err
	}

	in, err := readInput(*file)
	if err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	l, err := a.listings.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created listing %s.\n", l.ID)
	return nil
}

func (a *app) update(ctx context.Context, args []string) error {
	fs := a.flags("update")
	rawID := fs.String("id", "", "listing id")
	file := fs.String("file", "", "path to a JSON file with the fields to change")
	if err := parse(fs, args); err != nil {
		return err
	}

	id, err := parseID(*rawID)
	if err != nil {
		return err
	}
	in, err := readInput(*file)
	if err != nil {
		return err
	}

	l, err := a.listings.Update(ctx, id, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated listing %s.\n", l.ID)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := a.flags("delete")
	rawID := fs.String("id", "", "listing id")
	if err := parse(fs, args); err != nil {
		return err
	}

	id, err := parseID(*rawID)
	if err != nil {
		return err
	}
	if err := a.listings.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted listing %s.\n", id)
	return nil
}

func (a *app) get(_ context.Context, args []string) error {
	fs := a.flags("get")
	rawID := fs.String("id", "", "listing id")
	if err := parse(fs, args); err != nil {
		return err
	}

	id, err := parseID(*rawID)
	if err != nil {
		return err
	}
	l, ok := a.listings.GetByID(id)
	if !ok {
		return model.ErrNotFound
	}
	writeListing(a.out, l)
	return nil
}

func (a *app) list(_ context.Context, args []string) error {
	fs := a.flags("list")
	page := fs.Int("page", 1, "page number")
	if err := parse(fs, args); err != nil {
		return err
	}
	a.writePage(a.listings.GetAll(), *page)
	return nil
}

func (a *app) mine(_ context.Context, args []string) error {
	if _, ok := a.identity.CurrentPrincipal(); !ok {
		return model.ErrUnauthenticated
	}
	fs := a.flags("mine")
	page := fs.Int("page", 1, "page number")
	if err := parse(fs, args); err != nil {
		return err
	}
	a.writePage(a.listings.GetMine(), *page)
	return nil
}

func (a *app) owner(_ context.Context, args []string) error {
	fs := a.flags("owner")
	rawID := fs.String("id", "", "owner user id")
	page := fs.Int("page", 1, "page number")
	if err := parse(fs, args); err != nil {
		return err
	}

	id, err := parseID(*rawID)
	if err != nil {
		return err
	}
	a.writePage(a.listings.GetByOwner(id), *page)
	return nil
}

func (a *app) search(_ context.Context, args []string) error {
	fs := a.flags("search")
	raw := fs.String("query", "", "URL query string, e.g. propertyType=apartment&maxPrice=1500")
	page := fs.Int("page", 1, "page number")

	var flags model.Filters
	var purpose, propertyType string
	term := fs.StringP("term", "q", "", "text to look for in title, description and address")
	fs.StringVar(&flags.Location, "location", "", "address fragment")
	fs.Float64Var(&flags.MinSize, "min-size", 0, "minimum area in square meters")
	fs.Float64Var(&flags.MaxSize, "max-size", 0, "maximum area in square meters")
	fs.StringVar(&propertyType, "type", "", "property type")
	fs.Float64Var(&flags.MinPrice, "min-price", 0, "minimum price")
	fs.Float64Var(&flags.MaxPrice, "max-price", 0, "maximum price")
	fs.StringVar(&purpose, "purpose", "", "sale or rent")
	fs.IntVar(&flags.Floors, "floors", 0, "total floors of the building (apartments)")
	fs.IntVar(&flags.Rooms, "rooms", 0, "number of rooms")
	fs.IntVar(&flags.Bedrooms, "bedrooms", 0, "number of bedrooms")
	if err := parse(fs, args); err != nil {
		return err
	}
	flags.PropertyType = model.PropertyType(propertyType)
	flags.Purpose = model.ListingType(purpose)

	// Criteria start from --query; explicitly set flags override its keys.
	var criteria model.SearchCriteria
	if *raw != "" {
		filters, q, err := query.Decode(*raw)
		if err != nil {
			fmt.Fprintf(a.out, "Warning: %v\n", err)
		}
		criteria = model.SearchCriteria{SearchTerm: q, Filters: filters}
	}

	c := &criteria
	overrides := []struct {
		flag  string
		apply func()
	}{
		{"term", func() { c.SearchTerm = *term }},
		{"location", func() { c.Location = flags.Location }},
		{"min-size", func() { c.MinSize = flags.MinSize }},
		{"max-size", func() { c.MaxSize = flags.MaxSize }},
		{"type", func() { c.PropertyType = flags.PropertyType }},
		{"min-price", func() { c.MinPrice = flags.MinPrice }},
		{"max-price", func() { c.MaxPrice = flags.MaxPrice }},
		{"purpose", func() { c.Purpose = flags.Purpose }},
		{"floors", func() { c.Floors = flags.Floors }},
		{"rooms", func() { c.Rooms = flags.Rooms }},
		{"bedrooms", func() { c.Bedrooms = flags.Bedrooms }},
	}
	for _, o := range overrides {
		if fs.Changed(o.flag) {
			o.apply()
		}
	}

	if !criteria.IsEmpty() {
		fmt.Fprintf(a.out, "?%s\n", query.Encode(criteria.Filters, criteria.SearchTerm))
	}
	a.writePage(a.listings.Search(criteria), *page)
	return nil
}

func (a *app) recent(_ context.Context, args []string) error {
	fs := a.flags("recent")
	n := fs.IntP("count", "n", a.feedSize, "number of listings")
	if err := parse(fs, args); err != nil {
		return err
	}
	writeListings(a.out, a.listings.Recent(*n))
	return nil
}

func (a *app) version(_ context.Context, _ []string) error {
	tmpl := `Build version: %s
Build date: %s
Build commit: %s
`
	fmt.Fprintf(a.out, tmpl, buildVersion, buildDate, buildCommit)
	return nil
}

func (a *app) writePage(listings []model.Listing, page int) {
	items, total := search.Page(listings, page, a.pageSize)
	writeListings(a.out, items)
	if total > 0 {
		fmt.Fprintf(a.out, "Page %d of %d (%d listings)\n", page, total, len(listings))
	}
}

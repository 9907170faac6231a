// Package refdata holds the static facility reference data: location
// coordinates and planned leg durations. Location names are
// canonicalized once at load; every runtime lookup is fallible rather
// than an unchecked map index.
package refdata

import (
	"errors"
	"fmt"
	"time"

	"supplytrack/geo"
)

var (
	ErrUnknownLocation = errors.New("refdata: unknown location")
	ErrUnknownLeg      = errors.New("refdata: unknown leg")
)

// LocationSpec is the yaml-loadable definition of one location.
type LocationSpec struct {
	Name    string             `yaml:"name"`
	Lat     float64            `yaml:"latitude"`
	Lon     float64            `yaml:"longitude"`
	Aliases []string           `yaml:"aliases,omitempty"`
	Legs    map[string]float64 `yaml:"legs,omitempty"` // destination -> planned seconds
}

type legKey struct {
	from, to string
}

// Table is the read-only reference data set. Build it once with New;
// lookups are safe for concurrent use afterwards.
type Table struct {
	coords    map[string]geo.Coord
	durations map[legKey]float64
	aliases   map[string]string
	names     []string
}

// New builds a Table from location specs. Aliases and leg destinations
// that do not resolve to a declared location are rejected here, at load
// time, so runtime lookups only ever see canonical names.
func New(specs []LocationSpec) (*Table, error) {
	t := &Table{
		coords:    make(map[string]geo.Coord, len(specs)),
		durations: make(map[legKey]float64),
		aliases:   make(map[string]string),
	}

	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("refdata: location with empty name")
		}
		if _, dup := t.coords[s.Name]; dup {
			return nil, fmt.Errorf("refdata: duplicate location %q", s.Name)
		}
		t.coords[s.Name] = geo.Coord{Lat: s.Lat, Lon: s.Lon}
		t.aliases[s.Name] = s.Name
		t.names = append(t.names, s.Name)
	}

	for _, s := range specs {
		for _, a := range s.Aliases {
			if canon, exists := t.aliases[a]; exists && canon != s.Name {
				return nil, fmt.Errorf("refdata: alias %q claimed by both %q and %q", a, canon, s.Name)
			}
			t.aliases[a] = s.Name
		}
	}

	for _, s := range specs {
		for dest, secs := range s.Legs {
			canon, ok := t.aliases[dest]
			if !ok {
				return nil, fmt.Errorf("refdata: leg %s -> %s references undeclared location", s.Name, dest)
			}
			t.durations[legKey{s.Name, canon}] = secs
		}
	}

	return t, nil
}

// Resolve maps a raw location name (possibly an alias) to its canonical
// name.
func (t *Table) Resolve(name string) (string, error) {
	canon, ok := t.aliases[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLocation, name)
	}
	return canon, nil
}

// Coord returns the coordinates of a location.
func (t *Table) Coord(name string) (geo.Coord, error) {
	canon, err := t.Resolve(name)
	if err != nil {
		return geo.Coord{}, err
	}
	return t.coords[canon], nil
}

// LegDuration returns the planned travel time between two locations.
// Same-location legs always have zero duration.
func (t *Table) LegDuration(from, to string) (time.Duration, error) {
	cf, err := t.Resolve(from)
	if err != nil {
		return 0, err
	}
	ct, err := t.Resolve(to)
	if err != nil {
		return 0, err
	}
	if cf == ct {
		return 0, nil
	}
	secs, ok := t.durations[legKey{cf, ct}]
	if !ok {
		return 0, fmt.Errorf("%w: %s -> %s", ErrUnknownLeg, cf, ct)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// Names returns the canonical location names in declaration order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Defaults returns the built-in facility layout. The historic telemetry
// feed used underscore and space spellings interchangeably for two
// locations, so those survive as aliases.
func Defaults() []LocationSpec {
	return []LocationSpec{
		{
			Name: "Robot_Lab", Lat: 52.209222464816634, Lon: 0.08702698588458352,
			Aliases: []string{"Robot_lab"},
			Legs:    map[string]float64{"3D_Printing": 200, "Design_Studio": 100, "Manual_Assembly": 200, "Supplier": 180},
		},
		{
			Name: "3D_Printing", Lat: 52.20963378973377, Lon: 0.0876479255503501,
			Legs: map[string]float64{"Robot_Lab": 200, "Design_Studio": 200, "Manual_Assembly": 200, "Supplier": 200},
		},
		{
			Name: "Design_Studio", Lat: 52.20925064994319, Lon: 0.08727564922295765,
			Aliases: []string{"Design Studio"},
			Legs:    map[string]float64{"3D_Printing": 200, "Robot_Lab": 100, "Manual_Assembly": 50, "Supplier": 180},
		},
		{
			Name: "Manual_Assembly", Lat: 52.20925064994319, Lon: 0.08727564922295765,
			Aliases: []string{"Manual Assembly"},
			Legs:    map[string]float64{"Design_Studio": 50, "3D_Printing": 200, "Robot_Lab": 100, "Supplier": 180},
		},
		{
			Name: "Supplier", Lat: 52.209504315277606, Lon: 0.08767811011743598,
			Legs: map[string]float64{"Design_Studio": 180, "3D_Printing": 200, "Robot_Lab": 180, "Manual_Assembly": 180},
		},
	}
}

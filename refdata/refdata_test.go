package refdata

import (
	"errors"
	"testing"
	"time"
)

func defaultTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := New(Defaults())
	if err != nil {
		t.Fatalf("New(Defaults()): %v", err)
	}
	return tbl
}

func TestDefaultsLoad(t *testing.T) {
	tbl := defaultTable(t)
	want := []string{"Robot_Lab", "3D_Printing", "Design_Studio", "Manual_Assembly", "Supplier"}
	got := tbl.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolveAlias(t *testing.T) {
	tbl := defaultTable(t)
	cases := []struct{ in, want string }{
		{"Robot_Lab", "Robot_Lab"},
		{"Robot_lab", "Robot_Lab"},
		{"Design Studio", "Design_Studio"},
		{"Manual Assembly", "Manual_Assembly"},
	}
	for _, c := range cases {
		got, err := tbl.Resolve(c.in)
		if err != nil {
			t.Errorf("Resolve(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("Resolve(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestUnknownLocation(t *testing.T) {
	tbl := defaultTable(t)
	if _, err := tbl.Coord("Loading_Dock"); !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("Coord(unknown) err = %v, want ErrUnknownLocation", err)
	}
	if _, err := tbl.LegDuration("Supplier", "Loading_Dock"); !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("LegDuration(_, unknown) err = %v, want ErrUnknownLocation", err)
	}
}

func TestLegDuration(t *testing.T) {
	tbl := defaultTable(t)

	d, err := tbl.LegDuration("Supplier", "Robot_Lab")
	if err != nil {
		t.Fatalf("LegDuration: %v", err)
	}
	if d != 180*time.Second {
		t.Errorf("Supplier -> Robot_Lab = %v, want 180s", d)
	}

	// Alias spellings resolve to the same leg.
	d, err = tbl.LegDuration("Supplier", "Robot_lab")
	if err != nil {
		t.Fatalf("LegDuration via alias: %v", err)
	}
	if d != 180*time.Second {
		t.Errorf("alias leg = %v, want 180s", d)
	}
}

func TestSelfLegIsZero(t *testing.T) {
	tbl := defaultTable(t)
	d, err := tbl.LegDuration("Supplier", "Supplier")
	if err != nil {
		t.Fatalf("LegDuration self: %v", err)
	}
	if d != 0 {
		t.Errorf("self leg = %v, want 0", d)
	}
}

func TestNewRejectsBadSpecs(t *testing.T) {
	cases := []struct {
		name  string
		specs []LocationSpec
	}{
		{"duplicate location", []LocationSpec{{Name: "A"}, {Name: "A"}}},
		{"empty name", []LocationSpec{{Name: ""}}},
		{"conflicting alias", []LocationSpec{
			{Name: "A", Aliases: []string{"X"}},
			{Name: "B", Aliases: []string{"X"}},
		}},
		{"dangling leg", []LocationSpec{
			{Name: "A", Legs: map[string]float64{"Nowhere": 10}},
		}},
	}
	for _, c := range cases {
		if _, err := New(c.specs); err == nil {
			t.Errorf("%s: New() succeeded, want error", c.name)
		}
	}
}

package vehicle

import (
	"strings"
	"testing"
)

func TestNew_Valid(t *testing.T) {
	v, err := New("veh-1", 2019, "Toyota", "Tacoma")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ID() != "veh-1" || v.Year() != 2019 || v.Make() != "Toyota" || v.Model() != "Tacoma" {
		t.Errorf("unexpected vehicle: %+v", v)
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		year           int
		makeName, mdl  string
	}{
		{"empty id", "", 2019, "Toyota", "Tacoma"},
		{"year too old", "veh-1", 1850, "Toyota", "Tacoma"},
		{"year too new", "veh-1", 2093, "Toyota", "Tacoma"},
		{"empty make", "veh-1", 2019, "", "Tacoma"},
		{"empty model", "veh-1", 2019, "Toyota", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.id, tc.year, tc.makeName, tc.mdl); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNew_ZeroYearAllowed(t *testing.T) {
	if _, err := New("veh-1", 0, "Toyota", "Tacoma"); err != nil {
		t.Fatalf("unexpected error for unknown year: %v", err)
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		v    Vehicle
		want string
	}{
		{
			"full",
			Reconstruct("v1", 2019, "Toyota", "Tacoma", "TRD Off-Road", "Truck", "Gasoline", 34000, 41000, ""),
			"2019 Toyota Tacoma TRD Off-Road (Truck)",
		},
		{
			"no trim no type",
			Reconstruct("v2", 2021, "Tesla", "Model 3", "", "", "Electric", 38000, 12000, ""),
			"2021 Tesla Model 3",
		},
		{
			"no year",
			Reconstruct("v3", 0, "Honda", "Civic", "", "Sedan", "", 9000, 150000, ""),
			"Honda Civic (Sedan)",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.Summary(); got != tc.want {
				t.Errorf("Summary() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDocument_TruncatesDescription(t *testing.T) {
	long := strings.Repeat("a", 500)
	v := Reconstruct("v1", 2019, "Toyota", "Tacoma", "", "Truck", "", 34000, 41000, long)

	doc := v.Document(300)
	wantPrefix := "2019 Toyota Tacoma (Truck). "
	if !strings.HasPrefix(doc, wantPrefix) {
		t.Fatalf("unexpected document prefix: %q", doc[:40])
	}
	if got := len(doc) - len(wantPrefix); got != 300 {
		t.Errorf("expected 300 description chars, got %d", got)
	}
}

func TestDocument_NoDescription(t *testing.T) {
	v := Reconstruct("v1", 2019, "Toyota", "Tacoma", "", "Truck", "", 34000, 41000, "   ")
	if got := v.Document(300); got != "2019 Toyota Tacoma (Truck)" {
		t.Errorf("unexpected document: %q", got)
	}
}

func TestDocument_UnlimitedDescription(t *testing.T) {
	long := strings.Repeat("b", 400)
	v := Reconstruct("v1", 2019, "Toyota", "Tacoma", "", "", "", 0, 0, long)
	if got := v.Document(0); !strings.HasSuffix(got, long) {
		t.Error("expected full description when maxDescription <= 0")
	}
}

func TestWithDetails(t *testing.T) {
	base, err := New("veh-9", 2022, "Ford", "F-150")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	full := base.WithDetails("Lariat", "Truck", "Gasoline", 52000, 18000, "One owner.")
	if full.Trim() != "Lariat" || full.VehicleType() != "Truck" || full.Price() != 52000 {
		t.Errorf("unexpected details: %+v", full)
	}
	// base stays untouched
	if base.Trim() != "" || base.Price() != 0 {
		t.Error("WithDetails must not mutate the receiver")
	}
}

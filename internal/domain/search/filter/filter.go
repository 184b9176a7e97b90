// Package filter defines the typed, whitelisted vehicle search filters.
// Raw filter maps (caller-supplied or LLM-extracted) pass through a single
// validation gate, so malformed values are dropped before they can reach
// query construction.
package filter

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Whitelisted filter field names.
const (
	FieldMake        = "make"
	FieldModel       = "model"
	FieldVehicleType = "vehicle_type"
	FieldFuelType    = "fuel_type"
	FieldYearMin     = "year_min"
	FieldYearMax     = "year_max"
	FieldPriceMin    = "price_min"
	FieldPriceMax    = "price_max"
	FieldMileageMax  = "mileage_max"
)

// Bounds enforced by the validation gate.
const (
	MaxStringLen = 64
	MinYear      = 1900
	MaxYear      = 2030
)

// canonicalTypes maps lowercased body types to their canonical spelling.
var canonicalTypes = map[string]string{
	"truck": "Truck", "suv": "SUV", "sedan": "Sedan", "coupe": "Coupe",
	"hatchback": "Hatchback", "wagon": "Wagon", "van": "Van",
	"minivan": "Minivan", "convertible": "Convertible",
}

// Filters is an immutable, validated set of structured vehicle predicates.
// Unset fields are nil and contribute nothing to a query.
type Filters struct {
	make        *string
	model       *string
	vehicleType *string
	fuelType    *string
	yearMin     *int
	yearMax     *int
	priceMin    *float64
	priceMax    *float64
	mileageMax  *int
}

// FromMap builds Filters from a raw field→value map, applying the validation
// gate: unknown fields and values failing type/range checks are dropped, and
// their names returned so callers can log the loss. It never fails.
func FromMap(raw map[string]any) (Filters, []string) {
	var f Filters
	var dropped []string

	for key, val := range raw {
		if !f.setField(key, val) {
			dropped = append(dropped, key)
		}
	}
	return f, dropped
}

func (f *Filters) setField(key string, val any) bool {
	switch key {
	case FieldMake:
		return setString(&f.make, val, false)
	case FieldModel:
		return setString(&f.model, val, false)
	case FieldVehicleType:
		return setString(&f.vehicleType, val, true)
	case FieldFuelType:
		return setString(&f.fuelType, val, false)
	case FieldYearMin:
		return setYear(&f.yearMin, val)
	case FieldYearMax:
		return setYear(&f.yearMax, val)
	case FieldPriceMin:
		return setPrice(&f.priceMin, val)
	case FieldPriceMax:
		return setPrice(&f.priceMax, val)
	case FieldMileageMax:
		return setMileage(&f.mileageMax, val)
	default:
		return false
	}
}

// Merge combines two filter sets. Where both set the same field, explicit wins.
func Merge(explicit, extracted Filters) Filters {
	merged := extracted
	if explicit.make != nil {
		merged.make = explicit.make
	}
	if explicit.model != nil {
		merged.model = explicit.model
	}
	if explicit.vehicleType != nil {
		merged.vehicleType = explicit.vehicleType
	}
	if explicit.fuelType != nil {
		merged.fuelType = explicit.fuelType
	}
	if explicit.yearMin != nil {
		merged.yearMin = explicit.yearMin
	}
	if explicit.yearMax != nil {
		merged.yearMax = explicit.yearMax
	}
	if explicit.priceMin != nil {
		merged.priceMin = explicit.priceMin
	}
	if explicit.priceMax != nil {
		merged.priceMax = explicit.priceMax
	}
	if explicit.mileageMax != nil {
		merged.mileageMax = explicit.mileageMax
	}
	return merged
}

// Make returns the manufacturer filter.
func (f Filters) Make() (string, bool) { return deref(f.make) }

// Model returns the model filter.
func (f Filters) Model() (string, bool) { return deref(f.model) }

// VehicleType returns the body type filter.
func (f Filters) VehicleType() (string, bool) { return deref(f.vehicleType) }

// FuelType returns the fuel type filter.
func (f Filters) FuelType() (string, bool) { return deref(f.fuelType) }

// YearMin returns the inclusive lower model-year bound.
func (f Filters) YearMin() (int, bool) { return deref(f.yearMin) }

// YearMax returns the inclusive upper model-year bound.
func (f Filters) YearMax() (int, bool) { return deref(f.yearMax) }

// PriceMin returns the inclusive lower price bound.
func (f Filters) PriceMin() (float64, bool) { return deref(f.priceMin) }

// PriceMax returns the inclusive upper price bound.
func (f Filters) PriceMax() (float64, bool) { return deref(f.priceMax) }

// MileageMax returns the inclusive upper mileage bound.
func (f Filters) MileageMax() (int, bool) { return deref(f.mileageMax) }

// IsZero reports whether no filter field is set.
func (f Filters) IsZero() bool {
	return f.make == nil && f.model == nil && f.vehicleType == nil && f.fuelType == nil &&
		f.yearMin == nil && f.yearMax == nil && f.priceMin == nil && f.priceMax == nil &&
		f.mileageMax == nil
}

// ToMap returns the set fields under their canonical names.
func (f Filters) ToMap() map[string]any {
	m := make(map[string]any)
	if f.make != nil {
		m[FieldMake] = *f.make
	}
	if f.model != nil {
		m[FieldModel] = *f.model
	}
	if f.vehicleType != nil {
		m[FieldVehicleType] = *f.vehicleType
	}
	if f.fuelType != nil {
		m[FieldFuelType] = *f.fuelType
	}
	if f.yearMin != nil {
		m[FieldYearMin] = *f.yearMin
	}
	if f.yearMax != nil {
		m[FieldYearMax] = *f.yearMax
	}
	if f.priceMin != nil {
		m[FieldPriceMin] = *f.priceMin
	}
	if f.priceMax != nil {
		m[FieldPriceMax] = *f.priceMax
	}
	if f.mileageMax != nil {
		m[FieldMileageMax] = *f.mileageMax
	}
	return m
}

// canonical mirrors Filters with a fixed field order for cache-key hashing.
type canonical struct {
	Make        *string  `json:"make,omitempty"`
	Model       *string  `json:"model,omitempty"`
	VehicleType *string  `json:"vehicle_type,omitempty"`
	FuelType    *string  `json:"fuel_type,omitempty"`
	YearMin     *int     `json:"year_min,omitempty"`
	YearMax     *int     `json:"year_max,omitempty"`
	PriceMin    *float64 `json:"price_min,omitempty"`
	PriceMax    *float64 `json:"price_max,omitempty"`
	MileageMax  *int     `json:"mileage_max,omitempty"`
}

// CanonicalJSON renders the filters deterministically for cache keys:
// fixed field order, unset fields omitted.
func (f Filters) CanonicalJSON() string {
	b, err := json.Marshal(canonical{
		Make: f.make, Model: f.model, VehicleType: f.vehicleType, FuelType: f.fuelType,
		YearMin: f.yearMin, YearMax: f.yearMax,
		PriceMin: f.priceMin, PriceMax: f.priceMax, MileageMax: f.mileageMax,
	})
	if err != nil {
		return "{}"
	}
	return string(b)
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

func setString(dst **string, val any, canonicalize bool) bool {
	s, ok := val.(string)
	if !ok {
		return false
	}
	s = strings.TrimSpace(s)
	if s == "" || len(s) > MaxStringLen {
		return false
	}
	if canonicalize {
		if c, known := canonicalTypes[strings.ToLower(s)]; known {
			s = c
		}
	}
	*dst = &s
	return true
}

func setYear(dst **int, val any) bool {
	n, ok := toNumber(val)
	if !ok || n != math.Trunc(n) {
		return false
	}
	y := int(n)
	if y < MinYear || y > MaxYear {
		return false
	}
	*dst = &y
	return true
}

func setPrice(dst **float64, val any) bool {
	n, ok := toNumber(val)
	if !ok || n < 0 {
		return false
	}
	*dst = &n
	return true
}

func setMileage(dst **int, val any) bool {
	n, ok := toNumber(val)
	if !ok || n < 0 || n != math.Trunc(n) {
		return false
	}
	m := int(n)
	*dst = &m
	return true
}

// toNumber coerces JSON-decoded values to float64. LLM responses sometimes
// quote numbers, so numeric strings are accepted too.
func toNumber(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

package vehicle

import "github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/filter"

// predicate is a single parameterized WHERE condition. Expressions are
// compile-time constants from the whitelist below; values are always bound.
type predicate struct {
	expr string
	arg  any
}

// predicates converts validated filters into hard SQL predicates.
// String matches are case-insensitive exact comparisons, so bound values
// can never act as pattern metacharacters.
func predicates(f filter.Filters) []predicate {
	var ps []predicate

	if v, ok := f.Make(); ok {
		ps = append(ps, predicate{"lower(make) = lower(?)", v})
	}
	if v, ok := f.Model(); ok {
		ps = append(ps, predicate{"lower(model) = lower(?)", v})
	}
	if v, ok := f.VehicleType(); ok {
		ps = append(ps, predicate{"vehicle_type = ?", v})
	}
	if v, ok := f.FuelType(); ok {
		ps = append(ps, predicate{"lower(fuel_type) = lower(?)", v})
	}
	if v, ok := f.YearMin(); ok {
		ps = append(ps, predicate{"year >= ?", v})
	}
	if v, ok := f.YearMax(); ok {
		ps = append(ps, predicate{"year <= ?", v})
	}
	if v, ok := f.PriceMin(); ok {
		ps = append(ps, predicate{"price >= ?", v})
	}
	if v, ok := f.PriceMax(); ok {
		ps = append(ps, predicate{"price <= ?", v})
	}
	if v, ok := f.MileageMax(); ok {
		ps = append(ps, predicate{"mileage <= ?", v})
	}

	return ps
}

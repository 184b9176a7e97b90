package chi

import (
	"fmt"
	"net/url"

	"github.com/oapi-codegen/runtime"
)

// searchParams are the GET /v1/search query parameters. Optional parameters
// stay nil when absent so defaults and filter assembly can tell "not sent"
// from a zero value.
type searchParams struct {
	Query       string
	Limit       *int
	Offset      *int
	Expand      *bool
	Rerank      *bool
	Contextual  *bool
	Make        *string
	Model       *string
	VehicleType *string
	FuelType    *string
	YearMin     *int
	YearMax     *int
	PriceMin    *float64
	PriceMax    *float64
	MileageMax  *int
}

// bindSearchParams decodes query parameters using the oapi-codegen binding
// rules (form style, exploded).
func bindSearchParams(q url.Values) (searchParams, error) {
	var p searchParams

	if err := runtime.BindQueryParameter("form", true, true, "q", q, &p.Query); err != nil {
		return p, fmt.Errorf("parameter q: %w", err)
	}

	optional := []struct {
		name string
		dest any
	}{
		{"limit", &p.Limit},
		{"offset", &p.Offset},
		{"expand", &p.Expand},
		{"rerank", &p.Rerank},
		{"contextual", &p.Contextual},
		{"make", &p.Make},
		{"model", &p.Model},
		{"vehicle_type", &p.VehicleType},
		{"fuel_type", &p.FuelType},
		{"year_min", &p.YearMin},
		{"year_max", &p.YearMax},
		{"price_min", &p.PriceMin},
		{"price_max", &p.PriceMax},
		{"mileage_max", &p.MileageMax},
	}
	for _, b := range optional {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return p, fmt.Errorf("parameter %s: %w", b.name, err)
		}
	}

	return p, nil
}

// bindSimilarLimit decodes the optional limit parameter for the
// similar-vehicles endpoint. Returns 0 when absent so request defaults apply.
func bindSimilarLimit(q url.Values) (int, error) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		return 0, fmt.Errorf("parameter limit: %w", err)
	}
	if limit == nil {
		return 0, nil
	}
	return *limit, nil
}

// toRequestDTO reshapes bound query parameters into the POST body form so
// both entry points share one validation path.
func (p searchParams) toRequestDTO() searchRequestDTO {
	dto := searchRequestDTO{
		Query:               p.Query,
		ExpandQuery:         p.Expand,
		Rerank:              p.Rerank,
		ContextualEmbedding: p.Contextual,
	}
	if p.Limit != nil {
		dto.Limit = *p.Limit
	}
	if p.Offset != nil {
		dto.Offset = *p.Offset
	}

	filters := make(map[string]any)
	if p.Make != nil {
		filters["make"] = *p.Make
	}
	if p.Model != nil {
		filters["model"] = *p.Model
	}
	if p.VehicleType != nil {
		filters["vehicle_type"] = *p.VehicleType
	}
	if p.FuelType != nil {
		filters["fuel_type"] = *p.FuelType
	}
	if p.YearMin != nil {
		filters["year_min"] = *p.YearMin
	}
	if p.YearMax != nil {
		filters["year_max"] = *p.YearMax
	}
	if p.PriceMin != nil {
		filters["price_min"] = *p.PriceMin
	}
	if p.PriceMax != nil {
		filters["price_max"] = *p.PriceMax
	}
	if p.MileageMax != nil {
		filters["mileage_max"] = *p.MileageMax
	}
	if len(filters) > 0 {
		dto.Filters = filters
	}

	return dto
}

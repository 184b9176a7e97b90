// Package vehicle defines the denormalized vehicle listing record carried
// through the search pipeline.
package vehicle

import (
	"fmt"
	"strings"
)

// Year bounds for listing data. Anything outside is a data error.
const (
	MinYear = 1900
	MaxYear = 2030
)

// Vehicle is an immutable marketplace listing projection: the attributes
// needed for display and for building re-ranking text, nothing more.
type Vehicle struct {
	id          string
	year        int
	make        string
	model       string
	trim        string
	vehicleType string
	fuelType    string
	price       float64
	mileage     int
	description string
}

// New validates and creates a Vehicle.
func New(id string, year int, makeName, model string) (Vehicle, error) {
	if id == "" {
		return Vehicle{}, fmt.Errorf("vehicle ID is required")
	}
	if year != 0 && (year < MinYear || year > MaxYear) {
		return Vehicle{}, fmt.Errorf("vehicle year %d out of range [%d, %d]", year, MinYear, MaxYear)
	}
	if makeName == "" {
		return Vehicle{}, fmt.Errorf("vehicle make is required")
	}
	if model == "" {
		return Vehicle{}, fmt.Errorf("vehicle model is required")
	}

	return Vehicle{id: id, year: year, make: makeName, model: model}, nil
}

// Reconstruct creates a Vehicle without validation (storage hydration).
func Reconstruct(
	id string, year int, makeName, model, trim, vehicleType, fuelType string,
	price float64, mileage int, description string,
) Vehicle {
	return Vehicle{
		id: id, year: year, make: makeName, model: model, trim: trim,
		vehicleType: vehicleType, fuelType: fuelType,
		price: price, mileage: mileage, description: description,
	}
}

// ID returns the listing identifier.
func (v *Vehicle) ID() string { return v.id }

// Year returns the model year (0 if unknown).
func (v *Vehicle) Year() int { return v.year }

// Make returns the manufacturer name.
func (v *Vehicle) Make() string { return v.make }

// Model returns the model name.
func (v *Vehicle) Model() string { return v.model }

// Trim returns the trim level (may be empty).
func (v *Vehicle) Trim() string { return v.trim }

// VehicleType returns the body type, e.g. "Truck", "SUV", "Sedan".
func (v *Vehicle) VehicleType() string { return v.vehicleType }

// FuelType returns the fuel type, e.g. "Gasoline", "Electric".
func (v *Vehicle) FuelType() string { return v.fuelType }

// Price returns the asking price (0 if unknown).
func (v *Vehicle) Price() float64 { return v.price }

// Mileage returns the odometer reading (0 if unknown).
func (v *Vehicle) Mileage() int { return v.mileage }

// Description returns the free-text listing description.
func (v *Vehicle) Description() string { return v.description }

// WithDetails returns a copy with the optional listing attributes set.
func (v *Vehicle) WithDetails(trim, vehicleType, fuelType string, price float64, mileage int, description string) Vehicle {
	return Vehicle{
		id: v.id, year: v.year, make: v.make, model: v.model, trim: trim,
		vehicleType: vehicleType, fuelType: fuelType,
		price: price, mileage: mileage, description: description,
	}
}

// Summary renders the one-line listing headline: "2019 Toyota Tacoma TRD (Truck)".
// Empty attributes are skipped.
func (v *Vehicle) Summary() string {
	var b strings.Builder
	if v.year > 0 {
		fmt.Fprintf(&b, "%d ", v.year)
	}
	b.WriteString(v.make)
	if v.model != "" {
		b.WriteString(" " + v.model)
	}
	if v.trim != "" {
		b.WriteString(" " + v.trim)
	}
	if v.vehicleType != "" {
		b.WriteString(" (" + v.vehicleType + ")")
	}
	return strings.TrimSpace(b.String())
}

// Document renders the text fed to the embedder and the cross-encoder:
// the summary plus the description truncated to maxDescription characters.
// maxDescription <= 0 keeps the full description.
func (v *Vehicle) Document(maxDescription int) string {
	desc := strings.TrimSpace(v.description)
	if maxDescription > 0 && len(desc) > maxDescription {
		desc = desc[:maxDescription]
	}
	if desc == "" {
		return v.Summary()
	}
	return v.Summary() + ". " + desc
}

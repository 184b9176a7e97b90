package vehicle

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/vehicle"
)

// searchRow is the scan target for search queries. Score columns are filled
// depending on the query: single-signal searches set score, the fused
// function sets vector_score/keyword_score/hybrid_score.
type searchRow struct {
	ID           string  `gorm:"column:id"`
	Year         int     `gorm:"column:year"`
	Make         string  `gorm:"column:make"`
	Model        string  `gorm:"column:model"`
	Trim         string  `gorm:"column:trim"`
	VehicleType  string  `gorm:"column:vehicle_type"`
	FuelType     string  `gorm:"column:fuel_type"`
	Price        float64 `gorm:"column:price"`
	Mileage      int     `gorm:"column:mileage"`
	Description  string  `gorm:"column:description"`
	Score        float64 `gorm:"column:score"`
	VectorScore  float64 `gorm:"column:vector_score"`
	KeywordScore float64 `gorm:"column:keyword_score"`
	HybridScore  float64 `gorm:"column:hybrid_score"`
}

func (r *searchRow) toDomain() vehicle.Vehicle {
	return vehicle.Reconstruct(
		r.ID, r.Year, r.Make, r.Model, r.Trim, r.VehicleType, r.FuelType,
		r.Price, r.Mileage, r.Description,
	)
}

// listingRow is the gorm model for inserts into the vehicles table.
// The embedding travels as a pgvector text literal.
type listingRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Year        int       `gorm:"column:year"`
	Make        string    `gorm:"column:make"`
	Model       string    `gorm:"column:model"`
	Trim        string    `gorm:"column:trim"`
	VehicleType string    `gorm:"column:vehicle_type"`
	FuelType    string    `gorm:"column:fuel_type"`
	Price       float64   `gorm:"column:price"`
	Mileage     int       `gorm:"column:mileage"`
	Description string    `gorm:"column:description"`
	Embedding   *string   `gorm:"column:embedding"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (listingRow) TableName() string { return "vehicles" }

func toListingRow(l Listing) listingRow {
	row := listingRow{
		ID:          l.Vehicle.ID(),
		Year:        l.Vehicle.Year(),
		Make:        l.Vehicle.Make(),
		Model:       l.Vehicle.Model(),
		Trim:        l.Vehicle.Trim(),
		VehicleType: l.Vehicle.VehicleType(),
		FuelType:    l.Vehicle.FuelType(),
		Price:       l.Vehicle.Price(),
		Mileage:     l.Vehicle.Mileage(),
		Description: l.Vehicle.Description(),
		UpdatedAt:   time.Now().UTC(),
	}
	if len(l.Embedding) > 0 {
		lit := vectorLiteral(l.Embedding)
		row.Embedding = &lit
	}
	return row
}

// vectorLiteral renders a float32 slice as a pgvector text literal: "[1,2,3]".
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// parseVector parses a pgvector text literal back into a float32 slice.
func parseVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("invalid vector literal %q", truncateForError(s))
	}
	body := s[1 : len(s)-1]
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}

	parts := strings.Split(body, ",")
	vec := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector element %d: %w", i, err)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}

func truncateForError(s string) string {
	if len(s) > 32 {
		return s[:32] + "..."
	}
	return s
}

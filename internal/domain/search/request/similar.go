package request

import "fmt"

// SimilarRequest is a validated "more like this vehicle" query.
type SimilarRequest struct {
	vehicleID string
	limit     int
}

// NewSimilar validates and normalizes similar-search parameters.
func NewSimilar(vehicleID string, limit int) (SimilarRequest, error) {
	if vehicleID == "" {
		return SimilarRequest{}, fmt.Errorf("vehicle id is required")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return SimilarRequest{vehicleID: vehicleID, limit: limit}, nil
}

// VehicleID returns the seed listing identifier.
func (r *SimilarRequest) VehicleID() string { return r.vehicleID }

// Limit returns the maximum results to return.
func (r *SimilarRequest) Limit() int { return r.limit }

package vehicle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/filter"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/search/result"
	"github.com/JB5579/Otto-Match-V2-sub003/internal/domain/vehicle"
)

// MaxLimit is the hard per-query row bound, independent of caller limits.
const MaxLimit = 500

// Repo is the Postgres vehicle repository: listings, pgvector similarity,
// full-text keyword search, and the server-side fused search function.
type Repo struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New creates a vehicle repository.
func New(db *gorm.DB, logger *zap.Logger) *Repo {
	return &Repo{db: db, logger: logger}
}

// Open connects to Postgres and configures the connection pool.
func Open(dsn string, maxConns int, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	if maxConns <= 0 {
		maxConns = 10
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Info("Connected to postgres", zap.Int("max_conns", maxConns))
	return db, nil
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

const fusedSQL = `SELECT * FROM hybrid_search_vehicles(?::vector, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SearchFused runs the hybrid_search_vehicles function: vector similarity,
// keyword rank, and filter matching are scored and fused inside Postgres,
// so only the final page crosses the wire.
func (r *Repo) SearchFused(
	ctx context.Context, embedding []float32, query string, filters filter.Filters,
	k int, vectorWeight, keywordWeight, filterWeight float64, limit int,
) ([]result.Hybrid, error) {
	limit = clampLimit(limit)

	args := []any{
		vectorLiteral(embedding),
		query,
		nullable(filters.Make()),
		nullable(filters.Model()),
		nullable(filters.VehicleType()),
		nullable(filters.FuelType()),
		nullable(filters.YearMin()),
		nullable(filters.YearMax()),
		nullable(filters.PriceMin()),
		nullable(filters.PriceMax()),
		nullable(filters.MileageMax()),
		k,
		vectorWeight,
		keywordWeight,
		filterWeight,
		limit,
	}

	var rows []searchRow
	if err := r.db.WithContext(ctx).Raw(fusedSQL, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("fused search: %w", err)
	}

	out := make([]result.Hybrid, len(rows))
	for i := range rows {
		out[i] = result.NewHybrid(rows[i].toDomain(), rows[i].HybridScore, rows[i].VectorScore, rows[i].KeywordScore)
	}
	return out, nil
}

// SearchVector returns the nearest listings by cosine similarity, ordered
// best-first. Single-signal result: the fused score equals the vector score.
func (r *Repo) SearchVector(
	ctx context.Context, embedding []float32, filters filter.Filters, limit int, excludeID string,
) ([]result.Hybrid, error) {
	limit = clampLimit(limit)
	vec := vectorLiteral(embedding)

	var sb strings.Builder
	sb.WriteString(`SELECT id, year, make, model, trim, vehicle_type, fuel_type, price, mileage, description,
1 - (embedding <=> ?::vector) AS score
FROM vehicles
WHERE embedding IS NOT NULL`)
	args := []any{vec}

	for _, pr := range predicates(filters) {
		sb.WriteString(" AND ")
		sb.WriteString(pr.expr)
		args = append(args, pr.arg)
	}
	if excludeID != "" {
		sb.WriteString(" AND id <> ?")
		args = append(args, excludeID)
	}

	sb.WriteString(" ORDER BY embedding <=> ?::vector LIMIT ?")
	args = append(args, vec, limit)

	var rows []searchRow
	if err := r.db.WithContext(ctx).Raw(sb.String(), args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	out := make([]result.Hybrid, len(rows))
	for i := range rows {
		out[i] = result.NewHybrid(rows[i].toDomain(), rows[i].Score, rows[i].Score, 0)
	}
	return out, nil
}

// SearchKeyword returns full-text matches ranked by ts_rank, best-first.
// Single-signal result: the fused score equals the keyword score.
func (r *Repo) SearchKeyword(
	ctx context.Context, query string, filters filter.Filters, limit int,
) ([]result.Hybrid, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	limit = clampLimit(limit)

	var sb strings.Builder
	sb.WriteString(`SELECT id, year, make, model, trim, vehicle_type, fuel_type, price, mileage, description,
ts_rank(search_tsv, plainto_tsquery('english', ?)) AS score
FROM vehicles
WHERE search_tsv @@ plainto_tsquery('english', ?)`)
	args := []any{query, query}

	for _, pr := range predicates(filters) {
		sb.WriteString(" AND ")
		sb.WriteString(pr.expr)
		args = append(args, pr.arg)
	}

	sb.WriteString(" ORDER BY score DESC, id LIMIT ?")
	args = append(args, limit)

	var rows []searchRow
	if err := r.db.WithContext(ctx).Raw(sb.String(), args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	out := make([]result.Hybrid, len(rows))
	for i := range rows {
		out[i] = result.NewHybrid(rows[i].toDomain(), rows[i].Score, 0, rows[i].Score)
	}
	return out, nil
}

// GetByID returns a single listing or domain.ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, id string) (vehicle.Vehicle, error) {
	var row searchRow
	err := r.db.WithContext(ctx).
		Table("vehicles").
		Select("id, year, make, model, trim, vehicle_type, fuel_type, price, mileage, description").
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return vehicle.Vehicle{}, fmt.Errorf("vehicle %s: %w", id, domain.ErrNotFound)
		}
		return vehicle.Vehicle{}, fmt.Errorf("get vehicle %s: %w", id, err)
	}
	return row.toDomain(), nil
}

// Embedding returns the stored embedding for a listing, nil when the listing
// exists without one, or domain.ErrNotFound when there is no such listing.
func (r *Repo) Embedding(ctx context.Context, id string) ([]float32, error) {
	var rows []struct {
		Embedding *string `gorm:"column:embedding"`
	}
	err := r.db.WithContext(ctx).
		Raw(`SELECT embedding::text AS embedding FROM vehicles WHERE id = ?`, id).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get embedding %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("vehicle %s: %w", id, domain.ErrNotFound)
	}
	if rows[0].Embedding == nil {
		return nil, nil
	}

	vec, err := parseVector(*rows[0].Embedding)
	if err != nil {
		return nil, fmt.Errorf("parse embedding %s: %w", id, err)
	}
	return vec, nil
}

// Listing pairs a vehicle with its document embedding for ingestion.
type Listing struct {
	Vehicle   vehicle.Vehicle
	Embedding []float32
}

// InsertBatch upserts listings in batches. Re-running ingestion with the
// same ids refreshes attributes and embeddings instead of failing.
func (r *Repo) InsertBatch(ctx context.Context, items []Listing, batchSize int) error {
	if len(items) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	rows := make([]listingRow, len(items))
	for i, item := range items {
		rows[i] = toListingRow(item)
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"year", "make", "model", "trim", "vehicle_type", "fuel_type",
			"price", "mileage", "description", "embedding", "updated_at",
		}),
	}).CreateInBatches(rows, batchSize).Error
	if err != nil {
		return fmt.Errorf("insert vehicles: %w", err)
	}
	return nil
}

// Count returns the number of stored listings.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Table("vehicles").Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count vehicles: %w", err)
	}
	return n, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// nullable converts a (value, ok) accessor pair into a bindable argument:
// nil for unset fields so SQL sees NULL.
func nullable[T any](v T, ok bool) any {
	if !ok {
		return nil
	}
	return v
}

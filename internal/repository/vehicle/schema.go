package vehicle

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// EnsureSchema creates the vehicles table, its indexes, and the fused search
// function. Every statement is idempotent, so it is safe to run on startup.
// dimensions fixes the embedding column width and must match the embedding
// model in use.
func EnsureSchema(ctx context.Context, db *gorm.DB, dimensions int) error {
	for _, stmt := range schemaStatements(dimensions) {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func schemaStatements(dimensions int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS vehicles (
	id           text PRIMARY KEY,
	year         integer NOT NULL,
	make         text NOT NULL,
	model        text NOT NULL,
	"trim"       text NOT NULL DEFAULT '',
	vehicle_type text NOT NULL DEFAULT '',
	fuel_type    text NOT NULL DEFAULT '',
	price        double precision NOT NULL,
	mileage      integer NOT NULL,
	description  text NOT NULL DEFAULT '',
	embedding    vector(%d),
	updated_at   timestamptz NOT NULL DEFAULT now(),
	search_tsv   tsvector GENERATED ALWAYS AS (
		to_tsvector('english',
			coalesce(make, '') || ' ' || coalesce(model, '') || ' ' ||
			coalesce("trim", '') || ' ' || coalesce(vehicle_type, '') || ' ' ||
			coalesce(fuel_type, '') || ' ' || year::text || ' ' ||
			coalesce(description, ''))
	) STORED
)`, dimensions),

		`CREATE INDEX IF NOT EXISTS vehicles_embedding_idx
	ON vehicles USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,

		`CREATE INDEX IF NOT EXISTS vehicles_search_tsv_idx
	ON vehicles USING gin (search_tsv)`,

		`CREATE INDEX IF NOT EXISTS vehicles_make_model_idx
	ON vehicles (lower(make), lower(model))`,

		`CREATE INDEX IF NOT EXISTS vehicles_price_idx ON vehicles (price)`,

		`CREATE INDEX IF NOT EXISTS vehicles_year_idx ON vehicles (year)`,

		`DROP FUNCTION IF EXISTS hybrid_search_vehicles`,

		// Fused search: both signals are ranked over the filtered set, then
		// combined with reciprocal rank fusion. A row missing from a signal
		// contributes 0 for it. When any filter is set, every surviving row
		// gets the same filter term, w_filter / (k + 1), since filters are
		// hard predicates and every match is a rank-1 filter hit.
		// vector_score and keyword_score report the raw per-signal scores
		// (cosine similarity, ts_rank); only hybrid_score is fused.
		`CREATE FUNCTION hybrid_search_vehicles(
	p_embedding    vector,
	p_query        text,
	p_make         text,
	p_model        text,
	p_vehicle_type text,
	p_fuel_type    text,
	p_year_min     integer,
	p_year_max     integer,
	p_price_min    double precision,
	p_price_max    double precision,
	p_mileage_max  integer,
	p_k            integer,
	p_w_vector     double precision,
	p_w_keyword    double precision,
	p_w_filter     double precision,
	p_limit        integer
) RETURNS TABLE (
	id            text,
	year          integer,
	make          text,
	model         text,
	"trim"        text,
	vehicle_type  text,
	fuel_type     text,
	price         double precision,
	mileage       integer,
	description   text,
	vector_score  double precision,
	keyword_score double precision,
	hybrid_score  double precision
) LANGUAGE sql STABLE AS $$
WITH filtered AS (
	SELECT v.id
	FROM vehicles v
	WHERE (p_make IS NULL OR lower(v.make) = lower(p_make))
	  AND (p_model IS NULL OR lower(v.model) = lower(p_model))
	  AND (p_vehicle_type IS NULL OR v.vehicle_type = p_vehicle_type)
	  AND (p_fuel_type IS NULL OR lower(v.fuel_type) = lower(p_fuel_type))
	  AND (p_year_min IS NULL OR v.year >= p_year_min)
	  AND (p_year_max IS NULL OR v.year <= p_year_max)
	  AND (p_price_min IS NULL OR v.price >= p_price_min)
	  AND (p_price_max IS NULL OR v.price <= p_price_max)
	  AND (p_mileage_max IS NULL OR v.mileage <= p_mileage_max)
),
vector_ranked AS (
	SELECT v.id,
	       1 - (v.embedding <=> p_embedding) AS vscore,
	       row_number() OVER (ORDER BY v.embedding <=> p_embedding) AS rank
	FROM vehicles v
	JOIN filtered f ON f.id = v.id
	WHERE v.embedding IS NOT NULL
	ORDER BY v.embedding <=> p_embedding
	LIMIT p_limit
),
keyword_ranked AS (
	SELECT v.id,
	       ts_rank(v.search_tsv, plainto_tsquery('english', p_query)) AS kscore,
	       row_number() OVER (
	           ORDER BY ts_rank(v.search_tsv, plainto_tsquery('english', p_query)) DESC, v.id
	       ) AS rank
	FROM vehicles v
	JOIN filtered f ON f.id = v.id
	WHERE p_query <> ''
	  AND v.search_tsv @@ plainto_tsquery('english', p_query)
	ORDER BY rank
	LIMIT p_limit
),
fused AS (
	SELECT COALESCE(vr.id, kr.id) AS id,
	       COALESCE(vr.vscore, 0) AS vscore,
	       COALESCE(kr.kscore, 0) AS kscore,
	       COALESCE(p_w_vector / (p_k + vr.rank), 0)
	     + COALESCE(p_w_keyword / (p_k + kr.rank), 0)
	     + CASE WHEN num_nonnulls(p_make, p_model, p_vehicle_type, p_fuel_type,
	                              p_year_min, p_year_max, p_price_min, p_price_max,
	                              p_mileage_max) > 0
	            THEN p_w_filter / (p_k + 1)
	            ELSE 0
	       END AS score
	FROM vector_ranked vr
	FULL OUTER JOIN keyword_ranked kr ON vr.id = kr.id
)
SELECT v.id, v.year, v.make, v.model, v."trim", v.vehicle_type, v.fuel_type,
       v.price, v.mileage, v.description,
       fu.vscore, fu.kscore, fu.score
FROM fused fu
JOIN vehicles v ON v.id = fu.id
ORDER BY fu.score DESC, v.id
LIMIT p_limit
$$`,
	}
}

// internal/configstore/postgres.go
package configstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"screening-workers/internal/scoring"

	"github.com/redis/go-redis/v9"
)

const (
	activeConfigCacheKey = "scoring:config:active"
	activeConfigCacheTTL = 5 * time.Minute

	// Advisory lock key for publish serialization, scoped to score_config.
	publishLockKey = 7341001
)

// PostgresStore persists the version log in the score_config table.
// The active config is the highest published version; publishing runs in
// a single transaction under an advisory lock, so concurrent publishes
// get distinct consecutive versions and readers see either the previous
// or the new version, never an in-between state. An optional Redis client caches the
// active config and is invalidated on publish.
type PostgresStore struct {
	db    *sql.DB
	redis *redis.Client
}

func NewPostgresStore(db *sql.DB, rdb *redis.Client) *PostgresStore {
	return &PostgresStore{db: db, redis: rdb}
}

func (s *PostgresStore) Publish(ctx context.Context, cfg scoring.Config) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	weights, err := json.Marshal(cfg.Weights)
	if err != nil {
		return 0, fmt.Errorf("marshal weights: %w", err)
	}
	roleDistance, err := json.Marshal(cfg.RoleDistance)
	if err != nil {
		return 0, fmt.Errorf("marshal role distance: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin publish tx: %w", err)
	}
	defer tx.Rollback()

	// Serializes concurrent publishes so version assignment never races;
	// the lock is released at commit or rollback.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, publishLockKey); err != nil {
		return 0, fmt.Errorf("acquire publish lock: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO score_config
			(version, weights_json, must_cap_enabled, must_cap_value, nice_top_n, role_distance_json, created_at)
		SELECT COALESCE(MAX(version), 0) + 1, $1, $2, $3, $4, $5, NOW()
		FROM score_config
		RETURNING version`,
		weights, cfg.MustCapEnabled, cfg.MustCapValue, cfg.NiceTopN, roleDistance,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("insert score config: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit publish tx: %w", err)
	}

	if s.redis != nil {
		// Cache invalidation failure is not a publish failure; the entry
		// expires on its own TTL.
		s.redis.Del(ctx, activeConfigCacheKey)
	}

	return version, nil
}

func (s *PostgresStore) GetActive(ctx context.Context) (scoring.Config, error) {
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, activeConfigCacheKey).Result(); err == nil {
			var cfg scoring.Config
			if err := json.Unmarshal([]byte(val), &cfg); err == nil {
				return cfg, nil
			}
		}
	}

	cfg, err := s.scanConfig(s.db.QueryRowContext(ctx, `
		SELECT version, weights_json, must_cap_enabled, must_cap_value, nice_top_n, role_distance_json, created_at
		FROM score_config
		ORDER BY version DESC
		LIMIT 1`))
	if err != nil {
		return scoring.Config{}, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(cfg); err == nil {
			s.redis.Set(ctx, activeConfigCacheKey, data, activeConfigCacheTTL)
		}
	}

	return cfg, nil
}

func (s *PostgresStore) GetByVersion(ctx context.Context, v int) (scoring.Config, error) {
	return s.scanConfig(s.db.QueryRowContext(ctx, `
		SELECT version, weights_json, must_cap_enabled, must_cap_value, nice_top_n, role_distance_json, created_at
		FROM score_config
		WHERE version = $1`, v))
}

func (s *PostgresStore) scanConfig(row *sql.Row) (scoring.Config, error) {
	var (
		cfg          scoring.Config
		weights      []byte
		roleDistance []byte
	)

	err := row.Scan(&cfg.Version, &weights, &cfg.MustCapEnabled, &cfg.MustCapValue,
		&cfg.NiceTopN, &roleDistance, &cfg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return scoring.Config{}, ErrNotFound
	}
	if err != nil {
		return scoring.Config{}, fmt.Errorf("scan score config: %w", err)
	}

	if err := json.Unmarshal(weights, &cfg.Weights); err != nil {
		return scoring.Config{}, fmt.Errorf("unmarshal weights: %w", err)
	}
	if err := json.Unmarshal(roleDistance, &cfg.RoleDistance); err != nil {
		return scoring.Config{}, fmt.Errorf("unmarshal role distance: %w", err)
	}

	return cfg, nil
}

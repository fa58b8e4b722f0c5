// internal/scorestore/profiles.go
package scorestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"screening-workers/internal/models"
)

// Profiles loads candidate extractions and job postings, with a Redis
// read-through cache in front of Postgres for candidates.
type Profiles struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
}

func NewProfiles(db *sql.DB, rdb *redis.Client, cacheTTL time.Duration) *Profiles {
	return &Profiles{db: db, redis: rdb, cacheTTL: cacheTTL}
}

func candidateCacheKey(id string) string {
	return "candidate:profile:" + id
}

// GetCandidate returns the stored extraction for a candidate.
// Returns ErrNotFound when no extraction exists.
func (p *Profiles) GetCandidate(ctx context.Context, candidateID string) (*models.Candidate, error) {
	if p.redis != nil {
		if val, err := p.redis.Get(ctx, candidateCacheKey(candidateID)).Result(); err == nil {
			var c models.Candidate
			if err := json.Unmarshal([]byte(val), &c); err == nil {
				return &c, nil
			}
		}
	}

	row := p.db.QueryRowContext(ctx, `
		SELECT id, name, email, skills, roles, experience_years, highlights
		FROM candidates WHERE id = $1`, candidateID)

	var c models.Candidate
	var skills, roles, highlights pq.StringArray
	var expYears []byte
	err := row.Scan(&c.ID, &c.Name, &c.Email, &skills, &roles, &expYears, &highlights)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load candidate: %w", err)
	}

	c.Skills = []string(skills)
	c.Roles = []string(roles)
	c.Highlights = []string(highlights)
	if err := json.Unmarshal(expYears, &c.ExperienceYears); err != nil {
		c.ExperienceYears = map[string]*float64{}
	}

	if p.redis != nil {
		data, _ := json.Marshal(c)
		p.redis.Set(ctx, candidateCacheKey(c.ID), data, p.cacheTTL)
	}

	return &c, nil
}

// InvalidateCandidate drops the cached extraction, e.g. after a re-extraction.
func (p *Profiles) InvalidateCandidate(ctx context.Context, candidateID string) error {
	if p.redis == nil {
		return nil
	}
	return p.redis.Del(ctx, candidateCacheKey(candidateID)).Err()
}

// GetJob returns the job posting with its parsed requirements.
// Returns ErrNotFound when the job does not exist.
func (p *Profiles) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, title, must_requirements, nice_requirements, expected_years, expected_role, status
		FROM jobs WHERE id = $1`, jobID)

	var j models.Job
	var must, nice pq.StringArray
	var expectedYears sql.NullFloat64
	var expectedRole sql.NullString
	err := row.Scan(&j.ID, &j.Title, &must, &nice, &expectedYears, &expectedRole, &j.Status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}

	j.MustRequirements = []string(must)
	j.NiceRequirements = []string(nice)
	if expectedYears.Valid {
		v := expectedYears.Float64
		j.ExpectedYears = &v
	}
	if expectedRole.Valid {
		j.ExpectedRole = expectedRole.String
	}

	return &j, nil
}

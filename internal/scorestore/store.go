// Package scorestore persists computed fit scores to Postgres and mirrors
// them into Elasticsearch for shortlist queries.
package scorestore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/lib/pq"

	"screening-workers/internal/models"
)

// ErrNotFound is returned when no score exists for a candidate/job pair.
var ErrNotFound = errors.New("scorestore: score not found")

type Store struct {
	db    *sql.DB
	es    *elasticsearch.Client
	index string
}

// New creates a score store. es may be nil when indexing is disabled.
func New(db *sql.DB, es *elasticsearch.Client, index string) *Store {
	return &Store{db: db, es: es, index: index}
}

// Save upserts the score row for the candidate/job pair. A re-score of the
// same pair replaces the previous row rather than appending.
func (s *Store) Save(ctx context.Context, rec *models.ScoreRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO candidate_scores
			(candidate_id, job_id, total_fit, must_score, nice_score, year_score, role_score, must_gaps, config_version, scored_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (candidate_id, job_id) DO UPDATE SET
			total_fit = EXCLUDED.total_fit,
			must_score = EXCLUDED.must_score,
			nice_score = EXCLUDED.nice_score,
			year_score = EXCLUDED.year_score,
			role_score = EXCLUDED.role_score,
			must_gaps = EXCLUDED.must_gaps,
			config_version = EXCLUDED.config_version,
			scored_at = EXCLUDED.scored_at`,
		rec.CandidateID, rec.JobID, rec.TotalFit,
		rec.MustScore, rec.NiceScore, rec.YearScore, rec.RoleScore,
		pq.Array(rec.MustGaps), rec.ConfigVersion, rec.ScoredAt,
	)
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

// Get returns the stored score for one candidate/job pair.
func (s *Store) Get(ctx context.Context, candidateID, jobID string) (*models.ScoreRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT candidate_id, job_id, total_fit, must_score, nice_score, year_score, role_score, must_gaps, config_version, scored_at
		FROM candidate_scores
		WHERE candidate_id = $1 AND job_id = $2`,
		candidateID, jobID,
	)
	return scanScore(row)
}

// ListByJob returns all scores for a job ordered by total fit descending.
// minFit filters out scores below the threshold; limit <= 0 means no limit.
func (s *Store) ListByJob(ctx context.Context, jobID string, minFit, limit int) ([]models.ScoreRecord, error) {
	query := `
		SELECT candidate_id, job_id, total_fit, must_score, nice_score, year_score, role_score, must_gaps, config_version, scored_at
		FROM candidate_scores
		WHERE job_id = $1 AND total_fit >= $2
		ORDER BY total_fit DESC, candidate_id`
	args := []interface{}{jobID, minFit}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var out []models.ScoreRecord
	for rows.Next() {
		var rec models.ScoreRecord
		var gaps pq.StringArray
		if err := rows.Scan(
			&rec.CandidateID, &rec.JobID, &rec.TotalFit,
			&rec.MustScore, &rec.NiceScore, &rec.YearScore, &rec.RoleScore,
			&gaps, &rec.ConfigVersion, &rec.ScoredAt,
		); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}
		rec.MustGaps = []string(gaps)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ScoredCandidateIDs returns the candidate ids that currently hold a score
// for the job. Used to drive explicit re-score runs.
func (s *Store) ScoredCandidateIDs(ctx context.Context, jobID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT candidate_id FROM candidate_scores WHERE job_id = $1 ORDER BY candidate_id`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("list scored candidates: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Index writes the score document into Elasticsearch. The document id is
// candidateId:jobId so re-scores overwrite in place.
func (s *Store) Index(ctx context.Context, doc *models.ScoreDocument) error {
	if s.es == nil {
		return nil
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal score document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: doc.CandidateID + ":" + doc.JobID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, s.es)
	if err != nil {
		return fmt.Errorf("index score document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index score document: %s", res.Status())
	}
	return nil
}

func scanScore(row *sql.Row) (*models.ScoreRecord, error) {
	var rec models.ScoreRecord
	var gaps pq.StringArray
	err := row.Scan(
		&rec.CandidateID, &rec.JobID, &rec.TotalFit,
		&rec.MustScore, &rec.NiceScore, &rec.YearScore, &rec.RoleScore,
		&gaps, &rec.ConfigVersion, &rec.ScoredAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan score: %w", err)
	}
	rec.MustGaps = []string(gaps)
	return &rec, nil
}

// Timestamp formats t the way score rows store it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// internal/workers/screening/rescore-candidates/handler_test.go
package rescorecandidates

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screening-workers/internal/common/errors"
	"screening-workers/internal/common/logger"
	"screening-workers/internal/configstore"
	"screening-workers/internal/scorestore"
	"screening-workers/internal/scoring"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return db, mock
}

func setupHandler(t *testing.T, db *sql.DB) (*Handler, *configstore.MemoryStore) {
	configs := configstore.NewMemoryStore()
	profiles := scorestore.NewProfiles(db, nil, time.Minute)
	scores := scorestore.New(db, nil, "candidate-scores")
	h := NewHandler(&Config{Timeout: time.Minute, BatchSize: 100}, profiles, scores, configs, logger.NewTestLogger(t))
	return h, configs
}

func expectJobRow(mock sqlmock.Sqlmock, jobID string) {
	mock.ExpectQuery("SELECT id, title, must_requirements").
		WithArgs(jobID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "must_requirements", "nice_requirements", "expected_years", "expected_role", "status"}).
			AddRow(jobID, "Backend Engineer", "{go}", "{}", 5.0, "lead", "open"))
}

func expectCandidateRow(mock sqlmock.Sqlmock, id string) {
	mock.ExpectQuery("SELECT id, name, email, skills").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "skills", "roles", "experience_years", "highlights"}).
			AddRow(id, "Candidate "+id, id+"@example.com", "{go}", "{\"tech lead\"}", []byte(`{"go":6}`), "{}"))
}

func TestHandler_Execute_RescoresAllCandidates(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	h, configs := setupHandler(t, db)
	ctx := context.Background()
	version, err := configs.Publish(ctx, scoring.DefaultConfig())
	require.NoError(t, err)

	expectJobRow(mock, "job-1")
	mock.ExpectQuery("SELECT candidate_id FROM candidate_scores").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"candidate_id"}).
			AddRow("cand-1").
			AddRow("cand-2"))

	for _, id := range []string{"cand-1", "cand-2"} {
		expectCandidateRow(mock, id)
		mock.ExpectExec("INSERT INTO candidate_scores").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	output, err := h.Execute(ctx, &Input{JobID: "job-1"})

	require.NoError(t, err)
	assert.Equal(t, 2, output.Rescored)
	assert.Equal(t, 0, output.Failed)
	assert.Equal(t, version, output.ConfigVersion)
	assert.NotEmpty(t, output.BatchID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_PartialFailureIsNotFatal(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	h, configs := setupHandler(t, db)
	ctx := context.Background()
	_, err := configs.Publish(ctx, scoring.DefaultConfig())
	require.NoError(t, err)

	expectJobRow(mock, "job-1")
	mock.ExpectQuery("SELECT candidate_id FROM candidate_scores").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"candidate_id"}).
			AddRow("cand-1").
			AddRow("cand-gone"))

	expectCandidateRow(mock, "cand-1")
	mock.ExpectExec("INSERT INTO candidate_scores").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// second candidate's extraction has been deleted
	mock.ExpectQuery("SELECT id, name, email, skills").
		WithArgs("cand-gone").
		WillReturnError(sql.ErrNoRows)

	output, err := h.Execute(ctx, &Input{JobID: "job-1"})

	require.NoError(t, err)
	assert.Equal(t, 1, output.Rescored)
	assert.Equal(t, 1, output.Failed)
	assert.Equal(t, []string{"cand-gone"}, output.FailedIDs)
}

func TestHandler_Execute_EmptyJobIsNoop(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	h, configs := setupHandler(t, db)
	ctx := context.Background()
	_, err := configs.Publish(ctx, scoring.DefaultConfig())
	require.NoError(t, err)

	expectJobRow(mock, "job-1")
	mock.ExpectQuery("SELECT candidate_id FROM candidate_scores").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"candidate_id"}))

	output, err := h.Execute(ctx, &Input{JobID: "job-1"})

	require.NoError(t, err)
	assert.Equal(t, 0, output.Rescored)
	assert.Equal(t, 0, output.Failed)
}

func TestHandler_Execute_AllFailedIsFatal(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	h, configs := setupHandler(t, db)
	ctx := context.Background()
	_, err := configs.Publish(ctx, scoring.DefaultConfig())
	require.NoError(t, err)

	expectJobRow(mock, "job-1")
	mock.ExpectQuery("SELECT candidate_id FROM candidate_scores").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"candidate_id"}).AddRow("cand-1"))
	mock.ExpectQuery("SELECT id, name, email, skills").
		WithArgs("cand-1").
		WillReturnError(sql.ErrNoRows)

	_, err = h.Execute(ctx, &Input{JobID: "job-1"})

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeRescoreBatchFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_Execute_PinnedVersionUsedForWholeBatch(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	h, configs := setupHandler(t, db)
	ctx := context.Background()

	v1, err := configs.Publish(ctx, scoring.DefaultConfig())
	require.NoError(t, err)
	cfg2 := scoring.DefaultConfig()
	cfg2.NiceTopN = 5
	_, err = configs.Publish(ctx, cfg2)
	require.NoError(t, err)

	expectJobRow(mock, "job-1")
	mock.ExpectQuery("SELECT candidate_id FROM candidate_scores").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"candidate_id"}).AddRow("cand-1"))
	expectCandidateRow(mock, "cand-1")
	mock.ExpectExec("INSERT INTO candidate_scores").
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := h.Execute(ctx, &Input{JobID: "job-1", ConfigVersion: v1})

	require.NoError(t, err)
	assert.Equal(t, v1, output.ConfigVersion)
}

func TestHandler_Execute_MissingJobID(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()

	h, _ := setupHandler(t, db)

	_, err := h.Execute(context.Background(), &Input{})

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, stdErr.Code)
}

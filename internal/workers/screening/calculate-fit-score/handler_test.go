// internal/workers/screening/calculate-fit-score/handler_test.go
package calculatefitscore

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
	"screening-workers/internal/models"
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
	h := NewHandler(&Config{Timeout: 10 * time.Second}, profiles, scores, configs, logger.NewTestLogger(t))
	return h, configs
}

func floatPtr(v float64) *float64 { return &v }

func testCandidate() *models.Candidate {
	return &models.Candidate{
		ID:     "cand-1",
		Name:   "Dana",
		Skills: []string{"go", "postgresql"},
		Roles:  []string{"tech lead"},
		ExperienceYears: map[string]*float64{
			"go":         floatPtr(6),
			"postgresql": floatPtr(4),
		},
		Highlights: []string{"built billing platform"},
	}
}

func testJob() *models.Job {
	return &models.Job{
		ID:               "job-1",
		Title:            "Backend Engineer",
		MustRequirements: []string{"go", "postgresql"},
		NiceRequirements: []string{"kubernetes"},
		ExpectedYears:    floatPtr(5),
		ExpectedRole:     "lead",
		Status:           "open",
	}
}

func TestHandler_Execute_InlinePayloads(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	h, configs := setupHandler(t, db)
	version, err := configs.Publish(context.Background(), scoring.DefaultConfig())
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO candidate_scores").
		WillReturnResult(sqlmock.NewResult(0, 1))

	input := &Input{
		CandidateID: "cand-1",
		JobID:       "job-1",
		Candidate:   testCandidate(),
		Job:         testJob(),
	}

	output, err := h.Execute(context.Background(), input)

	require.NoError(t, err)
	// must: go and postgresql both held -> 1.0
	// nice: kubernetes absent -> 0.0
	// year: 6 matched years vs 5 expected -> 1.0
	// role: lead vs lead -> 1.0
	// raw = 0.45 + 0 + 0.20 + 0.15 = 0.80 -> 80
	assert.Equal(t, 80, output.TotalFit)
	assert.Equal(t, 1.0, output.MustScore)
	assert.Equal(t, 0.0, output.NiceScore)
	assert.Equal(t, 1.0, output.YearScore)
	assert.Equal(t, 1.0, output.RoleScore)
	assert.Empty(t, output.MustGaps)
	assert.Equal(t, version, output.ConfigVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_MustCapApplied(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	h, configs := setupHandler(t, db)
	_, err := configs.Publish(context.Background(), scoring.DefaultConfig())
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO candidate_scores").
		WillReturnResult(sqlmock.NewResult(0, 1))

	job := testJob()
	job.MustRequirements = []string{"go", "rust"} // rust is a gap

	input := &Input{
		CandidateID: "cand-1",
		JobID:       "job-1",
		Candidate:   testCandidate(),
		Job:         job,
	}

	output, err := h.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, []string{"rust"}, output.MustGaps)
	// default config caps gap-bearing scores at 20
	assert.LessOrEqual(t, output.TotalFit, 20)
}

func TestHandler_Execute_LoadsFromStore(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	h, configs := setupHandler(t, db)
	_, err := configs.Publish(context.Background(), scoring.DefaultConfig())
	require.NoError(t, err)

	expYears := []byte(`{"go":6}`)
	mock.ExpectQuery("SELECT id, name, email, skills").
		WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "skills", "roles", "experience_years", "highlights"}).
			AddRow("cand-1", "Dana", "dana@example.com", "{go}", "{\"tech lead\"}", expYears, "{}"))
	mock.ExpectQuery("SELECT id, title, must_requirements").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "must_requirements", "nice_requirements", "expected_years", "expected_role", "status"}).
			AddRow("job-1", "Backend Engineer", "{go}", "{}", 5.0, "lead", "open"))
	mock.ExpectExec("INSERT INTO candidate_scores").
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := h.Execute(context.Background(), &Input{CandidateID: "cand-1", JobID: "job-1"})

	require.NoError(t, err)
	assert.Equal(t, 100, output.TotalFit) // all four sub-scores perfect, nice empty -> 1.0
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_CandidateNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	h, configs := setupHandler(t, db)
	_, err := configs.Publish(context.Background(), scoring.DefaultConfig())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, name, email, skills").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = h.Execute(context.Background(), &Input{CandidateID: "missing", JobID: "job-1"})

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeCandidateNotFound, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestHandler_Execute_NoActiveConfig(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()

	h, _ := setupHandler(t, db)

	input := &Input{
		CandidateID: "cand-1",
		JobID:       "job-1",
		Candidate:   testCandidate(),
		Job:         testJob(),
	}

	_, err := h.Execute(context.Background(), input)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeConfigNotFound, stdErr.Code)
}

func TestHandler_Execute_PinnedConfigVersion(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	h, configs := setupHandler(t, db)
	ctx := context.Background()

	v1, err := configs.Publish(ctx, scoring.DefaultConfig())
	require.NoError(t, err)

	// second version with cap disabled
	cfg2 := scoring.DefaultConfig()
	cfg2.MustCapEnabled = false
	_, err = configs.Publish(ctx, cfg2)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO candidate_scores").
		WillReturnResult(sqlmock.NewResult(0, 1))

	input := &Input{
		CandidateID:   "cand-1",
		JobID:         "job-1",
		Candidate:     testCandidate(),
		Job:           testJob(),
		ConfigVersion: v1,
	}

	output, err := h.Execute(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, v1, output.ConfigVersion)
}

func TestHandler_Execute_UnrecognizedExpectedRole(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()

	h, configs := setupHandler(t, db)
	_, err := configs.Publish(context.Background(), scoring.DefaultConfig())
	require.NoError(t, err)

	job := testJob()
	job.ExpectedRole = "wizard"

	input := &Input{
		CandidateID: "cand-1",
		JobID:       "job-1",
		Candidate:   testCandidate(),
		Job:         job,
	}

	_, err = h.Execute(context.Background(), input)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, stdErr.Code)
}

func TestHandler_Execute_MissingIdentifiers(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()

	h, _ := setupHandler(t, db)

	_, err := h.Execute(context.Background(), &Input{})

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, stdErr.Code)
}

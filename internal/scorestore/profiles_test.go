// internal/scorestore/profiles_test.go
package scorestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screening-workers/internal/models"
)

func setupMiniRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestProfiles_GetCandidate_FromDB(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	expYears, _ := json.Marshal(map[string]*float64{"go": floatPtr(6)})

	mock.ExpectQuery("SELECT id, name, email, skills").
		WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "skills", "roles", "experience_years", "highlights"}).
			AddRow("cand-1", "Dana", "dana@example.com", "{go,postgresql}", "{\"tech lead\"}", expYears, "{\"built billing platform\"}"))

	profiles := NewProfiles(db, setupMiniRedis(t), time.Minute)
	c, err := profiles.GetCandidate(context.Background(), "cand-1")

	require.NoError(t, err)
	assert.Equal(t, "Dana", c.Name)
	assert.Equal(t, []string{"go", "postgresql"}, c.Skills)
	assert.Equal(t, []string{"tech lead"}, c.Roles)
	require.NotNil(t, c.ExperienceYears["go"])
	assert.Equal(t, 6.0, *c.ExperienceYears["go"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfiles_GetCandidate_CacheHitSkipsDB(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	rdb := setupMiniRedis(t)
	cached, _ := json.Marshal(models.Candidate{ID: "cand-1", Name: "Dana", Skills: []string{"go"}})
	require.NoError(t, rdb.Set(context.Background(), "candidate:profile:cand-1", cached, time.Minute).Err())

	profiles := NewProfiles(db, rdb, time.Minute)
	c, err := profiles.GetCandidate(context.Background(), "cand-1")

	require.NoError(t, err)
	assert.Equal(t, "Dana", c.Name)
	// no SQL expectations were registered, so any query would have failed
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfiles_GetCandidate_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, name, email, skills").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	profiles := NewProfiles(db, setupMiniRedis(t), time.Minute)
	c, err := profiles.GetCandidate(context.Background(), "missing")

	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfiles_InvalidateCandidate(t *testing.T) {
	rdb := setupMiniRedis(t)
	ctx := context.Background()
	require.NoError(t, rdb.Set(ctx, "candidate:profile:cand-1", "x", time.Minute).Err())

	profiles := NewProfiles(nil, rdb, time.Minute)
	require.NoError(t, profiles.InvalidateCandidate(ctx, "cand-1"))

	_, err := rdb.Get(ctx, "candidate:profile:cand-1").Result()
	assert.ErrorIs(t, err, redis.Nil)
}

func TestProfiles_GetJob(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, title, must_requirements").
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "must_requirements", "nice_requirements", "expected_years", "expected_role", "status"}).
			AddRow("job-1", "Backend Engineer", "{go,postgresql}", "{kubernetes}", 5.0, "lead", "open"))

	profiles := NewProfiles(db, nil, time.Minute)
	j, err := profiles.GetJob(context.Background(), "job-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"go", "postgresql"}, j.MustRequirements)
	assert.Equal(t, []string{"kubernetes"}, j.NiceRequirements)
	require.NotNil(t, j.ExpectedYears)
	assert.Equal(t, 5.0, *j.ExpectedYears)
	assert.Equal(t, "lead", j.ExpectedRole)
}

func TestProfiles_GetJob_NullOptionalFields(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, title, must_requirements").
		WithArgs("job-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "must_requirements", "nice_requirements", "expected_years", "expected_role", "status"}).
			AddRow("job-2", "Intern", "{}", "{}", nil, nil, "open"))

	profiles := NewProfiles(db, nil, time.Minute)
	j, err := profiles.GetJob(context.Background(), "job-2")

	require.NoError(t, err)
	assert.Nil(t, j.ExpectedYears)
	assert.Empty(t, j.ExpectedRole)
}

func floatPtr(v float64) *float64 { return &v }

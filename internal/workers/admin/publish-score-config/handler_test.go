// internal/workers/admin/publish-score-config/handler_test.go
package publishscoreconfig

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screening-workers/internal/common/errors"
	"screening-workers/internal/common/logger"
	"screening-workers/internal/configstore"
)

func setupHandler(t *testing.T) (*Handler, *configstore.MemoryStore) {
	configs := configstore.NewMemoryStore()
	h := NewHandler(&Config{Timeout: 10 * time.Second}, configs, logger.NewTestLogger(t))
	return h, configs
}

func validInput() *Input {
	return &Input{
		Weights:        WeightsInput{Must: 0.45, Nice: 0.20, Year: 0.20, Role: 0.15},
		MustCapEnabled: true,
		MustCapValue:   20,
		NiceTopN:       3,
	}
}

func TestHandler_Execute_PublishesDefaults(t *testing.T) {
	h, configs := setupHandler(t)
	ctx := context.Background()

	output, err := h.Execute(ctx, validInput())

	require.NoError(t, err)
	assert.Equal(t, 1, output.Version)
	assert.NotEmpty(t, output.PublishedAt)

	active, err := configs.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.45, active.Weights.Must)
	assert.True(t, active.MustCapEnabled)
	assert.Equal(t, 20, active.MustCapValue)
	// omitted roleDistance falls back to the shipped defaults
	assert.NotEmpty(t, active.RoleDistance)
}

func TestHandler_Execute_VersionsAreMonotonic(t *testing.T) {
	h, _ := setupHandler(t)
	ctx := context.Background()

	first, err := h.Execute(ctx, validInput())
	require.NoError(t, err)
	second, err := h.Execute(ctx, validInput())
	require.NoError(t, err)

	assert.Equal(t, first.Version+1, second.Version)
}

func TestHandler_Execute_RejectsBadWeightSum(t *testing.T) {
	h, configs := setupHandler(t)
	ctx := context.Background()

	input := validInput()
	input.Weights.Must = 0.9 // sum now 1.45

	_, err := h.Execute(ctx, input)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeConfigValidationFailed, stdErr.Code)
	assert.False(t, stdErr.Retryable)

	// nothing was published
	_, err = configs.GetActive(ctx)
	assert.ErrorIs(t, err, configstore.ErrNotFound)
}

func TestHandler_Execute_RejectsOutOfRangeCap(t *testing.T) {
	h, _ := setupHandler(t)

	input := validInput()
	input.MustCapValue = 150

	_, err := h.Execute(context.Background(), input)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeConfigValidationFailed, stdErr.Code)
}

func TestHandler_Execute_CustomRoleDistance(t *testing.T) {
	h, configs := setupHandler(t)
	ctx := context.Background()

	input := validInput()
	input.RoleDistance = map[string]map[string]float64{
		"ic":      {"ic": 1.0, "lead": 0.5, "manager": 0.2},
		"lead":    {"ic": 0.5, "lead": 1.0, "manager": 0.5},
		"manager": {"ic": 0.2, "lead": 0.5, "manager": 1.0},
	}

	output, err := h.Execute(ctx, input)
	require.NoError(t, err)

	active, err := configs.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, output.Version, active.Version)
	assert.Equal(t, 0.5, active.RoleDistance["Lead"]["IC"])
}

func TestHandler_Execute_RejectsUnknownRoleLabel(t *testing.T) {
	h, _ := setupHandler(t)

	input := validInput()
	input.RoleDistance = map[string]map[string]float64{
		"wizard": {"ic": 1.0},
	}

	_, err := h.Execute(context.Background(), input)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, stdErr.Code)
}

func TestHandler_Execute_RejectsIncompleteRoleTable(t *testing.T) {
	h, _ := setupHandler(t)

	input := validInput()
	input.RoleDistance = map[string]map[string]float64{
		"ic": {"ic": 1.0}, // missing rows and columns
	}

	_, err := h.Execute(context.Background(), input)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeConfigValidationFailed, stdErr.Code)
}

// internal/workers/admin/fetch-score-config/handler_test.go
package fetchscoreconfig

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screening-workers/internal/common/errors"
	"screening-workers/internal/common/logger"
	"screening-workers/internal/configstore"
	"screening-workers/internal/scoring"
)

func setupHandler(t *testing.T) (*Handler, *configstore.MemoryStore) {
	configs := configstore.NewMemoryStore()
	h := NewHandler(&Config{Timeout: 5 * time.Second}, configs, logger.NewTestLogger(t))
	return h, configs
}

func TestHandler_Execute_FetchesActive(t *testing.T) {
	h, configs := setupHandler(t)
	ctx := context.Background()

	version, err := configs.Publish(ctx, scoring.DefaultConfig())
	require.NoError(t, err)

	output, err := h.Execute(ctx, &Input{})

	require.NoError(t, err)
	assert.Equal(t, version, output.Version)
	assert.Equal(t, 0.45, output.Weights.Must)
	assert.Equal(t, 0.20, output.Weights.Nice)
	assert.True(t, output.MustCapEnabled)
	assert.Equal(t, 20, output.MustCapValue)
	assert.Equal(t, 3, output.NiceTopN)
	assert.Equal(t, 1.0, output.RoleDistance["IC"]["IC"])
	assert.NotEmpty(t, output.CreatedAt)
}

func TestHandler_Execute_FetchesHistoricalVersion(t *testing.T) {
	h, configs := setupHandler(t)
	ctx := context.Background()

	v1, err := configs.Publish(ctx, scoring.DefaultConfig())
	require.NoError(t, err)

	cfg2 := scoring.DefaultConfig()
	cfg2.MustCapEnabled = false
	v2, err := configs.Publish(ctx, cfg2)
	require.NoError(t, err)

	historical, err := h.Execute(ctx, &Input{Version: v1})
	require.NoError(t, err)
	assert.Equal(t, v1, historical.Version)
	assert.True(t, historical.MustCapEnabled)

	active, err := h.Execute(ctx, &Input{})
	require.NoError(t, err)
	assert.Equal(t, v2, active.Version)
	assert.False(t, active.MustCapEnabled)
}

func TestHandler_Execute_UnknownVersion(t *testing.T) {
	h, configs := setupHandler(t)
	ctx := context.Background()

	_, err := configs.Publish(ctx, scoring.DefaultConfig())
	require.NoError(t, err)

	_, err = h.Execute(ctx, &Input{Version: 99})

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeConfigNotFound, stdErr.Code)
}

func TestHandler_Execute_EmptyStore(t *testing.T) {
	h, _ := setupHandler(t)

	_, err := h.Execute(context.Background(), &Input{})

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeConfigNotFound, stdErr.Code)
}

func TestHandler_Execute_NegativeVersion(t *testing.T) {
	h, _ := setupHandler(t)

	_, err := h.Execute(context.Background(), &Input{Version: -1})

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, stdErr.Code)
}

// internal/configstore/memory_test.go
package configstore

import (
	"context"
	"sync"
	"testing"

	"screening-workers/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PublishAssignsMonotonicVersions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	v1, err := store.Publish(ctx, scoring.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, v1)

	v2, err := store.Publish(ctx, scoring.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 2, v2)

	active, err := store.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, active.Version)
}

func TestMemoryStore_RejectsInvalidWithoutMutating(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Publish(ctx, scoring.DefaultConfig())
	require.NoError(t, err)

	bad := scoring.DefaultConfig()
	bad.Weights.Must = 0.9 // sum now well above 1.0

	_, err = store.Publish(ctx, bad)
	var verr *scoring.ValidationError
	require.ErrorAs(t, err, &verr)

	active, err := store.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, active.Version)
	assert.Equal(t, 0.45, active.Weights.Must)
}

func TestMemoryStore_EmptyStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.GetActive(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetByVersion(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_VersionImmutability(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	configA := scoring.DefaultConfig()
	configA.NiceTopN = 3
	vA, err := store.Publish(ctx, configA)
	require.NoError(t, err)

	configB := scoring.DefaultConfig()
	configB.NiceTopN = 7
	configB.RoleDistance[scoring.RoleIC][scoring.RoleLead] = 0.9
	_, err = store.Publish(ctx, configB)
	require.NoError(t, err)

	// Version A is unchanged after B became active.
	gotA, err := store.GetByVersion(ctx, vA)
	require.NoError(t, err)
	assert.Equal(t, 3, gotA.NiceTopN)
	assert.Equal(t, 0.7, gotA.RoleDistance[scoring.RoleIC][scoring.RoleLead])

	// Mutating what a reader got back cannot poison the stored version.
	gotA.RoleDistance[scoring.RoleIC][scoring.RoleLead] = 0.0
	again, err := store.GetByVersion(ctx, vA)
	require.NoError(t, err)
	assert.Equal(t, 0.7, again.RoleDistance[scoring.RoleIC][scoring.RoleLead])
}

func TestMemoryStore_ScoreKeepsOriginalConfigVersion(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	vA, err := store.Publish(ctx, scoring.DefaultConfig())
	require.NoError(t, err)

	cfgA, err := store.GetActive(ctx)
	require.NoError(t, err)

	job := scoring.JobRequirements{
		MustRequirements: []string{"go"},
		ExpectedRole:     scoring.RoleIC,
	}
	candidate := scoring.CandidateProfile{
		Skills: []string{"go"},
		Roles:  []string{"engineer"},
	}
	score, err := scoring.Compute(job, candidate, cfgA)
	require.NoError(t, err)
	assert.Equal(t, vA, score.ConfigVersion)

	// Publishing B applies prospectively only.
	_, err = store.Publish(ctx, scoring.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, vA, score.ConfigVersion)
}

func TestMemoryStore_ConcurrentReadersDuringPublish(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Publish(ctx, scoring.DefaultConfig())
	require.NoError(t, err)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				cfg, err := store.GetActive(ctx)
				assert.NoError(t, err)
				// A reader must always see a fully published config.
				assert.NoError(t, cfg.Validate())
			}
		}()
	}

	for i := 0; i < 50; i++ {
		_, err := store.Publish(ctx, scoring.DefaultConfig())
		assert.NoError(t, err)
	}
	close(stop)
	wg.Wait()

	active, err := store.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 51, active.Version)
}

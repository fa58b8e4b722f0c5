// pkg/registry/registry_test.go
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *WorkerRegistry {
	return &WorkerRegistry{
		Version:     "1.0.0",
		LastUpdated: "2026-03-01T00:00:00Z",
		Workers: []Worker{
			{
				ID:          "calculate-fit-score",
				DisplayName: "Calculate Fit Score",
				Category:    "screening",
				TaskType:    "calculate-fit-score",
				InputSchema: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"candidateId": map[string]interface{}{"type": "string"},
						"jobId":       map[string]interface{}{"type": "string"},
					},
					"required": []interface{}{"candidateId", "jobId"},
				},
			},
			{
				ID:          "fetch-score-config",
				DisplayName: "Fetch Score Config",
				Category:    "admin",
				TaskType:    "fetch-score-config",
			},
		},
	}
}

func TestLoadRegistry(t *testing.T) {
	reg := testRegistry()
	data, err := json.Marshal(reg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "worker-registry.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", loaded.Version)
	assert.Len(t, loaded.Workers, 2)
}

func TestRegistry_Find(t *testing.T) {
	reg := testRegistry()

	assert.NotNil(t, reg.Find("calculate-fit-score"))
	assert.Nil(t, reg.Find("unknown-task"))
}

func TestRegistry_Validate(t *testing.T) {
	assert.NoError(t, testRegistry().Validate())
}

func TestRegistry_Validate_DuplicateID(t *testing.T) {
	reg := testRegistry()
	reg.Workers = append(reg.Workers, reg.Workers[0])

	err := reg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate worker ID")
}

func TestRegistry_Validate_MissingTaskType(t *testing.T) {
	reg := testRegistry()
	reg.Workers[1].TaskType = ""

	err := reg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "taskType")
}

func TestRegistry_ValidateInput(t *testing.T) {
	reg := testRegistry()

	err := reg.ValidateInput("calculate-fit-score", map[string]interface{}{
		"candidateId": "cand-1",
		"jobId":       "job-1",
	})
	assert.NoError(t, err)
}

func TestRegistry_ValidateInput_MissingRequired(t *testing.T) {
	reg := testRegistry()

	err := reg.ValidateInput("calculate-fit-score", map[string]interface{}{
		"candidateId": "cand-1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation")
}

func TestRegistry_ValidateInput_NoSchemaAcceptsAnything(t *testing.T) {
	reg := testRegistry()

	assert.NoError(t, reg.ValidateInput("fetch-score-config", map[string]interface{}{"version": 3}))
}

func TestRegistry_ValidateInput_UnknownTaskType(t *testing.T) {
	reg := testRegistry()

	err := reg.ValidateInput("unknown-task", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

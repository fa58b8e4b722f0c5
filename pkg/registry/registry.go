// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*WorkerRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg WorkerRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Find returns the registered worker for a task type, or nil.
func (r *WorkerRegistry) Find(taskType string) *Worker {
	for i := range r.Workers {
		if r.Workers[i].TaskType == taskType {
			return &r.Workers[i]
		}
	}
	return nil
}

// Validate checks structural integrity: unique IDs, required fields, and that
// every declared input/output schema is a compilable JSON Schema.
func (r *WorkerRegistry) Validate() error {
	if len(r.Workers) == 0 {
		return fmt.Errorf("registry contains no workers")
	}

	ids := make(map[string]bool)
	for _, w := range r.Workers {
		if w.ID == "" {
			return fmt.Errorf("worker missing required field: id")
		}
		if ids[w.ID] {
			return fmt.Errorf("duplicate worker ID: %s", w.ID)
		}
		ids[w.ID] = true

		if w.DisplayName == "" {
			return fmt.Errorf("worker %s missing required field: displayName", w.ID)
		}
		if w.TaskType == "" {
			return fmt.Errorf("worker %s missing required field: taskType", w.ID)
		}
		if w.Category == "" {
			return fmt.Errorf("worker %s missing required field: category", w.ID)
		}

		if w.InputSchema != nil {
			if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(w.InputSchema)); err != nil {
				return fmt.Errorf("worker %s has invalid input schema: %w", w.ID, err)
			}
		}
		if w.OutputSchema != nil {
			if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(w.OutputSchema)); err != nil {
				return fmt.Errorf("worker %s has invalid output schema: %w", w.ID, err)
			}
		}
	}
	return nil
}

// ValidateInput checks a job payload against the registered input schema for a
// task type. Workers without a schema accept any payload.
func (r *WorkerRegistry) ValidateInput(taskType string, payload map[string]interface{}) error {
	w := r.Find(taskType)
	if w == nil {
		return fmt.Errorf("task type not registered: %s", taskType)
	}
	if w.InputSchema == nil {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(w.InputSchema),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("validate input for %s: %w", taskType, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("input for %s failed schema validation: %v", taskType, msgs)
	}
	return nil
}

// internal/common/camunda/worker_test.go
package camunda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type fakeJobWorker struct {
	closed       bool
	awaitedClose bool
}

func (f *fakeJobWorker) Close()      { f.closed = true }
func (f *fakeJobWorker) AwaitClose() { f.awaitedClose = true }

func TestWorkerTaskType(t *testing.T) {
	w := &Worker{taskType: "calculate-fit-score", logger: zaptest.NewLogger(t)}
	assert.Equal(t, "calculate-fit-score", w.TaskType())
}

func TestWorkerCloseDrainsSubscription(t *testing.T) {
	inner := &fakeJobWorker{}
	w := &Worker{taskType: "notify-shortlist", inner: inner, logger: zaptest.NewLogger(t)}

	w.Close()

	assert.True(t, inner.closed)
	assert.True(t, inner.awaitedClose)
}

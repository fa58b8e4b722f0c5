// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// HandlerFunc processes one activated job. Completion and failure are
// reported through the JobClient inside the handler, so the wrapper
// never touches job state itself.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// Worker is an open job subscription for a single task type. Close it
// during shutdown so in-flight jobs drain before the client goes away.
type Worker struct {
	taskType string
	inner    worker.JobWorker
	logger   *zap.Logger
}

// Open registers handler for taskType and starts polling immediately.
func Open(client zbc.Client, taskType string, maxJobsActive int, timeout time.Duration, handler HandlerFunc, log *zap.Logger) *Worker {
	inner := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(maxJobsActive).
		Timeout(timeout).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobsActive),
		zap.Duration("timeout", timeout),
	)

	return &Worker{taskType: taskType, inner: inner, logger: log}
}

// TaskType returns the Zeebe task type this worker is subscribed to.
func (w *Worker) TaskType() string {
	return w.taskType
}

// Close stops polling and blocks until in-flight handlers finish.
func (w *Worker) Close() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.inner.Close()
	w.inner.AwaitClose()
}

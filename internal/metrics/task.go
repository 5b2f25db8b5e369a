package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Task outcomes reported by the dispatcher.
const (
	// TaskAccepted means Submit queued the task.
	TaskAccepted = "accepted"
	// TaskRejected means Submit refused the task because the queue was full or stopped.
	TaskRejected = "rejected"
	// TaskPersisted means the task reached the outbox.
	TaskPersisted = "persisted"
	// TaskDropped means persistence gave up on the task.
	TaskDropped = "dropped"
)

// TaskMetrics counts dispatcher task outcomes per event type.
type TaskMetrics interface {
	RecordTask(ctx context.Context, eventType, outcome string)
}

type taskMetrics struct {
	taskCounter metric.Int64Counter
}

// NewTaskMetrics creates the dispatcher task counter under namespace.
func NewTaskMetrics(meterProvider metric.MeterProvider, namespace string) (TaskMetrics, error) {
	meter := meterProvider.Meter(namespace)

	taskCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_dispatcher_tasks_total", namespace),
		metric.WithDescription("Dispatcher tasks by event type and outcome"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task counter: %w", err)
	}
	return &taskMetrics{taskCounter: taskCounter}, nil
}

func (m *taskMetrics) RecordTask(ctx context.Context, eventType, outcome string) {
	m.taskCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("outcome", outcome),
	))
}

// RegisterQueueDepth publishes depth as an observable gauge read on every scrape.
func RegisterQueueDepth(meterProvider metric.MeterProvider, namespace string, depth func() int) error {
	meter := meterProvider.Meter(namespace)

	_, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_dispatcher_queue_depth", namespace),
		metric.WithDescription("Tasks waiting in the dispatcher queue"),
		metric.WithUnit("{task}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(depth()))
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create queue depth gauge: %w", err)
	}
	return nil
}

// NoOpTaskMetrics is used when metrics are disabled.
type NoOpTaskMetrics struct{}

// NewNoOpTaskMetrics returns a TaskMetrics that records nothing.
func NewNoOpTaskMetrics() TaskMetrics {
	return &NoOpTaskMetrics{}
}

func (n *NoOpTaskMetrics) RecordTask(ctx context.Context, eventType, outcome string) {}

package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
	"github.com/allisson/gatekeeper/internal/metrics"
	"github.com/allisson/gatekeeper/internal/outbox/domain"
)

// DispatcherConfig holds dispatcher configuration.
type DispatcherConfig struct {
	// QueueSize is the capacity of the in-memory task queue.
	QueueSize int
	// Workers is the number of goroutines persisting queued tasks.
	Workers int
	// MaxTries bounds persistence attempts per task.
	MaxTries uint
	// InitialInterval and MaxInterval shape the exponential backoff between attempts.
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// StoreTimeout bounds a single persistence attempt. Zero disables it.
	StoreTimeout time.Duration
	// Metrics receives task outcomes. Nil records nothing.
	Metrics metrics.TaskMetrics
}

// Dispatcher accepts tasks from request handlers without blocking and persists them
// as pending outbox events in the background.
type Dispatcher struct {
	config     DispatcherConfig
	outboxRepo OutboxEventRepository
	logger     *slog.Logger
	clock      func() time.Time

	mu      sync.RWMutex
	stopped bool
	queue   chan domain.Task
}

// NewDispatcher creates a Dispatcher. Tasks submitted before Start are buffered.
func NewDispatcher(config DispatcherConfig, outboxRepo OutboxEventRepository, logger *slog.Logger) *Dispatcher {
	if config.QueueSize <= 0 {
		config.QueueSize = 1
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.MaxTries == 0 {
		config.MaxTries = 1
	}
	if config.Metrics == nil {
		config.Metrics = metrics.NewNoOpTaskMetrics()
	}
	return &Dispatcher{
		config:     config,
		outboxRepo: outboxRepo,
		logger:     logger,
		clock:      time.Now,
		queue:      make(chan domain.Task, config.QueueSize),
	}
}

// Submit enqueues task and reports whether it was accepted. It never blocks: a full
// queue or a stopped dispatcher rejects the task. A zero ID or CreatedAt is filled in.
func (d *Dispatcher) Submit(task domain.Task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.config.Metrics.RecordTask(context.Background(), task.EventType, metrics.TaskRejected)
		return false
	}

	if task.ID == uuid.Nil {
		task.ID = uuid.Must(uuid.NewV7())
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = d.clock().UTC()
	}

	select {
	case d.queue <- task:
		d.config.Metrics.RecordTask(context.Background(), task.EventType, metrics.TaskAccepted)
		return true
	default:
		d.config.Metrics.RecordTask(context.Background(), task.EventType, metrics.TaskRejected)
		return false
	}
}

// QueueDepth returns the number of tasks waiting to be persisted.
func (d *Dispatcher) QueueDepth() int {
	return len(d.queue)
}

// Start runs the worker pool until ctx is cancelled, then stops accepting tasks and
// drains the queue before returning.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info("starting task dispatcher",
		slog.Int("queue_size", d.config.QueueSize),
		slog.Int("workers", d.config.Workers),
	)

	// Persistence outlives ctx so the drain can finish.
	persistCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	for range d.config.Workers {
		g.Go(func() error {
			for task := range d.queue {
				d.persist(persistCtx, task)
			}
			return nil
		})
	}

	<-ctx.Done()
	d.stop()

	err := g.Wait()
	d.logger.Info("task dispatcher stopped")
	return err
}

func (d *Dispatcher) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	close(d.queue)
}

func (d *Dispatcher) persist(ctx context.Context, task domain.Task) {
	payload, err := json.Marshal(task.Payload)
	if err != nil {
		d.logger.Error("failed to encode task payload",
			slog.String("task_id", task.ID.String()),
			slog.String("event_type", task.EventType),
			slog.Any("error", err),
		)
		d.config.Metrics.RecordTask(ctx, task.EventType, metrics.TaskDropped)
		return
	}

	event := &domain.OutboxEvent{
		ID:        task.ID,
		EventType: task.EventType,
		Payload:   string(payload),
		Status:    domain.OutboxEventStatusPending,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.CreatedAt,
	}

	expBackoff := backoff.NewExponentialBackOff()
	if d.config.InitialInterval > 0 {
		expBackoff.InitialInterval = d.config.InitialInterval
	}
	if d.config.MaxInterval > 0 {
		expBackoff.MaxInterval = d.config.MaxInterval
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		if err := d.create(ctx, event); err != nil {
			if errors.Is(err, apperrors.ErrUnavailable) {
				return struct{}{}, err
			}
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(d.config.MaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			d.logger.Warn("retrying task persistence",
				slog.String("task_id", task.ID.String()),
				slog.Duration("next_attempt", next),
				slog.Any("error", err),
			)
		}),
	)
	if err != nil {
		d.logger.Error("task dropped after persistence failure",
			slog.String("task_id", task.ID.String()),
			slog.String("event_type", task.EventType),
			slog.Any("error", err),
		)
		d.config.Metrics.RecordTask(ctx, task.EventType, metrics.TaskDropped)
		return
	}
	d.config.Metrics.RecordTask(ctx, task.EventType, metrics.TaskPersisted)
}

func (d *Dispatcher) create(ctx context.Context, event *domain.OutboxEvent) error {
	if d.config.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.StoreTimeout)
		defer cancel()
	}
	return d.outboxRepo.Create(ctx, event)
}

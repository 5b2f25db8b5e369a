// Package domain defines the async task and outbox entities.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// OutboxEvent is a persisted task waiting for, or done with, processing.
// ID doubles as the deduplication key for at-least-once consumers.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Task is a fire-and-forget work item submitted from the request path.
type Task struct {
	// ID identifies the task across retries. A zero ID is assigned on submit.
	ID        uuid.UUID
	EventType string
	Payload   any
	CreatedAt time.Time
}

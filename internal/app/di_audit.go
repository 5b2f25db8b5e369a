package app

import (
	"fmt"
	"time"

	auditRepository "github.com/allisson/gatekeeper/internal/audit/repository"
	auditService "github.com/allisson/gatekeeper/internal/audit/service"
	auditUseCase "github.com/allisson/gatekeeper/internal/audit/usecase"
	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	"github.com/allisson/gatekeeper/internal/metrics"
	outboxRepository "github.com/allisson/gatekeeper/internal/outbox/repository"
	outboxUseCase "github.com/allisson/gatekeeper/internal/outbox/usecase"
)

const (
	dispatcherInitialInterval = 100 * time.Millisecond
	dispatcherMaxInterval     = 5 * time.Second
)

// OutboxRepository returns the outbox event repository based on database driver.
func (c *Container) OutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	var err error
	c.outboxRepositoryInit.Do(func() {
		c.outboxRepository, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRepository"]; exists {
		return nil, storedErr
	}
	return c.outboxRepository, nil
}

// AuditLogRepository returns the audit log repository based on database driver.
func (c *Container) AuditLogRepository() (auditUseCase.AuditLogRepository, error) {
	var err error
	c.auditLogRepositoryInit.Do(func() {
		c.auditLogRepository, err = c.initAuditLogRepository()
		if err != nil {
			c.initErrors["auditLogRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogRepository"]; exists {
		return nil, storedErr
	}
	return c.auditLogRepository, nil
}

// Dispatcher returns the in-process task dispatcher. Callers that submit tasks must
// run Dispatcher.Start for the tasks to be persisted.
func (c *Container) Dispatcher() (*outboxUseCase.Dispatcher, error) {
	var err error
	c.dispatcherInit.Do(func() {
		c.dispatcher, err = c.initDispatcher()
		if err != nil {
			c.initErrors["dispatcher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["dispatcher"]; exists {
		return nil, storedErr
	}
	return c.dispatcher, nil
}

// EventProcessor returns the processor that turns outbox events into signed audit logs.
func (c *Container) EventProcessor() (auditUseCase.EventProcessor, error) {
	var err error
	c.eventProcessorInit.Do(func() {
		c.eventProcessor, err = c.initEventProcessor()
		if err != nil {
			c.initErrors["eventProcessor"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventProcessor"]; exists {
		return nil, storedErr
	}
	return c.eventProcessor, nil
}

// AuditLogUseCase returns the audit log use case.
func (c *Container) AuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	var err error
	c.auditLogUseCaseInit.Do(func() {
		c.auditLogUseCase, err = c.initAuditLogUseCase()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditLogUseCase, nil
}

// OutboxUseCase returns the outbox processor that delivers pending events.
func (c *Container) OutboxUseCase() (outboxUseCase.UseCase, error) {
	var err error
	c.outboxUseCaseInit.Do(func() {
		c.outboxUseCase, err = c.initOutboxUseCase()
		if err != nil {
			c.initErrors["outboxUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, storedErr
	}
	return c.outboxUseCase, nil
}

// initOutboxRepository creates the outbox repository based on the database driver.
func (c *Container) initOutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
	case "mysql":
		return outboxRepository.NewMySQLOutboxEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditLogRepository creates the audit log repository based on the database driver.
func (c *Container) initAuditLogRepository() (auditUseCase.AuditLogRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit log repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditRepository.NewPostgreSQLAuditLogRepository(db), nil
	case "mysql":
		return auditRepository.NewMySQLAuditLogRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initDispatcher() (*outboxUseCase.Dispatcher, error) {
	outboxRepository, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for dispatcher: %w", err)
	}

	maxTries := uint(1)
	if c.config.WorkerMaxRetries > 0 {
		maxTries = uint(c.config.WorkerMaxRetries)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for dispatcher: %w", err)
	}

	taskMetrics := metrics.NewNoOpTaskMetrics()
	if provider != nil {
		taskMetrics, err = metrics.NewTaskMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create dispatcher metrics: %w", err)
		}
	}

	dispatcher := outboxUseCase.NewDispatcher(
		outboxUseCase.DispatcherConfig{
			QueueSize:       c.config.DispatcherQueueSize,
			Workers:         c.config.DispatcherWorkers,
			MaxTries:        maxTries,
			InitialInterval: dispatcherInitialInterval,
			MaxInterval:     dispatcherMaxInterval,
			StoreTimeout:    c.config.StoreTimeout,
			Metrics:         taskMetrics,
		},
		outboxRepository,
		c.Logger(),
	)

	if provider != nil {
		err = metrics.RegisterQueueDepth(provider.MeterProvider(), c.config.MetricsNamespace, dispatcher.QueueDepth)
		if err != nil {
			return nil, err
		}
	}
	return dispatcher, nil
}

func (c *Container) initEventProcessor() (auditUseCase.EventProcessor, error) {
	auditLogRepository, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for event processor: %w", err)
	}

	ring, err := c.SigningKeyRing()
	if err != nil {
		return nil, fmt.Errorf("failed to get signing keys for event processor: %w", err)
	}

	processor := auditUseCase.NewEventProcessor(
		auditLogRepository,
		auditService.NewAuditSigner(),
		ring,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for event processor: %w", err)
		}
		return auditUseCase.NewEventProcessorWithMetrics(processor, businessMetrics), nil
	}

	return processor, nil
}

// initAuditLogUseCase creates the audit log use case. Listing and cleanup work without
// signing keys; verification reports ErrSigningKeysNotSet in that case.
func (c *Container) initAuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	auditLogRepository, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for audit log use case: %w", err)
	}

	var ring *authDomain.SigningKeyRing
	if c.config.SigningKeys != "" {
		ring, err = c.SigningKeyRing()
		if err != nil {
			return nil, fmt.Errorf("failed to get signing keys for audit log use case: %w", err)
		}
	}

	baseUseCase := auditUseCase.NewAuditLogUseCase(auditLogRepository, auditService.NewAuditSigner(), ring)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for audit log use case: %w", err)
		}
		return auditUseCase.NewAuditLogUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initOutboxUseCase creates the outbox processor bound to the audit event processor.
func (c *Container) initOutboxUseCase() (outboxUseCase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	outboxRepository, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	eventProcessor, err := c.EventProcessor()
	if err != nil {
		return nil, fmt.Errorf("failed to get event processor for outbox use case: %w", err)
	}

	return outboxUseCase.NewOutboxUseCase(
		outboxUseCase.Config{
			Interval:   c.config.WorkerInterval,
			BatchSize:  c.config.WorkerBatchSize,
			MaxRetries: c.config.WorkerMaxRetries,
		},
		txManager,
		outboxRepository,
		eventProcessor,
		c.Logger(),
	), nil
}

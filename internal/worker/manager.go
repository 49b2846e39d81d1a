package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"activityhub/internal/queue"
)

const (
	// DefaultWorkerCount is the default number of worker goroutines
	DefaultWorkerCount = 2

	// DefaultBatchSize is the number of messages to read per batch
	DefaultBatchSize = 10

	// DefaultBlockTimeout is how long to block waiting for new messages
	DefaultBlockTimeout = 5 * time.Second
)

// EventHandler handles one decoded stream event.
type EventHandler interface {
	HandleEvent(ctx context.Context, event queue.Event) error
}

// Manager orchestrates worker goroutines that consume from Redis Streams.
type Manager struct {
	consumer    queue.Consumer
	handler     EventHandler
	logger      *zap.Logger
	workerCount int
	batchSize   int64
	blockTime   time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// ManagerConfig holds configuration for the worker manager.
type ManagerConfig struct {
	WorkerCount  int           // Number of worker goroutines
	BatchSize    int64         // Messages per read
	BlockTimeout time.Duration // Block time for XREADGROUP
}

// NewManager creates a new worker manager. Zero config values fall back to defaults.
func NewManager(consumer queue.Consumer, handler EventHandler, cfg ManagerConfig, logger *zap.Logger) *Manager {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}

	return &Manager{
		consumer:    consumer,
		handler:     handler,
		logger:      logger.With(zap.String("component", "manager")),
		workerCount: cfg.WorkerCount,
		batchSize:   cfg.BatchSize,
		blockTime:   cfg.BlockTimeout,
	}
}

// Start begins the worker goroutines.
// Call Stop() to gracefully shut down.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	if err := m.consumer.EnsureGroup(m.ctx, queue.StreamEvents, queue.ConsumerGroupEvents); err != nil {
		m.cancel()
		return err
	}

	for i := 0; i < m.workerCount; i++ {
		consumerName := consumerNameForWorker(i + 1)

		m.wg.Add(1)
		go m.runWorker(consumerName)
	}

	m.logger.Info("workers started",
		zap.Int("count", m.workerCount),
		zap.String("stream", queue.StreamEvents),
		zap.String("group", queue.ConsumerGroupEvents))
	return nil
}

// Stop gracefully shuts down all workers.
// Blocks until all workers have finished.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.wg.Wait()
	m.logger.Info("workers stopped")
}

// runWorker is the main loop for a single worker goroutine.
func (m *Manager) runWorker(consumerName string) {
	defer m.wg.Done()

	// Messages left pending by a previous run are handled first.
	m.processPending(consumerName)

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
			m.processMessages(consumerName)
		}
	}
}

// processPending handles messages that were delivered but not acknowledged.
func (m *Manager) processPending(consumerName string) {
	messages, err := m.consumer.ReadPending(m.ctx, queue.StreamEvents, queue.ConsumerGroupEvents, consumerName, m.batchSize)
	if err != nil {
		m.logger.Warn("read pending failed", zap.String("consumer", consumerName), zap.Error(err))
		return
	}
	if len(messages) == 0 {
		return
	}

	m.logger.Info("processing pending messages",
		zap.String("consumer", consumerName),
		zap.Int("count", len(messages)))
	m.handleMessages(messages)
}

// processMessages reads and handles a batch of messages.
func (m *Manager) processMessages(consumerName string) {
	messages, err := m.consumer.Read(
		m.ctx,
		queue.StreamEvents,
		queue.ConsumerGroupEvents,
		consumerName,
		m.batchSize,
		m.blockTime,
	)
	if err != nil {
		if m.ctx.Err() != nil {
			return
		}
		m.logger.Warn("read failed", zap.String("consumer", consumerName), zap.Error(err))
		select {
		case <-m.ctx.Done():
		case <-time.After(time.Second): // Back off on error
		}
		return
	}

	m.handleMessages(messages)
}

// handleMessages processes a batch of messages and acknowledges them.
// Retryable failures stay pending and are picked up on the next start.
func (m *Manager) handleMessages(messages []queue.Message) {
	for _, msg := range messages {
		err := m.handler.HandleEvent(m.ctx, msg.Event)
		if errors.Is(err, ErrRetryable) {
			continue
		}

		if err := m.consumer.Ack(m.ctx, queue.StreamEvents, queue.ConsumerGroupEvents, msg.ID); err != nil {
			m.logger.Warn("ack failed", zap.String("msg_id", msg.ID), zap.Error(err))
		}
	}
}

// consumerNameForWorker generates a unique consumer name for each worker.
func consumerNameForWorker(workerID int) string {
	return fmt.Sprintf("worker-%d", workerID)
}

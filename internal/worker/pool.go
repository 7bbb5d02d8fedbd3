package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"octofit/internal/logger"
	"octofit/internal/metrics"
)

// Pool errors
var (
	ErrBackpressure = errors.New("rebuild queue full")
	ErrPoolClosed   = errors.New("worker pool closed")
)

// RebuildTask asks for the leaderboard to be recomputed
type RebuildTask struct {
	Reason      string
	RequestedAt time.Time
}

// Handler runs a rebuild task
type Handler interface {
	HandleRebuild(ctx context.Context, task RebuildTask) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, task RebuildTask) error

// HandleRebuild calls f
func (f HandlerFunc) HandleRebuild(ctx context.Context, task RebuildTask) error {
	return f(ctx, task)
}

// WorkerPool runs leaderboard rebuilds off the request path
type WorkerPool struct {
	jobs        chan RebuildTask
	workerCount int
	handler     Handler
	taskTimeout time.Duration
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	metrics     *PoolMetrics

	mu     sync.RWMutex
	closed bool
}

// PoolMetrics tracks worker pool performance
type PoolMetrics struct {
	mu              sync.RWMutex
	processed       int64
	failed          int64
	backpressure    int64
	totalProcessing time.Duration
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(workerCount, queueSize int, handler Handler) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		jobs:        make(chan RebuildTask, queueSize),
		workerCount: workerCount,
		handler:     handler,
		taskTimeout: 30 * time.Second,
		ctx:         ctx,
		cancel:      cancel,
		metrics:     &PoolMetrics{},
	}
}

// Start launches the worker goroutines
func (wp *WorkerPool) Start() {
	logger.Info("Starting worker pool with %d workers and queue size %d", wp.workerCount, cap(wp.jobs))

	for i := 1; i <= wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			logger.Debug("Worker #%d shutting down", id)
			return

		case task, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.processTask(id, task)
		}
	}
}

// processTask runs one task and recovers from handler panics
func (wp *WorkerPool) processTask(workerID int, task RebuildTask) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Worker #%d panic recovered: %v (reason: %s)", workerID, r, task.Reason)
			wp.metrics.incrementFailed()
		}
	}()

	startTime := time.Now()

	ctx, cancel := context.WithTimeout(wp.ctx, wp.taskTimeout)
	defer cancel()

	err := wp.handler.HandleRebuild(ctx, task)
	processingTime := time.Since(startTime)

	if err != nil {
		logger.Error("Worker #%d rebuild failed (%s): %v (took %v)", workerID, task.Reason, err, processingTime)
		wp.metrics.incrementFailed()
		return
	}

	logger.Debug("Worker #%d rebuilt leaderboard (%s) in %v", workerID, task.Reason, processingTime)
	wp.metrics.recordSuccess(processingTime)
}

// Submit queues a task without blocking. When the queue is full the request
// is dropped with ErrBackpressure; a rebuild already waiting will cover it.
func (wp *WorkerPool) Submit(task RebuildTask) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return ErrPoolClosed
	}
	if task.RequestedAt.IsZero() {
		task.RequestedAt = time.Now()
	}

	select {
	case wp.jobs <- task:
		return nil
	default:
		logger.Warn("Rebuild queue full, dropping request (%s)", task.Reason)
		wp.metrics.incrementBackpressure()
		metrics.IncBackpressure()
		return ErrBackpressure
	}
}

// Shutdown stops accepting tasks and waits for queued ones up to timeout
func (wp *WorkerPool) Shutdown(timeout time.Duration) error {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return nil
	}
	wp.closed = true
	close(wp.jobs)
	wp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		wp.cancel()
		wp.printMetrics()
		return nil

	case <-time.After(timeout):
		wp.cancel()
		return fmt.Errorf("worker pool shutdown timed out after %v", timeout)
	}
}

// GetMetrics returns a snapshot of the pool metrics
func (wp *WorkerPool) GetMetrics() map[string]interface{} {
	wp.metrics.mu.RLock()
	defer wp.metrics.mu.RUnlock()

	avgProcessing := time.Duration(0)
	if wp.metrics.processed > 0 {
		avgProcessing = wp.metrics.totalProcessing / time.Duration(wp.metrics.processed)
	}

	return map[string]interface{}{
		"processed":           wp.metrics.processed,
		"failed":              wp.metrics.failed,
		"backpressure_events": wp.metrics.backpressure,
		"avg_processing_time": avgProcessing.String(),
		"queue_utilization":   fmt.Sprintf("%d/%d", len(wp.jobs), cap(wp.jobs)),
	}
}

func (wp *WorkerPool) printMetrics() {
	m := wp.GetMetrics()
	logger.Info("Worker pool: processed=%v failed=%v backpressure=%v avg=%v",
		m["processed"], m["failed"], m["backpressure_events"], m["avg_processing_time"])
}

func (pm *PoolMetrics) recordSuccess(duration time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.processed++
	pm.totalProcessing += duration
}

func (pm *PoolMetrics) incrementFailed() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.failed++
}

func (pm *PoolMetrics) incrementBackpressure() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.backpressure++
}

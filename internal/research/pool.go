package research

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
)

// Task is one unit of pool work. Tasks receive the pool's lifetime context.
type Task func(ctx context.Context)

// Pool is the worker pool that executes phase runs. Phases of one job are
// strictly serialized by the orchestrator's state machine; the pool only
// bounds how many jobs make progress at once. Workers never block waiting on
// another pool task's result, so the pool cannot deadlock under its own
// concurrency limit.
type Pool struct {
	tasks      chan Task
	maxWorkers int
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	logger     arbor.ILogger
}

// NewPool creates a new worker pool
func NewPool(maxWorkers int, logger arbor.ILogger) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		tasks:      make(chan Task, maxWorkers*2),
		maxWorkers: maxWorkers,
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
	}
}

// Start begins the worker pool
func (p *Pool) Start() {
	p.logger.Info().
		Int("max_workers", p.maxWorkers).
		Msg("Starting research worker pool")

	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit adds a task to the pool
func (p *Pool) Submit(task Task) error {
	select {
	case p.tasks <- task:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Stop shuts the pool down and waits for in-flight tasks to finish
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info().Msg("Research worker pool stopped")
}

// worker processes tasks until shutdown
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug().
		Int("worker_id", id).
		Msg("Worker started")

	for {
		select {
		case task := <-p.tasks:
			task(p.ctx)
		case <-p.ctx.Done():
			p.logger.Debug().
				Int("worker_id", id).
				Msg("Worker stopping - context cancelled")
			return
		}
	}
}

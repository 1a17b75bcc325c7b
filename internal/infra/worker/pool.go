package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

var ErrPoolClosed = errors.New("worker pool closed")

type Task func(ctx context.Context) error

// KeyedPool runs tasks on a fixed set of workers. Tasks submitted with the
// same key always land on the same worker and run in submission order;
// different keys spread across workers and run in parallel.
type KeyedPool struct {
	queues []chan Task
	wg     sync.WaitGroup
	log    *zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

func NewKeyedPool(workers, queueSize int, logger *zerolog.Logger) *KeyedPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = 16
	}
	l := logger.With().Str("component", "KeyedPool").Logger()
	p := &KeyedPool{queues: make([]chan Task, workers), log: &l}
	for i := range p.queues {
		p.queues[i] = make(chan Task, queueSize)
	}
	return p
}

// Start launches the workers. Tasks receive ctx.
func (p *KeyedPool) Start(ctx context.Context) {
	for i, q := range p.queues {
		p.wg.Add(1)
		go func(id int, q <-chan Task) {
			defer p.wg.Done()
			for task := range q {
				p.run(ctx, id, task)
			}
		}(i, q)
	}
}

func (p *KeyedPool) run(ctx context.Context, id int, task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error().Int("worker", id).Interface("panic", rec).Msg("task panicked")
		}
	}()
	if err := task(ctx); err != nil {
		p.log.Error().Err(err).Int("worker", id).Msg("task failed")
	}
}

// Submit enqueues task on the key's worker, blocking while that queue is full.
func (p *KeyedPool) Submit(ctx context.Context, key int64, task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.queues[p.slot(key)] <- task:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("submit: %w", ctx.Err())
	}
}

func (p *KeyedPool) slot(key int64) int {
	return int(uint64(key) % uint64(len(p.queues)))
}

// Stop rejects new tasks, lets queued ones finish and waits for the workers.
func (p *KeyedPool) Stop() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		for _, q := range p.queues {
			close(q)
		}
	}
	p.mu.Unlock()
	p.wg.Wait()
}

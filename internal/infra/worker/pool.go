package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Task is one unit of work run on a pool worker.
type Task func(ctx context.Context) error

// Pool bounds how many download jobs run at once. Submit does not block:
// when every worker is busy and the queue is full the task is rejected,
// which the web layer turns into a 503.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan Task
	quit chan struct{}
	n    int
	log  *zerolog.Logger
}

func NewPool(workers int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	l := logger.With().Str("component", "WorkerPool").Logger()
	return &Pool{
		jobs: make(chan Task, workers*2),
		quit: make(chan struct{}),
		n:    workers,
		log:  &l,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case task := <-p.jobs:
					if task == nil {
						continue
					}
					if err := task(ctx); err != nil {
						p.log.Error().Err(err).Int("worker", id).Msg("task error")
					}
				}
			}
		}(i)
	}
}

func (p *Pool) Stop() {
	close(p.quit)
	p.wg.Wait()
}

// Spawn adapts the pool to the dispatcher's Spawner contract.
func (p *Pool) Spawn(task func()) error {
	return p.Submit(func(ctx context.Context) error {
		task()
		return nil
	})
}

func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case p.jobs <- task:
		return nil
	default:
		return errors.New("worker queue full")
	}
}

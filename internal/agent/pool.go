package agent

import (
	"sync"

	"github.com/rs/zerolog"
)

const taskQueueSize = 64

// Pool runs pipeline invocations on a fixed set of workers so fire-and-forget
// dispatch stays bounded. Panics are recovered per task.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup
	log   zerolog.Logger
}

// NewPool starts a pool with the given number of workers.
func NewPool(workers int, log zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{
		tasks: make(chan func(), taskQueueSize),
		log:   log.With().Str("component", "pipeline-pool").Logger(),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.runTask(task)
	}
}

func (p *Pool) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Any("panic", r).Msg("pipeline task panicked")
		}
	}()
	task()
}

// Submit enqueues a task. It blocks briefly if the queue is full rather than
// dropping work.
func (p *Pool) Submit(task func()) {
	p.tasks <- task
}

// Shutdown stops accepting tasks and waits for in-flight work to finish.
func (p *Pool) Shutdown() {
	close(p.tasks)
	p.wg.Wait()
}

package compose

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

type composeJob struct {
	leftBytes, rightBytes []byte
	leftLabel, rightLabel string
	chanResult            chan composeResult
}

type composeResult struct {
	rendered *RenderedComparison
	err      error
}

// A Pool runs compositions on a fixed number of worker goroutines, isolating
// the CPU-bound work from the goroutines serving network events so one large
// composition cannot stall unrelated in-flight requests.
type Pool struct {
	Compositor *Compositor
	NumWorkers int // The number of Go routines that will be created to perform the work. Don't change the value after creation or the pool might not be able to stop as expected.
	wg         sync.WaitGroup
	chanQuit   chan int
	chanJob    chan composeJob
	isStarted  bool
	isStopping bool
}

// NewPool creates a composition pool with `numWorkers` workers.
func NewPool(compositor *Compositor, numWorkers int) *Pool {
	return &Pool{
		Compositor: compositor,
		NumWorkers: numWorkers,
		wg:         sync.WaitGroup{},
		chanQuit:   make(chan int),
		chanJob:    make(chan composeJob),
	}
}

// Start starts the pool workers.
func (p *Pool) Start() error {
	if p.isStarted {
		return fmt.Errorf("the composition pool is already started")
	}

	log.Debugf("Creating %v composition workers...", p.NumWorkers)
	for id := 0; id < p.NumWorkers; id++ {
		p.wg.Add(1)
		go p.runWorker(id)
	}

	p.isStarted = true
	log.Infoln("The composition pool is started.")

	return nil
}

func (p *Pool) runWorker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.chanJob:
			rendered, err := p.Compositor.Compose(job.leftBytes, job.rightBytes, job.leftLabel, job.rightLabel)
			if err != nil {
				log.Debugf("Composition worker #%v: composition failed: %v", id, err)
			}
			job.chanResult <- composeResult{rendered: rendered, err: err}
		case <-p.chanQuit:
			return
		}
	}
}

// Stop stops the pool workers.
//
// Returns:
//   a wait group that can be used to block the caller Go routine until all
//   workers have exited
func (p *Pool) Stop() (*sync.WaitGroup, error) {
	if p.isStopping {
		return nil, fmt.Errorf("the composition pool is already stopping")
	} else if !p.isStarted {
		return nil, fmt.Errorf("the composition pool is not started")
	}

	p.isStopping = true

	for id := 0; id < p.NumWorkers; id++ {
		p.chanQuit <- 0
	}

	p.isStarted = false

	return &p.wg, nil
}

// Compose dispatches one composition to the pool and waits for its result or
// for the context to be cancelled.
func (p *Pool) Compose(ctx context.Context, leftBytes, rightBytes []byte, leftLabel, rightLabel string) (*RenderedComparison, error) {
	job := composeJob{
		leftBytes:  leftBytes,
		rightBytes: rightBytes,
		leftLabel:  leftLabel,
		rightLabel: rightLabel,
		chanResult: make(chan composeResult, 1),
	}

	select {
	case p.chanJob <- job:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case result := <-job.chanResult:
		return result.rendered, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

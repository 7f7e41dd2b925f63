package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgallion1/pdfextract/internal/config"
	"github.com/dgallion1/pdfextract/internal/document"
)

var (
	ErrQueueFull = errors.New("job queue is full")
	ErrStopped   = errors.New("orchestrator stopped")
)

// Extractor runs an extraction pipeline over a PDF on disk.
type Extractor interface {
	Process(ctx context.Context, path string, p config.Pipeline) (*document.Document, error)
}

// Orchestrator owns the job store, the bounded queue and the extraction
// workers that drain it.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	extractor Extractor
	log       *slog.Logger
	workers   int
	queueSize int
	sweep     time.Duration

	mu      sync.RWMutex
	stopped bool

	busy   atomic.Int32
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, extractor Extractor, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:      NewJobStore(cfg.JobTTL),
		queue:     make(chan *Job, cfg.MaxQueueSize),
		extractor: extractor,
		log:       log,
		workers:   max(cfg.WorkerCount, 1),
		queueSize: cfg.MaxQueueSize,
		sweep:     sweepInterval(cfg.JobTTL),
	}
}

// sweepInterval checks for expired jobs four times per TTL, capped at five
// minutes.
func sweepInterval(ttl time.Duration) time.Duration {
	return min(max(ttl/4, time.Second), 5*time.Minute)
}

// Start launches the extraction workers and the expiry sweep.
func (o *Orchestrator) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for id := range o.workers {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			o.runWorker(runCtx, NewWorker(o.extractor, o.log.With("worker", id)))
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(o.sweep)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

func (o *Orchestrator) runWorker(ctx context.Context, w *Worker) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-o.queue:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				o.reject(job, "shutdown", ErrStopped)
				continue
			}
			o.busy.Add(1)
			w.Process(ctx, job)
			o.busy.Add(-1)
		}
	}
}

// Stop cancels running extractions and waits for the workers. Jobs still
// queued are failed and their staged uploads removed.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.mu.Unlock()

	o.wg.Wait()

	for job := range o.queue {
		o.reject(job, "shutdown", ErrStopped)
	}
}

// Submit registers job and queues it. A job that cannot be queued is marked
// failed and its staged upload removed.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		o.reject(job, "submit", ErrStopped)
		return ErrStopped
	}
	select {
	case o.queue <- job:
		return nil
	default:
		err := fmt.Errorf("%w (%d)", ErrQueueFull, o.queueSize)
		o.reject(job, "queue_full", err)
		return err
	}
}

func (o *Orchestrator) reject(job *Job, phase string, err error) {
	os.Remove(job.Path())
	job.Fail(phase, err)
	o.log.Warn("job rejected", "job_id", job.ID, "phase", phase, "error", err)
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns the number of jobs waiting for a worker.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Busy returns the number of workers currently extracting.
func (o *Orchestrator) Busy() int {
	return int(o.busy.Load())
}

// JobCount returns the number of jobs still tracked by the store.
func (o *Orchestrator) JobCount() int {
	return o.jobs.Len()
}

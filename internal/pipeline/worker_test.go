package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/pdfextract/internal/config"
	"github.com/dgallion1/pdfextract/internal/document"
)

type fakeExtractor struct {
	mu    sync.Mutex
	doc   *document.Document
	err   error
	calls []config.Pipeline
	block chan struct{}
}

func (f *fakeExtractor) Process(ctx context.Context, path string, p config.Pipeline) (*document.Document, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, p)
	f.mu.Unlock()
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return f.doc, f.err
}

func stagedFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestWorker_Success(t *testing.T) {
	doc := &document.Document{Title: "T", Pages: []document.Page{document.NewPage(1, "x", nil)}}
	ex := &fakeExtractor{doc: doc}
	path := stagedFile(t)
	job := NewJob("a.pdf", path, "", config.PipelineScanned)

	NewWorker(ex, discardLogger()).Process(context.Background(), job)

	if job.Snapshot().Status != StatusCompleted {
		t.Errorf("expected completed, got %q", job.Snapshot().Status)
	}
	if job.Result() != doc {
		t.Error("expected result to be stored")
	}
	if len(ex.calls) != 1 || ex.calls[0] != config.PipelineScanned {
		t.Errorf("expected one scanned call, got %v", ex.calls)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected staged upload to be removed")
	}
}

func TestWorker_Failure(t *testing.T) {
	ex := &fakeExtractor{err: errors.New("render: boom")}
	path := stagedFile(t)
	job := NewJob("a.pdf", path, "", config.PipelineDigital)

	NewWorker(ex, discardLogger()).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected failed, got %q", snap.Status)
	}
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "render: boom" {
		t.Errorf("unexpected errors %v", snap.Progress.Errors)
	}
	if job.Result() != nil {
		t.Error("expected no result")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected staged upload to be removed")
	}
}

func waitFor(t *testing.T, job *Job, status JobStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if job.Snapshot().Status == status {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected status %q, got %q", status, job.Snapshot().Status)
}

func TestOrchestrator_ProcessesSubmittedJobs(t *testing.T) {
	cfg := config.Load()
	cfg.WorkerCount = 2
	ex := &fakeExtractor{doc: &document.Document{Title: "T", Pages: []document.Page{}}}
	o := NewOrchestrator(cfg, ex, discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("a.pdf", stagedFile(t), "", config.PipelineDigital)
	if err := o.Submit(job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitFor(t, job, StatusCompleted)

	if o.GetJob(job.ID) != job {
		t.Error("expected job to be retrievable")
	}
	if o.JobCount() != 1 {
		t.Errorf("expected 1 tracked job, got %d", o.JobCount())
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := config.Load()
	cfg.WorkerCount = 1
	cfg.MaxQueueSize = 1
	ex := &fakeExtractor{doc: &document.Document{Pages: []document.Page{}}, block: make(chan struct{})}
	o := NewOrchestrator(cfg, ex, discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	running := NewJob("a.pdf", stagedFile(t), "", config.PipelineDigital)
	if err := o.Submit(running); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitFor(t, running, StatusExtracting)

	queued := NewJob("b.pdf", stagedFile(t), "", config.PipelineDigital)
	if err := o.Submit(queued); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rejectedPath := stagedFile(t)
	rejected := NewJob("c.pdf", rejectedPath, "", config.PipelineDigital)
	if err := o.Submit(rejected); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if rejected.Snapshot().Status != StatusFailed {
		t.Errorf("expected rejected job to fail, got %q", rejected.Snapshot().Status)
	}
	if _, err := os.Stat(rejectedPath); !os.IsNotExist(err) {
		t.Error("expected rejected upload to be removed")
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
	if o.Busy() != 1 {
		t.Errorf("expected 1 busy worker, got %d", o.Busy())
	}
	close(ex.block)
	waitFor(t, queued, StatusCompleted)
}

func TestOrchestrator_StopFailsQueuedJobs(t *testing.T) {
	cfg := config.Load()
	cfg.WorkerCount = 1
	ex := &fakeExtractor{doc: &document.Document{Pages: []document.Page{}}, block: make(chan struct{})}
	o := NewOrchestrator(cfg, ex, discardLogger())
	o.Start(context.Background())

	running := NewJob("a.pdf", stagedFile(t), "", config.PipelineDigital)
	if err := o.Submit(running); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitFor(t, running, StatusExtracting)

	queuedPath := stagedFile(t)
	queued := NewJob("b.pdf", queuedPath, "", config.PipelineDigital)
	if err := o.Submit(queued); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	o.Stop()
	o.Stop()

	if got := running.Snapshot().Status; got != StatusFailed {
		t.Errorf("expected cancelled job to fail, got %q", got)
	}
	snap := queued.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "shutdown" {
		t.Errorf("expected queued job failed in shutdown, got %q/%q", snap.Status, snap.Phase)
	}
	if _, err := os.Stat(queuedPath); !os.IsNotExist(err) {
		t.Error("expected queued upload to be removed")
	}

	late := NewJob("c.pdf", stagedFile(t), "", config.PipelineDigital)
	if err := o.Submit(late); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestSweepInterval(t *testing.T) {
	tests := map[time.Duration]time.Duration{
		time.Hour:        5 * time.Minute,
		4 * time.Minute:  time.Minute,
		time.Millisecond: time.Second,
	}
	for ttl, want := range tests {
		if got := sweepInterval(ttl); got != want {
			t.Errorf("sweepInterval(%v): expected %v, got %v", ttl, want, got)
		}
	}
}

package pipeline

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Worker processes a single extraction job.
type Worker struct {
	extractor Extractor
	log       *slog.Logger
}

func NewWorker(extractor Extractor, log *slog.Logger) *Worker {
	return &Worker{extractor: extractor, log: log}
}

// Process runs the job's pipeline and records the outcome on the job. The
// staged upload is removed afterwards.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename, "pipeline", job.Pipeline)
	path := job.Path()
	defer os.Remove(path)

	start := time.Now()
	job.SetStatus(StatusExtracting, "extracting")
	doc, err := w.extractor.Process(ctx, path, job.Pipeline)
	if err != nil {
		log.Error("extraction failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		job.Fail("extracting", err)
		return
	}

	job.Complete(doc)
	log.Info("extraction complete",
		"pages", len(doc.Pages),
		"tables", doc.TableCount(),
		"images", doc.ImageCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

package worker

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/log"
)

const (
	// Finished job ids are remembered for this long, up to dedupeSize of them.
	dedupeTTL  = 24 * time.Hour
	dedupeSize = 10000
)

// RowAppender writes rows to the end of a spreadsheet.
type RowAppender interface {
	AppendRows(ctx context.Context, rows [][]string) (string, error)
}

// ExportWorker appends queued export jobs to the spreadsheet.
type ExportWorker struct {
	sheet  RowAppender
	logger *log.Logger
	done   *cache.LRUCache[time.Time]
}

func NewExportWorker(sheet RowAppender, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExportWorker{
		sheet:  sheet,
		logger: logger.WithComponent(log.ComponentWorker),
		done:   cache.NewLRUCache[time.Time](dedupeSize, dedupeTTL),
	}
}

// HandleExportJob appends the job's rows. A job id already appended by this
// worker is skipped, so a redelivery after a lost ack writes nothing twice.
func (w *ExportWorker) HandleExportJob(ctx context.Context, msg *amqp.ExportJobMessage) error {
	if w.seen(msg.JobID) {
		w.logger.InfoContext(ctx, "Skipping already exported job", log.FieldJobID, msg.JobID)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing export job",
		log.FieldJobID, msg.JobID,
		log.FieldCount, len(msg.Rows)-1,
		"month", msg.Filter.Month,
		"year", msg.Filter.Year)

	rng, err := w.sheet.AppendRows(ctx, msg.Rows)
	if err != nil {
		return fmt.Errorf("export job %s: %w", msg.JobID, err)
	}

	w.done.Set(msg.JobID, time.Now())

	w.logger.InfoContext(ctx, "Export job written", log.FieldJobID, msg.JobID, "range", rng)
	return nil
}

func (w *ExportWorker) seen(id string) bool {
	_, ok := w.done.Get(id)
	return ok
}

// CleanExpired forgets job ids old enough that no redelivery is expected.
func (w *ExportWorker) CleanExpired() int {
	return w.done.CleanExpired()
}

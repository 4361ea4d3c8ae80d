package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// JobPublisher queues spreadsheet export jobs.
type JobPublisher interface {
	PublishExportJob(ctx context.Context, msg amqp.ExportJobMessage) error
}

// NewJob builds an export job for txns under filter.
func NewJob(filter core.Filter, txns []core.Transaction, now time.Time) amqp.ExportJobMessage {
	return amqp.ExportJobMessage{
		JobID:     uuid.NewString(),
		Filter:    filter,
		Rows:      Rows(txns),
		CreatedAt: now.UTC(),
	}
}

// QueueSheetExport publishes txns as a spreadsheet export job and returns
// the job id.
func QueueSheetExport(ctx context.Context, pub JobPublisher, filter core.Filter, txns []core.Transaction, now time.Time) (string, error) {
	if len(txns) == 0 {
		return "", ErrNothingToExport
	}
	job := NewJob(filter, txns, now)
	if err := pub.PublishExportJob(ctx, job); err != nil {
		return "", fmt.Errorf("queue sheet export: %w", err)
	}
	return job.JobID, nil
}

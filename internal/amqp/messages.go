package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
)

var ErrEmptyJob = errors.New("export job has no rows")

// ExportJobMessage asks the export worker to append rows to the spreadsheet.
// Rows[0] is the column header.
type ExportJobMessage struct {
	JobID     string      `json:"job_id"`
	Filter    core.Filter `json:"filter"`
	Rows      [][]string  `json:"rows"`
	CreatedAt time.Time   `json:"created_at"`
}

// Validate rejects jobs the worker could never complete.
func (m *ExportJobMessage) Validate() error {
	if m.JobID == "" {
		return fmt.Errorf("export job: missing job id")
	}
	if len(m.Rows) < 2 {
		return ErrEmptyJob
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *ExportJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportJobMessageFromJSON decodes and validates a message body.
func ExportJobMessageFromJSON(data []byte) (*ExportJobMessage, error) {
	var msg ExportJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

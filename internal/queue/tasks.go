// Package queue enqueues and processes snapshot ingestion tasks over
// Redis via asynq.
package queue

import (
	"encoding/json"
	"fmt"
)

// Task types
const (
	TypeIngestSnapshot = "snapshot:ingest"
)

// IngestSnapshotPayload is the payload for snapshot ingestion tasks.
type IngestSnapshotPayload struct {
	SnapshotID string `json:"snapshot_id"`
	DatasetID  string `json:"dataset_id,omitempty"`
}

// NewIngestSnapshotTask creates a new snapshot ingestion task payload.
func NewIngestSnapshotTask(snapshotID, datasetID string) (*IngestSnapshotPayload, error) {
	if snapshotID == "" {
		return nil, fmt.Errorf("snapshot ID is required")
	}
	return &IngestSnapshotPayload{
		SnapshotID: snapshotID,
		DatasetID:  datasetID,
	}, nil
}

// Marshal serializes the payload to JSON.
func (p *IngestSnapshotPayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalIngestSnapshotPayload deserializes JSON to payload.
func UnmarshalIngestSnapshotPayload(data []byte) (*IngestSnapshotPayload, error) {
	var payload IngestSnapshotPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return &payload, nil
}

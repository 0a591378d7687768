package snapshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotSaved is returned by Record when the snapshot was built but could not be stored
var ErrNotSaved = errors.New("snapshot not saved")

// Record is the outcome of one assignment run as handed over by the assignment tool
type Record struct {
	AssignmentData AssignmentData    `json:"assignment_data"`
	Settings       Settings          `json:"settings"`
	Agents         []Agent           `json:"agents"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// DecodeRecord reads one JSON record. Unknown fields are rejected.
func DecodeRecord(r io.Reader) (Record, error) {
	var rec Record
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("failed to decode assignment record: %w", err)
	}
	return rec, nil
}

// Record creates a snapshot from rec and saves it
func (s *Store) Record(rec Record) (Snapshot, error) {
	snapshot, err := s.Create(rec.AssignmentData, rec.Settings, rec.Agents, rec.Metadata)
	if err != nil {
		return Snapshot{}, err
	}
	if !s.Save(snapshot) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotSaved, snapshot.ID)
	}
	return snapshot, nil
}

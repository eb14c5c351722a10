package storage

import (
	"context"

	"github.com/plainq/stamp/timestamp"
)

// Record is a labelled timestamp pair kept by the server.
type Record struct {
	ID    string `json:"id"`
	Label string `json:"label"`

	timestamp.Record
}

// SortOrder of a record listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListRecordsInput holds listing parameters. Records are ordered by ID,
// which follows creation time.
type ListRecordsInput struct {
	Cursor string
	Limit  uint32
	Order  SortOrder
}

// ListRecordsOutput is a page of records.
type ListRecordsOutput struct {
	Records    []Record `json:"records"`
	NextCursor string   `json:"next_cursor,omitempty"`
	HasMore    bool     `json:"has_more"`
}

// Storage encapsulates interaction with record storage.
type Storage interface {
	// CreateRecord creates a record stamped with the current time.
	CreateRecord(ctx context.Context, label string) (*Record, error)

	// GetRecord returns the record with the given id.
	GetRecord(ctx context.Context, id string) (*Record, error)

	// TouchRecord sets the updated time of the record to now.
	TouchRecord(ctx context.Context, id string) (*Record, error)

	// ListRecords returns a page of records.
	ListRecords(ctx context.Context, input ListRecordsInput) (*ListRecordsOutput, error)

	// DeleteRecord deletes the record with the given id.
	DeleteRecord(ctx context.Context, id string) error
}

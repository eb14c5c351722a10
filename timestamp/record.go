package timestamp

// Record tracks when something was created and last updated.
type Record struct {
	Created Timestamp `json:"created"`
	Updated Timestamp `json:"updated"`
}

// NewRecord returns a Record created and updated at the given instant.
func NewRecord(at Timestamp) Record {
	return Record{Created: at, Updated: at}
}

// NewRecordFrom reads the clock and returns a Record created at that instant.
func NewRecordFrom(clock Clock) (Record, error) {
	now, err := NowFrom(clock)
	if err != nil {
		return Record{}, err
	}

	return NewRecord(now), nil
}

// Touch returns a copy of r updated at the given instant.
func (r Record) Touch(at Timestamp) Record {
	r.Updated = at
	return r
}

// HasElapsedSinceUpdate reports whether more than s has passed between
// the last update and now.
func (r Record) HasElapsedSinceUpdate(now Timestamp, s Span) bool {
	return elapsedSince(r.Updated, now, s)
}

// HasElapsedSinceCreated reports whether more than s has passed between
// the creation and now.
func (r Record) HasElapsedSinceCreated(now Timestamp, s Span) bool {
	return elapsedSince(r.Created, now, s)
}

func elapsedSince(from, now Timestamp, s Span) bool {
	deadline, err := from.AddSpan(s)
	if err != nil {
		// The deadline lies beyond Max, nothing can be after it.
		return false
	}

	return deadline.Before(now)
}

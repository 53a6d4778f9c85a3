package receipt

import (
	"errors"
	"strconv"
	"sync"
)

var (
	// ErrIndexOutOfRange is returned when a record index does not exist
	ErrIndexOutOfRange = errors.New("record index out of range")
	// ErrBusy is returned when a batch is submitted while one is running
	ErrBusy = errors.New("a batch is already being processed")
	// ErrNoEditSession is returned when committing without a pending edit
	ErrNoEditSession = errors.New("no edit session in progress")
)

// Store is the in-memory ordered collection of receipt records. It owns the
// cursor, the busy flag, the last-error slot and the single pending edit
// session. All state is transient; Reset drops everything.
//
// One mutex owns every mutation, so cursor updates are serialized with
// appends and a batch's records land in submission order.
type Store struct {
	mu      sync.Mutex
	records []Record
	cursor  int
	busy    bool
	lastErr string
	edit    *EditSession
}

// NewStore creates an empty Store with no previewed record
func NewStore() *Store {
	return &Store{cursor: -1}
}

// Append inserts a record at the end and moves the cursor to it.
// Returns the new record's index.
func (s *Store) Append(rec Record) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	s.cursor = len(s.records) - 1
	return s.cursor
}

// Len returns the number of records
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Record returns a copy of the record at index
func (s *Store) Record(index int) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return Record{}, ErrIndexOutOfRange
	}
	return s.records[index], nil
}

// Records returns a copy of the full sequence in insertion order
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Summaries returns the blob-free listing view of all records
func (s *Store) Summaries() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Summary, 0, len(s.records))
	for i, rec := range s.records {
		out = append(out, Summary{
			Index:            i,
			Date:             rec.Date,
			CompanyName:      rec.CompanyName,
			Category:         rec.Category,
			MealType:         rec.MealType,
			Cost:             rec.Cost,
			OriginalFileName: rec.OriginalFileName,
		})
	}
	return out
}

// EditField updates one field of the record at index. Cost values are parsed
// as floating point with invalid or empty input coerced to 0; every other
// field stores the raw text verbatim. Unknown field names are absorbed
// silently so inline editing never blocks.
func (s *Store) EditField(index int, fieldName, rawValue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return ErrIndexOutOfRange
	}

	rec := &s.records[index]
	switch fieldName {
	case "date":
		rec.Date = rawValue
	case "companyName":
		rec.CompanyName = rawValue
	case "category":
		rec.Category = rawValue
	case "mealType":
		rec.MealType = rawValue
	case "cost":
		cost, err := strconv.ParseFloat(rawValue, 64)
		if err != nil {
			cost = 0
		}
		rec.Cost = cost
	}
	return nil
}

// Delete removes the record at index, compacting the sequence and adjusting
// the cursor: deleting at the cursor re-targets min(index, len-1) or -1 when
// the store empties; deleting before the cursor shifts it down by one;
// deleting after leaves it untouched.
func (s *Store) Delete(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return ErrIndexOutOfRange
	}

	s.records = append(s.records[:index], s.records[index+1:]...)

	switch {
	case len(s.records) == 0:
		s.cursor = -1
	case index < s.cursor:
		s.cursor--
	case index == s.cursor && s.cursor > len(s.records)-1:
		s.cursor = len(s.records) - 1
	}
	return nil
}

// Cursor returns the index of the currently previewed record, or -1
func (s *Store) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// CursorNext advances the cursor, wrapping from the last record to the
// first. Returns the new cursor; -1 when the store is empty.
func (s *Store) CursorNext() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return s.cursor
	}
	s.cursor = (s.cursor + 1) % len(s.records)
	return s.cursor
}

// CursorPrev moves the cursor back, wrapping from the first record to the
// last. Returns the new cursor; -1 when the store is empty.
func (s *Store) CursorPrev() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return s.cursor
	}
	if s.cursor <= 0 {
		s.cursor = len(s.records) - 1
	} else {
		s.cursor--
	}
	return s.cursor
}

// BeginBatch sets the busy flag, rejecting submission when a batch is
// already in flight
func (s *Store) BeginBatch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

// EndBatch clears the busy flag
func (s *Store) EndBatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}

// SetError stores a user-visible error message. Later messages in the same
// batch overwrite earlier ones; only the latest is retained.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = msg
}

// LastError returns the most recent error message, or ""
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// BeginEdit opens an edit session for one field of one record. Any previous
// session is discarded.
func (s *Store) BeginEdit(index int, fieldName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return ErrIndexOutOfRange
	}
	s.edit = &EditSession{RecordIndex: index, FieldName: fieldName}
	return nil
}

// CommitEdit applies the pending value to the session's record and closes
// the session
func (s *Store) CommitEdit(value string) error {
	s.mu.Lock()
	edit := s.edit
	s.edit = nil
	s.mu.Unlock()

	if edit == nil {
		return ErrNoEditSession
	}
	return s.EditField(edit.RecordIndex, edit.FieldName, value)
}

// CancelEdit discards the pending edit session, if any
func (s *Store) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = nil
}

// PendingEdit returns a copy of the open edit session, or nil
func (s *Store) PendingEdit() *EditSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edit == nil {
		return nil
	}
	copied := *s.edit
	return &copied
}

// Reset clears the sequence, the cursor, the pending edit session and the
// error and busy flags
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.cursor = -1
	s.busy = false
	s.lastErr = ""
	s.edit = nil
}

// State returns a snapshot of length, cursor, busy flag and last error
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Length:    len(s.records),
		Cursor:    s.cursor,
		Busy:      s.busy,
		LastError: s.lastErr,
	}
}

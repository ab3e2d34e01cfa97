// Package backoff tracks per-service connection failures and decides when a
// failing service may be retried. State is deliberately tiny: each tracked
// service costs six bytes, so the whole table survives in a few dozen bytes
// of persistent storage on constrained targets.
package backoff

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// RecordSize is the wire size of one encoded failure record.
const RecordSize = 6

// Schedule is the retry delay, in seconds, applied at each failure level.
// 1h, 4h, 12h, 1d, 3d, 1w, 2w, then one mean Gregorian month.
var Schedule = [8]int64{3600, 14400, 43200, 86400, 259200, 604800, 1209600, 2629746}

const (
	maxLevel = 8  // levels past the schedule reuse the last delay
	maxCount = 15 // failure count saturates at the nibble limit
)

var ErrBadRecord = errors.New("backoff: malformed failure record")

// Record is the persistent failure state for one catalog service.
//
// Encoded layout (little-endian):
//
//	byte 0    service index
//	byte 1    level in the high nibble, count in the low nibble
//	bytes 2-5 retry deadline in hours since the Unix epoch
type Record struct {
	Index      uint8
	Level      uint8 // next schedule step, clamped to maxLevel
	Count      uint8 // total failures, saturating
	RetryHours uint32
}

// Encode appends the 6-byte form of r to dst.
func (r Record) Encode(dst []byte) []byte {
	var b [RecordSize]byte
	b[0] = r.Index
	b[1] = r.Level<<4 | r.Count&0x0F
	binary.LittleEndian.PutUint32(b[2:], r.RetryHours)
	return append(dst, b[:]...)
}

// DecodeRecord parses one 6-byte record.
func DecodeRecord(b []byte) (Record, error) {
	if len(b) < RecordSize {
		return Record{}, ErrBadRecord
	}
	r := Record{
		Index:      b[0],
		Level:      b[1] >> 4,
		Count:      b[1] & 0x0F,
		RetryHours: binary.LittleEndian.Uint32(b[2:]),
	}
	if r.Level > maxLevel {
		return Record{}, fmt.Errorf("%w: level %d", ErrBadRecord, r.Level)
	}
	return r, nil
}

// Store holds the failure table for the whole catalog. It is not safe for
// concurrent use; the engine serializes access.
type Store struct {
	records map[uint8]Record
	now     func() int64 // seconds since the Unix epoch
}

// NewStore returns an empty table. now supplies wall time in seconds.
func NewStore(now func() int64) *Store {
	return &Store{records: make(map[uint8]Record), now: now}
}

// Fail records a connection failure. The failure count saturates and the
// retry delay climbs the schedule, topping out at roughly one month.
func (s *Store) Fail(index uint8) Record {
	r := s.records[index]
	r.Index = index
	if r.Count < maxCount {
		r.Count++
	}
	step := r.Level
	if step >= uint8(len(Schedule)) {
		step = uint8(len(Schedule)) - 1
	}
	delay := Schedule[step]
	r.RetryHours = hoursFromSeconds(s.now()) + uint32((delay+3599)/3600)
	if r.Level < maxLevel {
		r.Level++
	}
	s.records[index] = r
	return r
}

// Succeed clears all failure state for a service.
func (s *Store) Succeed(index uint8) {
	delete(s.records, index)
}

// Blocked reports whether the service is still inside its backoff window.
func (s *Store) Blocked(index uint8) bool {
	r, ok := s.records[index]
	if !ok {
		return false
	}
	return hoursFromSeconds(s.now()) < r.RetryHours
}

// Lookup returns the current record for a service, if any.
func (s *Store) Lookup(index uint8) (Record, bool) {
	r, ok := s.records[index]
	return r, ok
}

// Len returns the number of services currently tracked.
func (s *Store) Len() int { return len(s.records) }

// Encode serializes the whole table, records sorted by service index so the
// output is deterministic.
func (s *Store) Encode() []byte {
	out := make([]byte, 0, len(s.records)*RecordSize)
	for i := 0; i < 256; i++ {
		if r, ok := s.records[uint8(i)]; ok {
			out = r.Encode(out)
		}
	}
	return out
}

// Load replaces the table with previously encoded records. Records whose
// retry deadline has already passed are dropped rather than kept stale.
func (s *Store) Load(b []byte) error {
	if len(b)%RecordSize != 0 {
		return fmt.Errorf("%w: %d bytes", ErrBadRecord, len(b))
	}
	nowHours := hoursFromSeconds(s.now())
	loaded := make(map[uint8]Record, len(b)/RecordSize)
	for off := 0; off < len(b); off += RecordSize {
		r, err := DecodeRecord(b[off : off+RecordSize])
		if err != nil {
			return err
		}
		if r.RetryHours <= nowHours {
			continue
		}
		loaded[r.Index] = r
	}
	s.records = loaded
	return nil
}

func hoursFromSeconds(sec int64) uint32 {
	if sec < 0 {
		return 0
	}
	return uint32(sec / 3600)
}

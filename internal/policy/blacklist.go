package policy

import (
	"ntrip-atlas/internal/geo"
)

// MaxBlacklistCells bounds the per-service blacklist.
const MaxBlacklistCells = 8

// BlacklistReason says why a cell was blacklisted.
type BlacklistReason uint8

const (
	// BlacklistManual was set explicitly by the host application.
	BlacklistManual BlacklistReason = iota
	// BlacklistBadData marks a region where the service sent unusable
	// corrections despite claiming coverage.
	BlacklistBadData
	// BlacklistNoMountpoints marks a region where the sourcetable offered
	// nothing nearby.
	BlacklistNoMountpoints
)

func (r BlacklistReason) String() string {
	switch r {
	case BlacklistManual:
		return "manual"
	case BlacklistBadData:
		return "bad data"
	case BlacklistNoMountpoints:
		return "no mountpoints"
	}
	return "unknown"
}

// BlacklistEntry is one blocked one-degree grid cell.
type BlacklistEntry struct {
	Cell    geo.Cell
	Reason  BlacklistReason
	AddedAt int64 // seconds since the Unix epoch
}

// Blacklist remembers, per service, up to eight one-degree grid cells where
// the service should not be offered. It is soft state: it is never
// persisted, and the oldest-touched cell falls out when a ninth arrives.
type Blacklist struct {
	byService map[string][]BlacklistEntry // most recently touched last
	now       func() int64
}

// NewBlacklist returns an empty blacklist. now supplies wall time in seconds.
func NewBlacklist(now func() int64) *Blacklist {
	return &Blacklist{byService: make(map[string][]BlacklistEntry), now: now}
}

// Add blacklists the cell containing the position for one service.
// Re-adding a cell refreshes its age instead of duplicating it.
func (b *Blacklist) Add(serviceID string, lat, lon float64, reason BlacklistReason) {
	cell := geo.GridCell(lat, lon)
	entries := b.byService[serviceID]
	for i, e := range entries {
		if e.Cell == cell {
			entries = append(append(entries[:i:i], entries[i+1:]...),
				BlacklistEntry{Cell: cell, Reason: reason, AddedAt: b.now()})
			b.byService[serviceID] = entries
			return
		}
	}
	if len(entries) >= MaxBlacklistCells {
		entries = entries[1:]
	}
	b.byService[serviceID] = append(entries,
		BlacklistEntry{Cell: cell, Reason: reason, AddedAt: b.now()})
}

// Contains reports whether the position falls in a blacklisted cell and
// refreshes that cell's age on a hit.
func (b *Blacklist) Contains(serviceID string, lat, lon float64) bool {
	cell := geo.GridCell(lat, lon)
	entries := b.byService[serviceID]
	for i, e := range entries {
		if e.Cell == cell {
			b.byService[serviceID] = append(append(entries[:i:i], entries[i+1:]...), e)
			return true
		}
	}
	return false
}

// Clear drops all blacklisted cells for a service. An empty serviceID
// clears everything.
func (b *Blacklist) Clear(serviceID string) {
	if serviceID == "" {
		b.byService = make(map[string][]BlacklistEntry)
		return
	}
	delete(b.byService, serviceID)
}

// Entries returns the current cells for a service, oldest first.
func (b *Blacklist) Entries(serviceID string) []BlacklistEntry {
	entries := b.byService[serviceID]
	out := make([]BlacklistEntry, len(entries))
	copy(out, entries)
	return out
}

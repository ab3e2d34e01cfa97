// Package atlas is the discovery engine: given a position it walks the
// compiled-in service catalog through the spatial index and policy filter,
// streams candidate sourcetables, and returns a ready-to-dial connection
// recipe for the best mountpoint found. All state lives in the Engine
// value; two engines never share anything but the read-only catalog.
package atlas

import (
	"errors"
	"fmt"
)

// Sentinel errors. Discovery wraps these with candidate detail; test with
// errors.Is.
var (
	// ErrInvalidParam marks out-of-range coordinates or malformed input.
	ErrInvalidParam = errors.New("atlas: invalid parameter")
	// ErrNoServices means the candidate list was empty after filtering.
	ErrNoServices = errors.New("atlas: no services cover this position")
	// ErrAllServicesFailed means every candidate was tried and none
	// produced a usable mountpoint.
	ErrAllServicesFailed = errors.New("atlas: all candidate services failed")
	// ErrServiceFailed marks a single candidate that produced no result.
	ErrServiceFailed = errors.New("atlas: service produced no mountpoint")
	// ErrNotFound marks an unknown service ID or absent stored entry.
	ErrNotFound = errors.New("atlas: not found")
	// ErrNoDiscoveryIndex means the engine was used before initialization.
	ErrNoDiscoveryIndex = errors.New("atlas: discovery index not built")
)

// Result is a complete connection recipe. Every field is copied out of the
// engine; holding a Result never pins catalog or parser state.
type Result struct {
	ServiceID string
	Provider  string

	Host string
	Port uint16
	TLS  bool

	Mountpoint   string
	Format       string
	NMEARequired bool

	Username string
	Password string

	MountLat   float64
	MountLon   float64
	DistanceKm float64
	Score      uint8
}

// URL renders the caster endpoint for display.
func (r Result) URL() string {
	scheme := "ntrip"
	if r.TLS {
		scheme = "ntrips"
	}
	return fmt.Sprintf("%s://%s:%d/%s", scheme, r.Host, r.Port, r.Mountpoint)
}

// Package platform isolates everything the discovery engine needs from the
// outside world: streaming HTTP, NMEA delivery, persistent storage for
// credentials and failure history, and time. Hosts on unusual targets
// implement Platform once; everything above it is portable.
package platform

import (
	"context"
	"errors"
	"net"
)

var (
	ErrTimeout     = errors.New("platform: request timed out")
	ErrUnreachable = errors.New("platform: host unreachable")
	ErrNotStored   = errors.New("platform: no stored value")
)

// StreamFunc receives response body chunks as they arrive. Returning true
// stops the transfer early; that is the normal path, not an error.
type StreamFunc func(chunk []byte) (stop bool)

// Platform is the host environment contract.
type Platform interface {
	// HTTPStream issues a GET against an NTRIP caster and feeds the
	// response body to sink chunk by chunk. Casters speaking the pre-HTTP
	// NTRIP 1.0 dialect ("SOURCETABLE 200 OK") must be handled too.
	HTTPStream(ctx context.Context, host string, port uint16, useTLS bool, path string, sink StreamFunc) error

	// SendNMEA writes one sentence to an established caster connection.
	// VRS networks need a GGA before they start sending corrections.
	SendNMEA(conn net.Conn, sentence string) error

	// Credential storage. LoadCredential returns ErrNotStored when the
	// key has never been stored.
	StoreCredential(key, value string) error
	LoadCredential(key string) (string, error)

	// Failure history persistence. The engine hands over an opaque blob;
	// LoadFailures returns ErrNotStored when none exists.
	StoreFailures(data []byte) error
	LoadFailures() ([]byte, error)
	ClearFailures() error

	// NowSeconds is wall time for failure timestamps; NowMillis feeds
	// elapsed-time measurement in diagnostics.
	NowSeconds() int64
	NowMillis() int64
}

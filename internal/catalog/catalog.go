// Package catalog holds the compiled-in table of NTRIP services.
//
// Each service is stored in a compact fixed-size record: the hostname, port
// and a bit-packed flag byte, a coverage rectangle in signed centi-degrees,
// and indices into a shared provider-name table. The table is generated by
// cmd/atlasgen from YAML definitions and is read-only for the life of the
// process.
package catalog

import (
	"fmt"

	"ntrip-atlas/internal/geo"
)

// Limits carried over from the wire records; the generator enforces them.
const (
	MaxHostnameLen  = 31
	MaxServiceIDLen = 31
)

// AuthMethod is the authentication scheme a service requires.
type AuthMethod uint8

const (
	AuthNone AuthMethod = iota
	AuthBasic
	AuthDigest
)

func (a AuthMethod) String() string {
	switch a {
	case AuthNone:
		return "none"
	case AuthBasic:
		return "basic"
	case AuthDigest:
		return "digest"
	}
	return fmt.Sprintf("auth(%d)", uint8(a))
}

// NetworkType classifies who operates a service.
type NetworkType uint8

const (
	NetworkGovernment NetworkType = iota
	NetworkCommercial
	NetworkCommunity
	NetworkResearch
)

func (n NetworkType) String() string {
	switch n {
	case NetworkGovernment:
		return "government"
	case NetworkCommercial:
		return "commercial"
	case NetworkCommunity:
		return "community"
	case NetworkResearch:
		return "research"
	}
	return fmt.Sprintf("network(%d)", uint8(n))
}

// Flags is the bit-packed capability byte of a compact service record.
type Flags uint8

const (
	FlagTLS Flags = 1 << iota
	FlagAuthBasic
	FlagAuthDigest
	FlagRequiresReg
	FlagFreeAccess
	FlagGlobal
	FlagPaid
)

// Coverage is the tagged geographic extent of a service: either a regional
// rectangle or global. The set is closed; global services never enter the
// spatial index and are appended as a fallback set instead.
type Coverage interface {
	Bounds() geo.Rect
	global() bool
}

// Regional covers the given rectangle.
type Regional struct {
	Rect geo.Rect
}

func (r Regional) Bounds() geo.Rect { return r.Rect }
func (Regional) global() bool       { return false }

// Global covers the whole earth.
type Global struct{}

func (Global) Bounds() geo.Rect {
	return geo.Rect{LatMin: -9000, LatMax: 9000, LonMin: -18000, LonMax: 18000}
}
func (Global) global() bool { return true }

// Service is one compact catalog entry. Strings reference the read-only
// generated tables; nothing here is mutated after init.
type Service struct {
	// ID is the stable service identifier, also the credential and
	// backoff key. At most MaxServiceIDLen bytes.
	ID string

	Hostname string
	Port     uint16
	Flags    Flags

	Coverage Coverage

	ProviderIndex uint8
	Network       NetworkType
	Quality       uint8 // 1..5
}

// IsGlobal reports whether the service covers the whole earth.
func (s *Service) IsGlobal() bool { return s.Coverage.global() }

// TLS reports whether the sourcetable endpoint expects TLS.
func (s *Service) TLS() bool { return s.Flags&FlagTLS != 0 }

// Paid reports whether the service is a paid offering.
func (s *Service) Paid() bool { return s.Flags&FlagPaid != 0 }

// FreeAccess reports whether the service is typically usable without payment.
func (s *Service) FreeAccess() bool { return s.Flags&FlagFreeAccess != 0 }

// RequiresRegistration reports whether an account must exist before use.
func (s *Service) RequiresRegistration() bool { return s.Flags&FlagRequiresReg != 0 }

// Auth returns the authentication scheme encoded in the flags. Digest wins
// when both bits are set.
func (s *Service) Auth() AuthMethod {
	if s.Flags&FlagAuthDigest != 0 {
		return AuthDigest
	}
	if s.Flags&FlagAuthBasic != 0 {
		return AuthBasic
	}
	return AuthNone
}

// Provider returns the human-readable provider name.
func (s *Service) Provider() string { return ProviderName(s.ProviderIndex) }

// Services returns the compiled-in catalog. The slice and its entries are
// read-only; callers must not mutate them.
func Services() []Service { return services }

// ByID returns the catalog entry with the given identifier.
func ByID(id string) (*Service, bool) {
	for i := range services {
		if services[i].ID == id {
			return &services[i], true
		}
	}
	return nil, false
}

// ProviderName maps a provider index to its display name.
func ProviderName(idx uint8) string {
	if int(idx) >= len(providerNames) {
		return "Unknown"
	}
	return providerNames[idx]
}

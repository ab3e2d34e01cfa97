package catalog

import (
	"fmt"
	"math"

	"ntrip-atlas/internal/geo"
)

// Full is the expanded, human-oriented form of a service record. It exists
// for tooling and diagnostics; the engine works on the compact Service.
type Full struct {
	ID       string
	Provider string
	Hostname string
	Port     uint16
	TLS      bool

	Network              NetworkType
	Auth                 AuthMethod
	RequiresRegistration bool
	FreeAccess           bool
	Paid                 bool
	Global               bool
	Quality              uint8

	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

// Compress packs a full record into the compact form. Coordinates are
// rounded to centi-degrees (+/-0.01 degree precision).
func Compress(f Full) (Service, error) {
	if len(f.Hostname) == 0 || len(f.Hostname) > MaxHostnameLen {
		return Service{}, fmt.Errorf("catalog: hostname %q length out of range", f.Hostname)
	}
	if len(f.ID) == 0 || len(f.ID) > MaxServiceIDLen {
		return Service{}, fmt.Errorf("catalog: service id %q length out of range", f.ID)
	}
	if f.Quality < 1 || f.Quality > 5 {
		return Service{}, fmt.Errorf("catalog: quality %d out of range 1..5", f.Quality)
	}
	if !f.Global && f.LatMin > f.LatMax {
		return Service{}, fmt.Errorf("catalog: latitude range inverted for %s", f.ID)
	}

	var flags Flags
	if f.TLS {
		flags |= FlagTLS
	}
	switch f.Auth {
	case AuthBasic:
		flags |= FlagAuthBasic
	case AuthDigest:
		flags |= FlagAuthDigest
	}
	if f.RequiresRegistration {
		flags |= FlagRequiresReg
	}
	if f.FreeAccess {
		flags |= FlagFreeAccess
	}
	if f.Paid {
		flags |= FlagPaid
	}

	var cov Coverage
	if f.Global {
		flags |= FlagGlobal
		cov = Global{}
	} else {
		cov = Regional{Rect: rectFromDegrees(f.LatMin, f.LatMax, f.LonMin, f.LonMax)}
	}

	return Service{
		ID:            f.ID,
		Hostname:      f.Hostname,
		Port:          f.Port,
		Flags:         flags,
		Coverage:      cov,
		ProviderIndex: providerIndex(f.Provider),
		Network:       f.Network,
		Quality:       f.Quality,
	}, nil
}

// Expand unpacks a compact record. Coordinates come back at centi-degree
// precision.
func Expand(s Service) Full {
	r := s.Coverage.Bounds()
	return Full{
		ID:                   s.ID,
		Provider:             s.Provider(),
		Hostname:             s.Hostname,
		Port:                 s.Port,
		TLS:                  s.TLS(),
		Network:              s.Network,
		Auth:                 s.Auth(),
		RequiresRegistration: s.RequiresRegistration(),
		FreeAccess:           s.FreeAccess(),
		Paid:                 s.Paid(),
		Global:               s.IsGlobal(),
		Quality:              s.Quality,
		LatMin:               float64(r.LatMin) / 100.0,
		LatMax:               float64(r.LatMax) / 100.0,
		LonMin:               float64(r.LonMin) / 100.0,
		LonMax:               float64(r.LonMax) / 100.0,
	}
}

func rectFromDegrees(latMin, latMax, lonMin, lonMax float64) geo.Rect {
	return geo.Rect{
		LatMin: int16(math.Round(latMin * 100)),
		LatMax: int16(math.Round(latMax * 100)),
		LonMin: int16(math.Round(lonMin * 100)),
		LonMax: int16(math.Round(lonMax * 100)),
	}
}

func providerIndex(name string) uint8 {
	for i, n := range providerNames {
		if n == name {
			return uint8(i)
		}
	}
	return 255
}

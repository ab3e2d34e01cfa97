// Package sourcetable parses NTRIP caster sourcetables as they stream in
// and picks the most suitable mountpoint for a position. The parser never
// buffers the full response: bytes are fed chunk by chunk, lines are
// assembled in a fixed 256-byte buffer, and only the best candidate seen so
// far is retained. A caster advertising thousands of streams costs the same
// memory as one advertising three.
package sourcetable

import (
	"strconv"
	"strings"

	"ntrip-atlas/internal/catalog"
	"ntrip-atlas/internal/geo"
	"ntrip-atlas/internal/selection"
)

// LineBufferSize bounds a single sourcetable line. Longer lines are
// discarded rather than grown.
const LineBufferSize = 256

// Early termination: a mountpoint this good this close ends the stream.
const (
	stopScore      = 80
	stopDistanceKm = 5.0
)

// Mountpoint is one STR record from a sourcetable, scored for a position.
//
// STR field order: type;mountpoint;identifier;format;format-details;carrier;
// nav-system;network;country;lat;lon;nmea;solution;generator;compression;
// auth;fee;bitrate
type Mountpoint struct {
	Name          string
	Identifier    string
	Format        string
	FormatDetails string
	NavSystem     string
	Lat           float64
	Lon           float64
	NMEARequired  bool
	Generator     string
	Auth          catalog.AuthMethod
	FeeRequired   bool
	Bitrate       uint32

	DistanceKm float64
	Score      uint8
}

// ParseSTR parses one sourcetable line. ok is false for non-STR lines and
// for STR records missing a mountpoint name or position; casters routinely
// publish streams with zeroed coordinates, and those are useless here.
func ParseSTR(line string) (mp Mountpoint, ok bool) {
	fields := strings.Split(line, ";")
	if fields[0] != "STR" {
		return Mountpoint{}, false
	}
	for i, f := range fields {
		switch i {
		case 1:
			mp.Name = f
		case 2:
			mp.Identifier = f
		case 3:
			mp.Format = f
		case 4:
			mp.FormatDetails = f
		case 6:
			mp.NavSystem = f
		case 9:
			mp.Lat, _ = strconv.ParseFloat(f, 64)
		case 10:
			mp.Lon, _ = strconv.ParseFloat(f, 64)
		case 11:
			mp.NMEARequired = f == "1"
		case 13:
			mp.Generator = f
		case 15:
			switch f {
			case "B":
				mp.Auth = catalog.AuthBasic
			case "D":
				mp.Auth = catalog.AuthDigest
			default:
				mp.Auth = catalog.AuthNone
			}
		case 16:
			mp.FeeRequired = f == "Y"
		case 17:
			if n, err := strconv.ParseUint(f, 10, 32); err == nil {
				mp.Bitrate = uint32(n)
			}
		}
	}
	if mp.Name == "" || (mp.Lat == 0 && mp.Lon == 0) {
		return Mountpoint{}, false
	}
	return mp, true
}

// score rates a mountpoint 0-100 for a rover at the given distance.
// Distance dominates (40), then service reliability (30), format and
// constellation compatibility (20), and access ease (10).
func score(mp *Mountpoint, quality uint8) uint8 {
	var s uint8
	switch {
	case mp.DistanceKm < 10:
		s += 40
	case mp.DistanceKm < 50:
		s += 30
	case mp.DistanceKm < 100:
		s += 20
	case mp.DistanceKm < 200:
		s += 10
	}
	s += quality * 6
	if strings.Contains(mp.Format, "RTCM3") {
		s += 15
	}
	if strings.Contains(mp.NavSystem, "GPS") {
		s += 5
	}
	if mp.Auth == catalog.AuthNone {
		s += 5
	}
	if !mp.FeeRequired {
		s += 5
	}
	return s
}

// Selector consumes a streamed sourcetable and keeps the best mountpoint
// for one service query.
type Selector struct {
	lat, lon float64
	quality  uint8
	crit     *selection.Criteria

	line    [LineBufferSize]byte
	lineLen int

	best     Mountpoint
	found    bool
	complete bool
}

// NewSelector prepares a selector for a rover position. quality is the
// queried service's reliability rating; crit may be nil.
func NewSelector(lat, lon float64, quality uint8, crit *selection.Criteria) *Selector {
	return &Selector{lat: lat, lon: lon, quality: quality, crit: crit}
}

// Feed processes one chunk of response body. It returns true when streaming
// should stop, either because the table ended or because an early
// termination candidate was found.
func (s *Selector) Feed(chunk []byte) (stop bool) {
	for _, c := range chunk {
		if c == '\n' || c == '\r' {
			if s.lineLen > 0 {
				line := string(s.line[:s.lineLen])
				s.lineLen = 0
				if strings.HasPrefix(line, "ENDSOURCETABLE") {
					s.complete = true
					return true
				}
				if s.consume(line) {
					return true
				}
			}
			continue
		}
		if s.lineLen < LineBufferSize-1 {
			s.line[s.lineLen] = c
			s.lineLen++
		} else {
			// Oversized line: drop it wholesale.
			s.lineLen = 0
		}
	}
	return false
}

func (s *Selector) consume(line string) (stop bool) {
	mp, ok := ParseSTR(line)
	if !ok {
		return false
	}
	mp.DistanceKm = geo.Distance(s.lat, s.lon, mp.Lat, mp.Lon)

	if c := s.crit; c != nil {
		if c.MaxDistanceKm > 0 && mp.DistanceKm > c.MaxDistanceKm {
			return false
		}
		if c.FreeOnly && mp.FeeRequired {
			return false
		}
		if c.Format != "" &&
			!strings.Contains(mp.Format, c.Format) &&
			!strings.Contains(mp.FormatDetails, c.Format) {
			return false
		}
		if c.Constellation != "" && !strings.Contains(mp.NavSystem, c.Constellation) {
			return false
		}
		if c.MinBitrate > 0 && mp.Bitrate > 0 && mp.Bitrate < c.MinBitrate {
			return false
		}
	}

	mp.Score = score(&mp, s.quality)
	if !s.found || mp.Score > s.best.Score {
		s.best = mp
		s.found = true
		if mp.Score >= stopScore && mp.DistanceKm <= stopDistanceKm {
			return true
		}
	}
	return false
}

// Best returns the highest-scoring mountpoint seen so far.
func (s *Selector) Best() (Mountpoint, bool) {
	return s.best, s.found
}

// Complete reports whether the ENDSOURCETABLE terminator arrived.
func (s *Selector) Complete() bool { return s.complete }

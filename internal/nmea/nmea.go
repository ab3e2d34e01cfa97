// Package nmea handles the two NMEA 0183 jobs correction discovery needs:
// reading a position fix from a GNSS receiver (RMC/GGA) and formatting the
// GGA sentence a VRS caster expects before it will send corrections.
package nmea

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sentence is one validated NMEA sentence: talker-normalized type plus the
// comma-split payload (checksum stripped).
type Sentence struct {
	Type   string
	Fields []string
}

// ParseSentence validates framing and checksum. Talker prefixes are
// normalized away, so GPGGA and GNGGA both come back as type "GGA".
func ParseSentence(line string) (Sentence, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return Sentence{}, fmt.Errorf("nmea: missing '$'")
	}
	star := strings.LastIndexByte(line, '*')
	if star == -1 {
		return Sentence{}, fmt.Errorf("nmea: missing checksum")
	}
	payload := line[1:star]
	ck := strings.TrimSpace(line[star+1:])
	if len(ck) < 2 {
		return Sentence{}, fmt.Errorf("nmea: short checksum")
	}
	want, err := hex.DecodeString(ck[:2])
	if err != nil || len(want) != 1 {
		return Sentence{}, fmt.Errorf("nmea: bad checksum")
	}
	if checksum(payload) != want[0] {
		return Sentence{}, fmt.Errorf("nmea: checksum mismatch")
	}

	parts := strings.Split(payload, ",")
	typeField := parts[0]
	if len(typeField) < 3 {
		return Sentence{}, fmt.Errorf("nmea: short type")
	}
	t := typeField
	if len(t) > 3 {
		t = t[len(t)-3:]
	}
	return Sentence{Type: strings.ToUpper(t), Fields: parts}, nil
}

// checksum XORs the payload between '$' and '*'.
func checksum(payload string) byte {
	var ck byte
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return ck
}

// Fix is the accumulated position state from a stream of sentences.
type Fix struct {
	LatDeg float64
	LonDeg float64
	AltM   float64

	Quality    int
	Satellites int
	HDOP       float64

	Valid bool
	Time  time.Time
}

// Apply folds one sentence into the fix. It returns true when the sentence
// advanced the position.
func (fx *Fix) Apply(nowUTC time.Time, s Sentence) bool {
	switch s.Type {
	case "RMC":
		return fx.applyRMC(nowUTC, s.Fields)
	case "GGA":
		return fx.applyGGA(nowUTC, s.Fields)
	default:
		return false
	}
}

// RMC fields: 1 time, 2 status (A=active), 3/4 lat, 5/6 lon, 7 speed,
// 8 course, 9 date.
func (fx *Fix) applyRMC(nowUTC time.Time, f []string) bool {
	if len(f) < 10 {
		return false
	}
	if strings.TrimSpace(f[2]) != "A" {
		// Void fixes do not invalidate a previous good one.
		return false
	}
	lat, latOK := parseLatLon(f[3], f[4])
	lon, lonOK := parseLatLon(f[5], f[6])
	if !latOK || !lonOK {
		return false
	}
	fx.LatDeg, fx.LonDeg = lat, lon
	fx.Valid = true
	fx.Time = nowUTC
	return true
}

// GGA fields: 1 time, 2/3 lat, 4/5 lon, 6 quality, 7 satellites, 8 HDOP,
// 9 altitude (meters).
func (fx *Fix) applyGGA(nowUTC time.Time, f []string) bool {
	if len(f) < 11 {
		return false
	}
	q := strings.TrimSpace(f[6])
	if q == "" || q == "0" {
		return false
	}
	if n, err := strconv.Atoi(q); err == nil {
		fx.Quality = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(f[7])); err == nil {
		fx.Satellites = n
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(f[8]), 64); err == nil {
		fx.HDOP = v
	}
	lat, latOK := parseLatLon(f[2], f[3])
	lon, lonOK := parseLatLon(f[4], f[5])
	if !latOK || !lonOK {
		return false
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(f[9]), 64); err == nil {
		fx.AltM = v
	}
	fx.LatDeg, fx.LonDeg = lat, lon
	fx.Valid = true
	fx.Time = nowUTC
	return true
}

// parseLatLon converts NMEA ddmm.mmmm plus hemisphere to signed decimal
// degrees. The last two digits of the integer part are minutes.
func parseLatLon(v, hemi string) (float64, bool) {
	v = strings.TrimSpace(v)
	hemi = strings.TrimSpace(strings.ToUpper(hemi))
	if v == "" || (hemi != "N" && hemi != "S" && hemi != "E" && hemi != "W") {
		return 0, false
	}
	dot := strings.IndexByte(v, '.')
	intPart := v
	if dot != -1 {
		intPart = v[:dot]
	}
	if len(intPart) < 3 {
		return 0, false
	}
	deg, err := strconv.Atoi(intPart[:len(intPart)-2])
	if err != nil {
		return 0, false
	}
	mins, err := strconv.ParseFloat(v[len(intPart)-2:], 64)
	if err != nil {
		return 0, false
	}
	dec := float64(deg) + mins/60.0
	if hemi == "S" || hemi == "W" {
		dec = -dec
	}
	return dec, true
}

package nmea

import (
	"fmt"
	"time"
)

// FormatGGA builds the $GPGGA sentence a VRS caster needs to position its
// virtual reference station, CRLF-terminated with checksum.
//
// Example:
//
//	$GPGGA,123519.00,4807.03810,N,01131.00000,E,1,08,1.0,545.4,M,0.0,M,,*hh
//
// fixQuality uses the GGA convention (1=GPS, 2=DGPS, 4=RTK fixed, 5=RTK
// float). A plain autonomous fix is fine; the caster only needs a rough
// position to pick reference data.
func FormatGGA(lat, lon, altM float64, fixQuality, satellites int, at time.Time) (string, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return "", fmt.Errorf("nmea: position %v,%v out of range", lat, lon)
	}
	if fixQuality < 0 || fixQuality > 9 || satellites < 0 || satellites > 99 {
		return "", fmt.Errorf("nmea: fix quality %d / satellites %d out of range", fixQuality, satellites)
	}

	utc := at.UTC()
	latStr, latDir := toDegreesMinutes(lat, true)
	lonStr, lonDir := toDegreesMinutes(lon, false)

	// HDOP and geoid separation are nominal; VRS positioning does not
	// depend on them.
	payload := fmt.Sprintf("GPGGA,%02d%02d%02d.00,%s,%c,%s,%c,%d,%02d,1.0,%.1f,M,0.0,M,,",
		utc.Hour(), utc.Minute(), utc.Second(),
		latStr, latDir, lonStr, lonDir,
		fixQuality, satellites, altM)

	return fmt.Sprintf("$%s*%02X\r\n", payload, checksum(payload)), nil
}

// toDegreesMinutes renders decimal degrees as NMEA DDMM.MMMMM (latitude)
// or DDDMM.MMMMM (longitude) plus the hemisphere letter.
func toDegreesMinutes(v float64, isLat bool) (string, byte) {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	deg := int(abs)
	mins := (abs - float64(deg)) * 60.0

	if isLat {
		dir := byte('N')
		if v < 0 {
			dir = 'S'
		}
		return fmt.Sprintf("%02d%08.5f", deg, mins), dir
	}
	dir := byte('E')
	if v < 0 {
		dir = 'W'
	}
	return fmt.Sprintf("%03d%08.5f", deg, mins), dir
}

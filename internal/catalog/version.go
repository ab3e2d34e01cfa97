package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Version identifies a compiled-in service database. The format is
// YYYYMMDD.SS, where SS is the revision within the day.
type Version struct {
	Date     uint32
	Revision uint8
}

// ParseVersion parses a YYYYMMDD.SS version string.
func ParseVersion(s string) (Version, error) {
	date, rev, ok := strings.Cut(s, ".")
	if !ok || len(date) != 8 || len(rev) != 2 {
		return Version{}, fmt.Errorf("catalog: malformed database version %q", s)
	}
	d, err := strconv.ParseUint(date, 10, 32)
	if err != nil {
		return Version{}, fmt.Errorf("catalog: malformed database version %q", s)
	}
	r, err := strconv.ParseUint(rev, 10, 8)
	if err != nil {
		return Version{}, fmt.Errorf("catalog: malformed database version %q", s)
	}
	return Version{Date: uint32(d), Revision: uint8(r)}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%08d.%02d", v.Date, v.Revision)
}

// Newer reports whether v is a later database build than o.
func (v Version) Newer(o Version) bool {
	if v.Date != o.Date {
		return v.Date > o.Date
	}
	return v.Revision > o.Revision
}

// Schema version of the compact record layout this library understands.
// Major bumps change the layout; minor bumps add fields readers may ignore.
const (
	SchemaMajor = 1
	SchemaMinor = 1
)

// Compatibility classifies a database schema against this library.
type Compatibility uint8

const (
	Compatible    Compatibility = iota
	BackwardOnly                // newer minor; known fields remain readable
	UpgradeNeeded               // newer major; layout has breaking changes
)

func (c Compatibility) String() string {
	switch c {
	case Compatible:
		return "compatible"
	case BackwardOnly:
		return "backward-only"
	case UpgradeNeeded:
		return "upgrade-needed"
	}
	return fmt.Sprintf("compatibility(%d)", uint8(c))
}

// CheckSchema classifies a database schema version against this library.
// Older databases always read; a newer minor within the same major reads
// with unknown fields ignored; a newer major is an error.
func CheckSchema(major, minor uint16) (Compatibility, error) {
	switch {
	case major < SchemaMajor:
		return Compatible, nil
	case major == SchemaMajor && minor <= SchemaMinor:
		return Compatible, nil
	case major == SchemaMajor:
		return BackwardOnly, nil
	}
	return UpgradeNeeded, fmt.Errorf("catalog: database schema %d.%d needs a newer library (supports %d.%d)",
		major, minor, SchemaMajor, SchemaMinor)
}

// Package selection holds the caller-facing knobs that steer service and
// mountpoint choice. It is a leaf package so that policy, sourcetable and
// the engine can share one vocabulary without import cycles.
package selection

// PaymentPriority orders candidate services by payment model before quality.
type PaymentPriority uint8

const (
	// FreeFirst prefers free services, falling back to paid. Default.
	FreeFirst PaymentPriority = iota
	// PaidFirst prefers paid services, falling back to free.
	PaidFirst
)

func (p PaymentPriority) String() string {
	switch p {
	case FreeFirst:
		return "free-first"
	case PaidFirst:
		return "paid-first"
	}
	return "unknown"
}

// Criteria narrows the candidate set before scoring. The zero value
// applies no filtering beyond the engine's built-in policy checks.
type Criteria struct {
	// Format requires the mountpoint format to contain this substring,
	// case-insensitively (for example "RTCM 3").
	Format string
	// Constellation requires the mountpoint nav-system field to contain
	// this substring (for example "GPS" or "GLO").
	Constellation string
	// MinBitrate rejects mountpoints advertising less than this, in bps.
	// Zero means no minimum; mountpoints that advertise no bitrate pass.
	MinBitrate uint32
	// MaxDistanceKm rejects mountpoints farther than this from the rover.
	// Zero means no distance limit.
	MaxDistanceKm float64
	// MinQuality rejects services with a reliability rating below this (1..5).
	MinQuality uint8
	// FreeOnly rejects paid services outright.
	FreeOnly bool
	// MaxAuth rejects services that demand a stronger authentication
	// method than the caller can supply.
	MaxAuth AuthLimit
	// PreferredNetwork breaks ties toward a network type when set.
	PreferredNetwork string
}

// AuthLimit caps how much authentication a caller is prepared to do.
type AuthLimit uint8

const (
	// AnyAuth accepts every authentication method. Zero value.
	AnyAuth AuthLimit = iota
	// NoAuth accepts only open services.
	NoAuth
	// BasicAuth accepts open and HTTP Basic services, but not Digest.
	BasicAuth
)

// Package policy decides which catalog services are actually worth dialing:
// it screens out placeholder entries, services inside a failure backoff
// window, paid services the caller holds no credentials for, services whose
// coverage does not contain the rover, and blacklisted positions, then
// orders the survivors by payment preference and quality.
package policy

import (
	"sort"
	"strings"

	"ntrip-atlas/internal/backoff"
	"ntrip-atlas/internal/catalog"
	"ntrip-atlas/internal/creds"
	"ntrip-atlas/internal/geo"
	"ntrip-atlas/internal/selection"
)

// Verdict explains why a service was kept or dropped.
type Verdict uint8

const (
	Accepted Verdict = iota
	RejectedPlaceholder
	RejectedCoverage
	RejectedBackoff
	RejectedCredentials
	RejectedBlacklist
	RejectedCriteria
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case RejectedPlaceholder:
		return "placeholder hostname"
	case RejectedCoverage:
		return "outside coverage"
	case RejectedBackoff:
		return "in backoff window"
	case RejectedCredentials:
		return "paid service without credentials"
	case RejectedBlacklist:
		return "position blacklisted"
	case RejectedCriteria:
		return "criteria mismatch"
	}
	return "unknown"
}

// placeholderSuffixes are hostname endings that mark a database entry as a
// template rather than a reachable caster. rtk2go.com is real despite the
// example-style default credentials the community uses there.
var placeholderSuffixes = []string{
	".example.com",
	".example.org",
	".example.net",
	".invalid",
	".test",
	".localdomain",
}

// IsPlaceholder reports whether a hostname cannot possibly be a live caster.
func IsPlaceholder(hostname string) bool {
	h := strings.ToLower(hostname)
	if h == "" || h == "localhost" || h == "127.0.0.1" || h == "::1" {
		return true
	}
	for _, suf := range placeholderSuffixes {
		if strings.HasSuffix(h, suf) || h == suf[1:] {
			return true
		}
	}
	return false
}

// Candidate is one service that survived filtering, with the catalog index
// the engine uses for failure tracking.
type Candidate struct {
	Index   uint16
	Service catalog.Service
}

// Rejection records one dropped service for diagnostics.
type Rejection struct {
	ID      string
	Verdict Verdict
}

// Checks bundles the mutable state consulted during filtering. Nil fields
// skip the corresponding check.
type Checks struct {
	Failures    *backoff.Store
	Credentials *creds.Store
	Blacklist   *Blacklist
}

// Filter screens indexed as (index, service) pairs against position, the
// caller's criteria and the engine state, then sorts survivors by payment
// bucket and quality. The input order is preserved inside each bucket.
func Filter(indexed []Candidate, lat, lon float64, crit *selection.Criteria,
	prio selection.PaymentPriority, checks Checks) ([]Candidate, []Rejection) {

	kept := make([]Candidate, 0, len(indexed))
	var rejected []Rejection
	for _, c := range indexed {
		v := evaluate(c, lat, lon, crit, checks)
		if v == Accepted {
			kept = append(kept, c)
		} else {
			rejected = append(rejected, Rejection{ID: c.Service.ID, Verdict: v})
		}
	}
	Sort(kept, prio)
	return kept, rejected
}

func evaluate(c Candidate, lat, lon float64, crit *selection.Criteria, checks Checks) Verdict {
	s := c.Service
	if IsPlaceholder(s.Hostname) {
		return RejectedPlaceholder
	}
	if !s.IsGlobal() && !geo.InCoverage(s.Coverage.Bounds(), lat, lon) {
		return RejectedCoverage
	}
	if checks.Failures != nil && checks.Failures.Blocked(uint8(c.Index)) {
		return RejectedBackoff
	}
	if s.Paid() && !s.FreeAccess() {
		if checks.Credentials == nil || !checks.Credentials.Has(s.ID) {
			return RejectedCredentials
		}
	}
	if checks.Blacklist != nil && checks.Blacklist.Contains(s.ID, lat, lon) {
		return RejectedBlacklist
	}
	if crit != nil {
		if crit.FreeOnly && s.Paid() {
			return RejectedCriteria
		}
		if crit.MinQuality > 0 && s.Quality < crit.MinQuality {
			return RejectedCriteria
		}
		switch crit.MaxAuth {
		case selection.NoAuth:
			if s.Auth() != catalog.AuthNone {
				return RejectedCriteria
			}
		case selection.BasicAuth:
			if s.Auth() == catalog.AuthDigest {
				return RejectedCriteria
			}
		}
	}
	return Accepted
}

// Sort orders candidates by payment bucket per the priority, then by quality
// descending. The sort is stable so catalog order breaks remaining ties.
func Sort(cs []Candidate, prio selection.PaymentPriority) {
	sort.SliceStable(cs, func(i, j int) bool { return less(cs[i], cs[j], prio) })
}

func less(a, b Candidate, prio selection.PaymentPriority) bool {
	ab, bb := bucket(a.Service, prio), bucket(b.Service, prio)
	if ab != bb {
		return ab < bb
	}
	return a.Service.Quality > b.Service.Quality
}

func bucket(s catalog.Service, prio selection.PaymentPriority) int {
	paid := s.Paid()
	if prio == selection.PaidFirst {
		if paid {
			return 0
		}
		return 1
	}
	if paid {
		return 1
	}
	return 0
}

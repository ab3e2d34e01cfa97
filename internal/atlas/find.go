package atlas

import (
	"context"
	"fmt"

	"ntrip-atlas/internal/catalog"
	"ntrip-atlas/internal/geo"
	"ntrip-atlas/internal/policy"
	"ntrip-atlas/internal/selection"
	"ntrip-atlas/internal/sourcetable"
)

// FindBest discovers the best mountpoint for a position using the default
// criteria. The Result is zero-valued on error.
func (e *Engine) FindBest(ctx context.Context, lat, lon float64) (Result, error) {
	return e.FindBestFiltered(ctx, lat, lon, nil)
}

// FindBestFiltered is FindBest with caller-supplied selection criteria.
func (e *Engine) FindBestFiltered(ctx context.Context, lat, lon float64, crit *selection.Criteria) (Result, error) {
	working, err := e.workingList(lat, lon, crit)
	if err != nil {
		return Result{}, err
	}
	res, _, err := e.tryCandidates(ctx, working, lat, lon, crit, "")
	return res, err
}

// FindBestWithFallback returns the best mountpoint plus, when available, a
// backup from a different service. The backup is zero-valued when only one
// service produced a usable stream; that alone is not an error.
func (e *Engine) FindBestWithFallback(ctx context.Context, lat, lon float64) (primary, backup Result, err error) {
	working, err := e.workingList(lat, lon, nil)
	if err != nil {
		return Result{}, Result{}, err
	}
	primary, rest, err := e.tryCandidates(ctx, working, lat, lon, nil, "")
	if err != nil {
		return Result{}, Result{}, err
	}
	backup, _, berr := e.tryCandidates(ctx, rest, lat, lon, nil, primary.ServiceID)
	if berr != nil {
		return primary, Result{}, nil
	}
	return primary, backup, nil
}

// QuickFind answers from the catalog alone: no network traffic, no
// mountpoint. The Result carries the service endpoint and the distance to
// its coverage center; hosts use it for an instant offline answer while a
// full FindBest runs later.
func (e *Engine) QuickFind(lat, lon float64) (Result, error) {
	working, err := e.workingList(lat, lon, nil)
	if err != nil {
		return Result{}, err
	}
	best := working[0]
	bestScore := quickScore(best.Service, lat, lon)
	for _, cand := range working[1:] {
		if sc := quickScore(cand.Service, lat, lon); sc > bestScore {
			best, bestScore = cand, sc
		}
	}
	s := best.Service
	c, _ := e.resolveCredentials(s)
	return Result{
		ServiceID:  s.ID,
		Provider:   s.Provider(),
		Host:       s.Hostname,
		Port:       s.Port,
		TLS:        s.TLS(),
		Username:   c.Username,
		Password:   c.Password,
		DistanceKm: serviceDistance(s, lat, lon),
		Score:      bestScore,
	}, nil
}

// quickScore ranks a catalog entry without network data: proximity to the
// coverage area up to 40 points (global services advertise no proximity and
// get none), quality up to 30, operator type up to 20, authentication burden
// up to 10.
func quickScore(s catalog.Service, lat, lon float64) uint8 {
	var score uint8
	if !s.IsGlobal() {
		switch d := geo.DistanceToEdge(s.Coverage.Bounds(), lat, lon); {
		case d < 10:
			score += 40
		case d < 50:
			score += 30
		case d < 100:
			score += 20
		case d < 200:
			score += 10
		}
	}
	score += s.Quality * 6
	switch s.Network {
	case catalog.NetworkGovernment:
		score += 20
	case catalog.NetworkCommercial:
		score += 15
	case catalog.NetworkCommunity:
		score += 10
	case catalog.NetworkResearch:
		score += 5
	}
	switch s.Auth() {
	case catalog.AuthNone:
		score += 10
	case catalog.AuthBasic:
		score += 5
	}
	return score
}

// RegionService is one catalog entry relevant to a position.
type RegionService struct {
	Service    catalog.Full
	DistanceKm float64 // to the coverage center; 0 for global services
	Blocked    bool
}

// ListServicesInRegion reports every service whose coverage includes the
// position, plus the global ones, without filtering by policy.
func (e *Engine) ListServicesInRegion(lat, lon float64) ([]RegionService, error) {
	if err := validPosition(lat, lon); err != nil {
		return nil, err
	}
	var out []RegionService
	for i, s := range e.services {
		if !s.IsGlobal() && !geo.InCoverage(s.Coverage.Bounds(), lat, lon) {
			continue
		}
		out = append(out, RegionService{
			Service:    catalog.Expand(s),
			DistanceKm: serviceDistance(s, lat, lon),
			Blocked:    e.failures.Blocked(uint8(i)),
		})
	}
	return out, nil
}

// TestService probes one service's sourcetable endpoint and records the
// outcome in the failure history.
func (e *Engine) TestService(ctx context.Context, serviceID string) error {
	i, ok := e.serviceByID(serviceID)
	if !ok {
		return fmt.Errorf("%w: service %q", ErrNotFound, serviceID)
	}
	s := e.services[i]

	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	got := false
	err := e.plat.HTTPStream(cctx, s.Hostname, s.Port, s.TLS(), "/", func(chunk []byte) bool {
		got = len(chunk) > 0
		return got // one chunk is proof of life
	})
	if err != nil || !got {
		e.recordFailure(i)
		if err == nil {
			err = fmt.Errorf("%w: empty response", ErrServiceFailed)
		}
		return fmt.Errorf("atlas: probe %s: %w", serviceID, err)
	}
	e.recordSuccess(i)
	return nil
}

// workingList runs spatial lookup, global append and the policy filter,
// returning the ordered candidates to dial.
func (e *Engine) workingList(lat, lon float64, crit *selection.Criteria) ([]policy.Candidate, error) {
	if err := validPosition(lat, lon); err != nil {
		return nil, err
	}
	if e.index == nil {
		return nil, ErrNoDiscoveryIndex
	}

	var indexed []policy.Candidate
	for _, i := range e.index.Lookup(lat, lon) {
		indexed = append(indexed, policy.Candidate{Index: i, Service: e.services[i]})
	}
	for i, s := range e.services {
		if s.IsGlobal() {
			indexed = append(indexed, policy.Candidate{Index: uint16(i), Service: s})
		}
	}

	kept, rejected := policy.Filter(indexed, lat, lon, crit, e.priority, policy.Checks{
		Failures:    e.failures,
		Credentials: e.creds,
		Blacklist:   e.blacklist,
	})
	for _, r := range rejected {
		e.log.Debug().Str("service", r.ID).Str("reason", r.Verdict.String()).Msg("candidate dropped")
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: %d candidates rejected", ErrNoServices, len(rejected))
	}
	return kept, nil
}

// tryCandidates dials candidates in order until one yields a mountpoint.
// skipService excludes one service ID (used by the fallback pass). It
// returns the remaining untried candidates for a second pass.
func (e *Engine) tryCandidates(ctx context.Context, working []policy.Candidate,
	lat, lon float64, crit *selection.Criteria, skipService string) (Result, []policy.Candidate, error) {

	start := e.plat.NowMillis()
	for n, cand := range working {
		if cand.Service.ID == skipService {
			continue
		}
		mp, err := e.streamCandidate(ctx, cand, lat, lon, crit)
		if err != nil {
			e.log.Debug().Str("service", cand.Service.ID).Err(err).Msg("candidate failed")
			e.recordFailure(int(cand.Index))
			continue
		}
		e.recordSuccess(int(cand.Index))

		c, _ := e.resolveCredentials(cand.Service)
		res := Result{
			ServiceID:    cand.Service.ID,
			Provider:     cand.Service.Provider(),
			Host:         cand.Service.Hostname,
			Port:         cand.Service.Port,
			TLS:          cand.Service.TLS(),
			Mountpoint:   mp.Name,
			Format:       mp.Format,
			NMEARequired: mp.NMEARequired,
			Username:     c.Username,
			Password:     c.Password,
			MountLat:     mp.Lat,
			MountLon:     mp.Lon,
			DistanceKm:   mp.DistanceKm,
			Score:        mp.Score,
		}
		e.log.Info().Str("service", res.ServiceID).Str("mountpoint", res.Mountpoint).
			Float64("distance_km", res.DistanceKm).Uint8("score", res.Score).
			Int64("elapsed_ms", e.plat.NowMillis()-start).Msg("mountpoint selected")
		return res, working[n+1:], nil
	}
	return Result{}, nil, ErrAllServicesFailed
}

// streamCandidate runs one sourcetable stream and returns its best
// mountpoint.
func (e *Engine) streamCandidate(ctx context.Context, cand policy.Candidate,
	lat, lon float64, crit *selection.Criteria) (sourcetable.Mountpoint, error) {

	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	sel := sourcetable.NewSelector(lat, lon, cand.Service.Quality, crit)
	err := e.plat.HTTPStream(cctx, cand.Service.Hostname, cand.Service.Port,
		cand.Service.TLS(), "/", sel.Feed)
	if err != nil {
		return sourcetable.Mountpoint{}, err
	}
	mp, ok := sel.Best()
	if !ok {
		return sourcetable.Mountpoint{}, ErrServiceFailed
	}
	return mp, nil
}

func serviceDistance(s catalog.Service, lat, lon float64) float64 {
	if s.IsGlobal() {
		return 0
	}
	return geo.DistanceToCenter(s.Coverage.Bounds(), lat, lon)
}

func validPosition(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: position %v,%v", ErrInvalidParam, lat, lon)
	}
	return nil
}

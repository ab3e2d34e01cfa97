package policy

import (
	"testing"

	"ntrip-atlas/internal/backoff"
	"ntrip-atlas/internal/catalog"
	"ntrip-atlas/internal/creds"
	"ntrip-atlas/internal/geo"
	"ntrip-atlas/internal/selection"
)

func TestIsPlaceholder(t *testing.T) {
	placeholders := []string{
		"", "localhost", "127.0.0.1", "::1",
		"caster.example.com", "ntrip.example.org", "caster.invalid",
		"EXAMPLE.COM",
	}
	for _, h := range placeholders {
		if !IsPlaceholder(h) {
			t.Errorf("IsPlaceholder(%q) = false", h)
		}
	}
	real := []string{
		"rtk2go.com", "auscors.ga.gov.au", "igs-ip.net",
		"polaris.pointonenav.com", "cors.massdot.state.ma.us",
	}
	for _, h := range real {
		if IsPlaceholder(h) {
			t.Errorf("IsPlaceholder(%q) = true", h)
		}
	}
}

func svc(id string, quality uint8, flags catalog.Flags, cov catalog.Coverage) catalog.Service {
	if cov == nil {
		cov = catalog.Global{}
	}
	return catalog.Service{
		ID:       id,
		Hostname: id + ".gnss.example-caster.net",
		Port:     2101,
		Flags:    flags,
		Coverage: cov,
		Quality:  quality,
	}
}

func TestFilterRejections(t *testing.T) {
	europe := catalog.Regional{Rect: geo.Rect{LatMin: 3500, LatMax: 7100, LonMin: -1000, LonMax: 3500}}

	now := int64(1_800_000_000)
	failures := backoff.NewStore(func() int64 { return now })
	failures.Fail(3)

	bl := NewBlacklist(func() int64 { return now })
	bl.Add("blacklisted", 52.5, 13.4, BlacklistBadData)

	indexed := []Candidate{
		{Index: 0, Service: svc("good", 4, catalog.FlagFreeAccess, europe)},
		{Index: 1, Service: catalog.Service{
			ID: "template", Hostname: "your-caster.example.com", Port: 2101,
			Coverage: catalog.Global{}, Quality: 5, Flags: catalog.FlagFreeAccess,
		}},
		{Index: 2, Service: svc("far-away", 5, catalog.FlagFreeAccess,
			catalog.Regional{Rect: geo.Rect{LatMin: -4500, LatMax: -1000, LonMin: 11000, LonMax: 16000}})},
		{Index: 3, Service: svc("backing-off", 5, catalog.FlagFreeAccess, europe)},
		{Index: 4, Service: svc("paid-no-creds", 5, catalog.FlagPaid|catalog.FlagAuthBasic, europe)},
		{Index: 5, Service: svc("blacklisted", 5, catalog.FlagFreeAccess, europe)},
	}

	kept, rejected := Filter(indexed, 52.5, 13.4, nil, selection.FreeFirst, Checks{
		Failures:    failures,
		Credentials: creds.NewStore(),
		Blacklist:   bl,
	})
	if len(kept) != 1 || kept[0].Service.ID != "good" {
		t.Fatalf("kept = %+v, want only good", kept)
	}
	wantVerdicts := map[string]Verdict{
		"template":      RejectedPlaceholder,
		"far-away":      RejectedCoverage,
		"backing-off":   RejectedBackoff,
		"paid-no-creds": RejectedCredentials,
		"blacklisted":   RejectedBlacklist,
	}
	for _, r := range rejected {
		if want, ok := wantVerdicts[r.ID]; !ok || r.Verdict != want {
			t.Errorf("rejection %s = %v, want %v", r.ID, r.Verdict, want)
		}
	}
	if len(rejected) != len(wantVerdicts) {
		t.Errorf("rejected %d services, want %d", len(rejected), len(wantVerdicts))
	}
}

func TestFilterPaidWithCredentialsPasses(t *testing.T) {
	cs := creds.NewStore()
	if err := cs.Set("paid", creds.Credentials{Username: "u", Password: "p"}); err != nil {
		t.Fatal(err)
	}
	indexed := []Candidate{
		{Index: 0, Service: svc("paid", 4, catalog.FlagPaid|catalog.FlagAuthBasic|catalog.FlagGlobal, nil)},
	}
	kept, _ := Filter(indexed, 0, 0, nil, selection.FreeFirst, Checks{Credentials: cs})
	if len(kept) != 1 {
		t.Fatalf("paid service with credentials was dropped")
	}
}

func TestFilterCriteria(t *testing.T) {
	indexed := []Candidate{
		{Index: 0, Service: svc("low-quality", 2, catalog.FlagFreeAccess|catalog.FlagGlobal, nil)},
		{Index: 1, Service: svc("digest-only", 5, catalog.FlagFreeAccess|catalog.FlagAuthDigest|catalog.FlagGlobal, nil)},
		{Index: 2, Service: svc("open", 4, catalog.FlagFreeAccess|catalog.FlagGlobal, nil)},
	}
	crit := &selection.Criteria{MinQuality: 3, MaxAuth: selection.BasicAuth}
	kept, rejected := Filter(indexed, 0, 0, crit, selection.FreeFirst, Checks{})
	if len(kept) != 1 || kept[0].Service.ID != "open" {
		t.Fatalf("kept = %+v, want only open", kept)
	}
	for _, r := range rejected {
		if r.Verdict != RejectedCriteria {
			t.Errorf("rejection %s = %v, want criteria mismatch", r.ID, r.Verdict)
		}
	}
}

func TestSortPaymentBucketsThenQuality(t *testing.T) {
	mk := func(id string, q uint8, paid bool) Candidate {
		f := catalog.FlagGlobal | catalog.FlagFreeAccess
		if paid {
			f = catalog.FlagGlobal | catalog.FlagPaid
		}
		return Candidate{Service: svc(id, q, f, nil)}
	}
	cs := []Candidate{
		mk("paid-q5", 5, true),
		mk("free-q3", 3, false),
		mk("free-q5a", 5, false),
		mk("free-q5b", 5, false),
		mk("paid-q4", 4, true),
	}

	Sort(cs, selection.FreeFirst)
	wantFree := []string{"free-q5a", "free-q5b", "free-q3", "paid-q5", "paid-q4"}
	for i, id := range wantFree {
		if cs[i].Service.ID != id {
			t.Fatalf("FreeFirst[%d] = %s, want %s", i, cs[i].Service.ID, id)
		}
	}

	Sort(cs, selection.PaidFirst)
	wantPaid := []string{"paid-q5", "paid-q4", "free-q5a", "free-q5b", "free-q3"}
	for i, id := range wantPaid {
		if cs[i].Service.ID != id {
			t.Fatalf("PaidFirst[%d] = %s, want %s", i, cs[i].Service.ID, id)
		}
	}
}

package catalog

import (
	"testing"
)

func TestCompressExpandRoundTrip(t *testing.T) {
	in := Full{
		ID:                   "test-service",
		Provider:             "BKG EUREF-IP",
		Hostname:             "caster.example.org",
		Port:                 2101,
		TLS:                  true,
		Network:              NetworkGovernment,
		Auth:                 AuthBasic,
		RequiresRegistration: true,
		FreeAccess:           true,
		Quality:              5,
		LatMin:               35.0,
		LatMax:               71.0,
		LonMin:               -10.0,
		LonMax:               35.0,
	}
	svc, err := Compress(in)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	out := Expand(svc)
	if out.ID != in.ID || out.Hostname != in.Hostname || out.Port != in.Port {
		t.Errorf("identity mismatch: got %+v", out)
	}
	if !out.TLS || out.Auth != AuthBasic || !out.RequiresRegistration || !out.FreeAccess {
		t.Errorf("flags lost in round trip: %+v", out)
	}
	if out.Quality != 5 || out.Network != NetworkGovernment {
		t.Errorf("quality/network mismatch: %+v", out)
	}
	// Centi-degree rounding keeps 0.01 degree precision.
	for _, c := range []struct{ got, want float64 }{
		{out.LatMin, 35.0}, {out.LatMax, 71.0}, {out.LonMin, -10.0}, {out.LonMax, 35.0},
	} {
		if c.got != c.want {
			t.Errorf("coverage bound got %v want %v", c.got, c.want)
		}
	}
}

func TestCompressRejectsBadInput(t *testing.T) {
	base := Full{
		ID: "x", Provider: "RTK2go Community", Hostname: "h.example.com",
		Port: 2101, Quality: 3, LatMin: -10, LatMax: 10,
	}

	long := base
	long.Hostname = "a-hostname-that-is-far-too-long-to-fit.example.com"
	if _, err := Compress(long); err == nil {
		t.Error("expected error for overlong hostname")
	}

	badQ := base
	badQ.Quality = 6
	if _, err := Compress(badQ); err == nil {
		t.Error("expected error for quality out of range")
	}

	inv := base
	inv.LatMin, inv.LatMax = 10, -10
	if _, err := Compress(inv); err == nil {
		t.Error("expected error for inverted latitude range")
	}
}

func TestGlobalCoverageHasNoRect(t *testing.T) {
	svc, err := Compress(Full{
		ID: "global", Provider: "Point One Navigation", Hostname: "g.example.com",
		Port: 2101, Quality: 4, Global: true, Paid: true, Auth: AuthBasic,
	})
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !svc.IsGlobal() {
		t.Fatal("IsGlobal() = false for global service")
	}
	if _, ok := svc.Coverage.(Global); !ok {
		t.Fatalf("Coverage = %T, want catalog.Global", svc.Coverage)
	}
	if svc.Auth() != AuthBasic {
		t.Errorf("Auth() = %v, want AuthBasic", svc.Auth())
	}
}

func TestCompiledDatabase(t *testing.T) {
	svcs := Services()
	if len(svcs) == 0 {
		t.Fatal("compiled database is empty")
	}
	seen := make(map[string]bool, len(svcs))
	for _, s := range svcs {
		if seen[s.ID] {
			t.Errorf("duplicate service id %q", s.ID)
		}
		seen[s.ID] = true
		if len(s.Hostname) == 0 || len(s.Hostname) > MaxHostnameLen {
			t.Errorf("%s: hostname %q length out of range", s.ID, s.Hostname)
		}
		if s.Quality < 1 || s.Quality > 5 {
			t.Errorf("%s: quality %d out of range", s.ID, s.Quality)
		}
		if s.IsGlobal() != (s.Flags&FlagGlobal != 0) {
			t.Errorf("%s: global flag and coverage type disagree", s.ID)
		}
		if s.Provider() == "" {
			t.Errorf("%s: unknown provider index %d", s.ID, s.ProviderIndex)
		}
	}
	if s, ok := ByID("rtk2go-global"); !ok || !s.IsGlobal() || !s.FreeAccess() {
		t.Errorf("rtk2go-global lookup: ok=%v svc=%+v", ok, s)
	}
	if _, ok := ByID("no-such-service"); ok {
		t.Error("ByID returned a match for an unknown id")
	}
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion(DatabaseVersion)
	if err != nil {
		t.Fatalf("ParseVersion(%q): %v", DatabaseVersion, err)
	}
	if v.String() != DatabaseVersion {
		t.Errorf("String() = %q, want %q", v.String(), DatabaseVersion)
	}
	newer := Version{Date: v.Date, Revision: v.Revision + 1}
	if !newer.Newer(v) || v.Newer(newer) {
		t.Error("Newer ordering wrong for same-day revisions")
	}
	for _, bad := range []string{"", "2024.01", "20241129", "2024112901", "20241129.1"} {
		if _, err := ParseVersion(bad); err == nil {
			t.Errorf("ParseVersion(%q) accepted malformed version", bad)
		}
	}
}

func TestCheckSchema(t *testing.T) {
	cases := []struct {
		major, minor uint16
		want         Compatibility
		wantErr      bool
	}{
		{SchemaMajor, SchemaMinor, Compatible, false},
		{SchemaMajor - 1, 9, Compatible, false},
		{SchemaMajor, SchemaMinor - 1, Compatible, false},
		{SchemaMajor, SchemaMinor + 1, BackwardOnly, false},
		{SchemaMajor + 1, 0, UpgradeNeeded, true},
	}
	for _, tc := range cases {
		got, err := CheckSchema(tc.major, tc.minor)
		if got != tc.want {
			t.Errorf("CheckSchema(%d, %d) = %v, want %v", tc.major, tc.minor, got, tc.want)
		}
		if (err != nil) != tc.wantErr {
			t.Errorf("CheckSchema(%d, %d) error = %v, wantErr %v", tc.major, tc.minor, err, tc.wantErr)
		}
	}
}

package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefinitions_MatchesCompiledTable(t *testing.T) {
	defs, err := LoadDefinitions(filepath.Join("..", "..", "data"))
	if err != nil {
		t.Fatalf("LoadDefinitions: %v", err)
	}
	if len(defs) != len(services) {
		t.Fatalf("data/ has %d definitions, compiled table has %d", len(defs), len(services))
	}
	for i, d := range defs {
		s := &services[i]
		if d.ID != s.ID {
			t.Errorf("definition %d: id %q, compiled %q", i, d.ID, s.ID)
		}
		if d.Endpoints[0].Hostname != s.Hostname {
			t.Errorf("%s: hostname %q, compiled %q", d.ID, d.Endpoints[0].Hostname, s.Hostname)
		}
		if d.Provider != s.Provider() {
			t.Errorf("%s: provider %q, compiled %q", d.ID, d.Provider, s.Provider())
		}
		if d.IsGlobal() != s.IsGlobal() {
			t.Errorf("%s: global %v, compiled %v", d.ID, d.IsGlobal(), s.IsGlobal())
		}
		if d.Quality.ReliabilityRating != s.Quality {
			t.Errorf("%s: quality %d, compiled %d", d.ID, d.Quality.ReliabilityRating, s.Quality)
		}
	}
}

func TestLoadDefinitions_SkipsSchema(t *testing.T) {
	defs, err := LoadDefinitions(filepath.Join("..", "..", "data"))
	if err != nil {
		t.Fatalf("LoadDefinitions: %v", err)
	}
	for _, d := range defs {
		if d.ID == "" {
			t.Fatal("schema.yaml leaked into the definitions")
		}
	}
}

func TestLoadDefinitions_RejectsBadDefinition(t *testing.T) {
	dir := t.TempDir()
	bad := `service:
  id: broken
  provider: Test
  country: US
  endpoints:
    - hostname: example.org
      port: 2101
  coverage:
    bounding_box: {lat_min: 50.0, lat_max: 40.0, lon_min: 0.0, lon_max: 10.0}
  quality:
    reliability_rating: 5
    network_type: government
  payment: free
`
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDefinitions(dir); err == nil {
		t.Fatal("inverted latitude range accepted")
	}
}

func TestLoadDefinitions_EmptyDir(t *testing.T) {
	if _, err := LoadDefinitions(t.TempDir()); err == nil {
		t.Fatal("empty directory accepted")
	}
}

func TestDefinitionFull_RoundTripsThroughCompress(t *testing.T) {
	defs, err := LoadDefinitions(filepath.Join("..", "..", "data"))
	if err != nil {
		t.Fatalf("LoadDefinitions: %v", err)
	}
	for _, d := range defs {
		full, err := d.Full()
		if err != nil {
			t.Fatalf("%s: Full: %v", d.ID, err)
		}
		svc, err := Compress(full)
		if err != nil {
			t.Fatalf("%s: Compress: %v", d.ID, err)
		}
		if svc.Auth().String() != full.Auth.String() {
			t.Errorf("%s: auth %s became %s", d.ID, full.Auth, svc.Auth())
		}
		if svc.Paid() != full.Paid || svc.FreeAccess() != full.FreeAccess {
			t.Errorf("%s: payment flags changed in compression", d.ID)
		}
	}
}

package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is one YAML service definition consumed by cmd/atlasgen.
//
// Example:
//
//	service:
//	  id: auscors
//	  provider: Geoscience Australia
//	  country: AU
//	  endpoints:
//	    - hostname: auscors.ga.gov.au
//	      port: 2101
//	      ssl: false
//	  coverage:
//	    bounding_box: {lat_min: -45.0, lat_max: -10.0, lon_min: 110.0, lon_max: 160.0}
//	  authentication:
//	    required: true
//	    method: basic
//	    registration_required: true
//	  quality:
//	    reliability_rating: 5
//	    network_type: government
//	  payment: free
type Definition struct {
	ID        string     `yaml:"id"`
	Provider  string     `yaml:"provider"`
	Country   string     `yaml:"country"`
	Endpoints []Endpoint `yaml:"endpoints"`
	Coverage  struct {
		BoundingBox BoundingBox `yaml:"bounding_box"`
	} `yaml:"coverage"`
	Authentication struct {
		Required             bool   `yaml:"required"`
		Method               string `yaml:"method"`
		RegistrationRequired bool   `yaml:"registration_required"`
	} `yaml:"authentication"`
	Quality struct {
		ReliabilityRating uint8  `yaml:"reliability_rating"`
		NetworkType       string `yaml:"network_type"`
	} `yaml:"quality"`
	Payment string `yaml:"payment"`
}

type Endpoint struct {
	Hostname string `yaml:"hostname"`
	Port     uint16 `yaml:"port"`
	SSL      bool   `yaml:"ssl"`
}

type BoundingBox struct {
	LatMin float64 `yaml:"lat_min"`
	LatMax float64 `yaml:"lat_max"`
	LonMin float64 `yaml:"lon_min"`
	LonMax float64 `yaml:"lon_max"`
}

type definitionFile struct {
	Service Definition `yaml:"service"`
}

// LoadDefinitions reads every *.yaml file under dir (schema.yaml excluded)
// and returns the validated definitions sorted by file name.
func LoadDefinitions(dir string) ([]Definition, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var defs []Definition
	for _, p := range paths {
		if filepath.Base(p) == "schema.yaml" {
			continue
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		var f definitionFile
		if err := yaml.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if err := f.Service.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		defs = append(defs, f.Service)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("catalog: no service definitions in %s", dir)
	}
	return defs, nil
}

// Validate checks the structural constraints the compact record imposes.
func (d *Definition) Validate() error {
	if d.ID == "" || len(d.ID) > MaxServiceIDLen {
		return fmt.Errorf("catalog: service id %q length out of range", d.ID)
	}
	if d.Provider == "" {
		return fmt.Errorf("catalog: service %s missing provider", d.ID)
	}
	if len(d.Endpoints) == 0 {
		return fmt.Errorf("catalog: service %s has no endpoints", d.ID)
	}
	for _, e := range d.Endpoints {
		if e.Hostname == "" || len(e.Hostname) > MaxHostnameLen {
			return fmt.Errorf("catalog: service %s hostname %q length out of range", d.ID, e.Hostname)
		}
		if e.Port == 0 {
			return fmt.Errorf("catalog: service %s endpoint %s has no port", d.ID, e.Hostname)
		}
	}
	bb := d.Coverage.BoundingBox
	if !d.IsGlobal() {
		if bb.LatMin >= bb.LatMax {
			return fmt.Errorf("catalog: service %s invalid latitude range", d.ID)
		}
		if bb.LatMin < -90 || bb.LatMax > 90 || bb.LonMin < -180 || bb.LonMax > 180 {
			return fmt.Errorf("catalog: service %s bounding box out of range", d.ID)
		}
	}
	if d.Quality.ReliabilityRating < 1 || d.Quality.ReliabilityRating > 5 {
		return fmt.Errorf("catalog: service %s reliability rating %d out of range 1..5",
			d.ID, d.Quality.ReliabilityRating)
	}
	if _, err := parseNetworkType(d.Quality.NetworkType); err != nil {
		return fmt.Errorf("catalog: service %s: %w", d.ID, err)
	}
	if _, err := parseAuthMethod(d.Authentication.Method); err != nil {
		return fmt.Errorf("catalog: service %s: %w", d.ID, err)
	}
	return nil
}

// IsGlobal reports whether the definition declares worldwide coverage.
func (d *Definition) IsGlobal() bool {
	return strings.EqualFold(d.Country, "GLOBAL")
}

// Full converts the definition (first endpoint) to the expanded record form.
func (d *Definition) Full() (Full, error) {
	net, err := parseNetworkType(d.Quality.NetworkType)
	if err != nil {
		return Full{}, err
	}
	auth, err := parseAuthMethod(d.Authentication.Method)
	if err != nil {
		return Full{}, err
	}
	e := d.Endpoints[0]
	bb := d.Coverage.BoundingBox
	return Full{
		ID:                   d.ID,
		Provider:             d.Provider,
		Hostname:             e.Hostname,
		Port:                 e.Port,
		TLS:                  e.SSL,
		Network:              net,
		Auth:                 auth,
		RequiresRegistration: d.Authentication.RegistrationRequired,
		FreeAccess:           !strings.EqualFold(d.Payment, "paid"),
		Paid:                 strings.EqualFold(d.Payment, "paid"),
		Global:               d.IsGlobal(),
		Quality:              d.Quality.ReliabilityRating,
		LatMin:               bb.LatMin,
		LatMax:               bb.LatMax,
		LonMin:               bb.LonMin,
		LonMax:               bb.LonMax,
	}, nil
}

func parseNetworkType(s string) (NetworkType, error) {
	switch strings.ToLower(s) {
	case "government":
		return NetworkGovernment, nil
	case "commercial":
		return NetworkCommercial, nil
	case "community":
		return NetworkCommunity, nil
	case "research":
		return NetworkResearch, nil
	}
	return 0, fmt.Errorf("catalog: unknown network type %q", s)
}

func parseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return AuthNone, nil
	case "basic":
		return AuthBasic, nil
	case "digest":
		return AuthDigest, nil
	}
	return 0, fmt.Errorf("catalog: unknown auth method %q", s)
}

// Command atlasgen compiles the YAML service definitions under data/ into
// the compact Go table in internal/catalog/services_gen.go, then builds the
// spatial index once to prove the result fits the runtime capacities.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"os"
	"time"

	"ntrip-atlas/internal/catalog"
	"ntrip-atlas/internal/spatial"
)

func main() {
	var (
		dataDir  = flag.String("data", "data", "Directory of service definition YAML files")
		outPath  = flag.String("out", "internal/catalog/services_gen.go", "Generated file path")
		revision = flag.Int("revision", 1, "Database revision within the day, 1..99")
	)
	flag.Parse()

	if err := run(*dataDir, *outPath, *revision); err != nil {
		fmt.Fprintf(os.Stderr, "atlasgen: %v\n", err)
		os.Exit(1)
	}
}

func run(dataDir, outPath string, revision int) error {
	defs, err := catalog.LoadDefinitions(dataDir)
	if err != nil {
		return err
	}

	version := fmt.Sprintf("%s.%02d", time.Now().UTC().Format("20060102"), revision)
	if _, err := catalog.ParseVersion(version); err != nil {
		return err
	}

	// Provider indices are assigned in order of first appearance so that
	// regenerating with unchanged input yields an identical file.
	var providers []string
	providerIdx := make(map[string]uint8)
	seen := make(map[string]bool)
	var services []catalog.Service
	for _, d := range defs {
		if seen[d.ID] {
			return fmt.Errorf("duplicate service id %q", d.ID)
		}
		seen[d.ID] = true

		if _, ok := providerIdx[d.Provider]; !ok {
			if len(providers) > 255 {
				return fmt.Errorf("too many providers")
			}
			providerIdx[d.Provider] = uint8(len(providers))
			providers = append(providers, d.Provider)
		}
		full, err := d.Full()
		if err != nil {
			return fmt.Errorf("%s: %w", d.ID, err)
		}
		svc, err := catalog.Compress(full)
		if err != nil {
			return fmt.Errorf("%s: %w", d.ID, err)
		}
		svc.ProviderIndex = providerIdx[d.Provider]
		services = append(services, svc)
	}

	src, err := render(version, providers, services)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d services, %d providers, version %s\n",
		outPath, len(services), len(providers), version)

	// The compiled table must index within the default capacities; a data
	// change that overflows them is a build error, not a runtime surprise.
	idx, err := spatial.Build(services, spatial.DefaultConfig())
	if err != nil {
		return err
	}
	st := idx.Stats()
	fmt.Printf("spatial index: %d tiles, %d entries, busiest tile %d\n",
		st.Tiles, st.Entries, st.MaxPerTile)
	return nil
}

func render(version string, providers []string, services []catalog.Service) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by atlasgen from data/*.yaml. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package catalog\n\n")
	fmt.Fprintf(&b, "import \"ntrip-atlas/internal/geo\"\n\n")
	fmt.Fprintf(&b, "// DatabaseVersion identifies the service data compiled into this build,\n")
	fmt.Fprintf(&b, "// formatted YYYYMMDD.seq.\n")
	fmt.Fprintf(&b, "const DatabaseVersion = %q\n\n", version)

	fmt.Fprintf(&b, "var providerNames = []string{\n")
	for i, p := range providers {
		fmt.Fprintf(&b, "\t%q, // %d\n", p, i)
	}
	fmt.Fprintf(&b, "}\n\n")

	fmt.Fprintf(&b, "var services = []Service{\n")
	for _, s := range services {
		fmt.Fprintf(&b, "\t// %s - %s\n", s.ID, providers[s.ProviderIndex])
		fmt.Fprintf(&b, "\t{\n")
		fmt.Fprintf(&b, "\t\tID:            %q,\n", s.ID)
		fmt.Fprintf(&b, "\t\tHostname:      %q,\n", s.Hostname)
		fmt.Fprintf(&b, "\t\tPort:          %d,\n", s.Port)
		fmt.Fprintf(&b, "\t\tFlags:         %s,\n", flagExpr(s.Flags))
		fmt.Fprintf(&b, "\t\tCoverage:      %s,\n", coverageExpr(s))
		fmt.Fprintf(&b, "\t\tProviderIndex: %d,\n", s.ProviderIndex)
		fmt.Fprintf(&b, "\t\tNetwork:       %s,\n", networkExpr(s.Network))
		fmt.Fprintf(&b, "\t\tQuality:       %d,\n", s.Quality)
		fmt.Fprintf(&b, "\t},\n")
	}
	fmt.Fprintf(&b, "}\n")

	return format.Source(b.Bytes())
}

func flagExpr(f catalog.Flags) string {
	names := []struct {
		bit  catalog.Flags
		name string
	}{
		{catalog.FlagTLS, "FlagTLS"},
		{catalog.FlagAuthBasic, "FlagAuthBasic"},
		{catalog.FlagAuthDigest, "FlagAuthDigest"},
		{catalog.FlagRequiresReg, "FlagRequiresReg"},
		{catalog.FlagFreeAccess, "FlagFreeAccess"},
		{catalog.FlagPaid, "FlagPaid"},
		{catalog.FlagGlobal, "FlagGlobal"},
	}
	out := ""
	for _, n := range names {
		if f&n.bit == 0 {
			continue
		}
		if out != "" {
			out += " | "
		}
		out += n.name
	}
	if out == "" {
		return "0"
	}
	return out
}

func coverageExpr(s catalog.Service) string {
	if s.IsGlobal() {
		return "Global{}"
	}
	r := s.Coverage.Bounds()
	return fmt.Sprintf("Regional{Rect: geo.Rect{LatMin: %d, LatMax: %d, LonMin: %d, LonMax: %d}}",
		r.LatMin, r.LatMax, r.LonMin, r.LonMax)
}

func networkExpr(n catalog.NetworkType) string {
	switch n {
	case catalog.NetworkGovernment:
		return "NetworkGovernment"
	case catalog.NetworkCommercial:
		return "NetworkCommercial"
	case catalog.NetworkCommunity:
		return "NetworkCommunity"
	case catalog.NetworkResearch:
		return "NetworkResearch"
	}
	return fmt.Sprintf("NetworkType(%d)", uint8(n))
}

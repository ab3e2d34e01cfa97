// Command ntrip-atlas finds the best NTRIP correction service for a
// position and prints the connection recipe.
//
// The position comes from -lat/-lon, or live from a GNSS receiver with
// -serial. With -quick the answer comes from the catalog alone, without
// touching the network.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"ntrip-atlas/internal/atlas"
	"ntrip-atlas/internal/config"
	"ntrip-atlas/internal/nmea"
	"ntrip-atlas/internal/platform"
	"ntrip-atlas/internal/selection"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML config (optional)")
		lat         = flag.Float64("lat", 0, "Latitude in decimal degrees")
		lon         = flag.Float64("lon", 0, "Longitude in decimal degrees")
		serialDev   = flag.String("serial", "", "Read position from this GNSS serial device instead of -lat/-lon")
		baud        = flag.Int("baud", 9600, "Serial baud rate")
		maxDistance = flag.Float64("max-distance", 0, "Reject mountpoints farther than this, km (0 = no limit)")
		freeOnly    = flag.Bool("free-only", false, "Reject paid services")
		format      = flag.String("format", "", "Require this format substring, e.g. 'RTCM 3'")
		fallback    = flag.Bool("fallback", false, "Also find a backup service")
		quick       = flag.Bool("quick", false, "Catalog-only answer, no network")
		gga         = flag.Bool("gga", false, "Print the GGA sentence to send for VRS streams")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := newLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	plat, err := platform.NewNetPlatform(cfg.Discovery.StateDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("platform init failed")
	}

	userLat, userLon := *lat, *lon
	if *serialDev != "" {
		userLat, userLon, err = positionFromSerial(ctx, *serialDev, *baud)
		if err != nil {
			log.Fatal().Err(err).Str("device", *serialDev).Msg("no GNSS fix")
		}
		log.Info().Float64("lat", userLat).Float64("lon", userLon).Msg("position from receiver")
	}

	priority, err := cfg.Priority()
	if err != nil {
		log.Fatal().Err(err).Msg("bad payment priority")
	}
	engine, err := atlas.New(plat,
		atlas.WithLogger(log),
		atlas.WithPaymentPriority(priority),
		atlas.WithTimeout(cfg.Discovery.Timeout),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("engine init failed")
	}
	if cfg.Discovery.CredentialsFile != "" {
		logins, err := config.LoadCredentialsFile(cfg.Discovery.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("credentials file")
		}
		for id, c := range logins {
			if err := engine.SetCredentials(id, c.Username, c.Password); err != nil {
				log.Warn().Err(err).Str("service", id).Msg("credential skipped")
			}
		}
	}

	crit := &selection.Criteria{
		MaxDistanceKm: *maxDistance,
		FreeOnly:      *freeOnly,
		Format:        *format,
	}

	switch {
	case *quick:
		res, err := engine.QuickFind(userLat, userLon)
		if err != nil {
			log.Fatal().Err(err).Msg("no service for this position")
		}
		printResult("service", res)
	case *fallback:
		primary, backup, err := engine.FindBestWithFallback(ctx, userLat, userLon)
		if err != nil {
			log.Fatal().Err(err).Msg("discovery failed")
		}
		printResult("primary", primary)
		if backup.ServiceID != "" {
			printResult("backup", backup)
		}
	default:
		res, err := engine.FindBestFiltered(ctx, userLat, userLon, crit)
		if err != nil {
			log.Fatal().Err(err).Msg("discovery failed")
		}
		printResult("best", res)
		if *gga && res.NMEARequired {
			sentence, err := nmea.FormatGGA(userLat, userLon, 0, 1, 8, time.Now())
			if err == nil {
				fmt.Printf("gga: %s", sentence)
			}
		}
	}
}

func printResult(label string, res atlas.Result) {
	fmt.Printf("%s: %s (%s)\n", label, res.ServiceID, res.Provider)
	fmt.Printf("  url:      %s\n", res.URL())
	if res.Mountpoint != "" {
		fmt.Printf("  format:   %s\n", res.Format)
		fmt.Printf("  distance: %.1f km (score %d)\n", res.DistanceKm, res.Score)
	}
	if res.Username != "" {
		fmt.Printf("  login:    %s / %s\n", res.Username, res.Password)
	}
	if res.NMEARequired {
		fmt.Printf("  note:     stream requires NMEA GGA position updates\n")
	}
}

func positionFromSerial(ctx context.Context, device string, baud int) (float64, float64, error) {
	port, err := nmea.OpenSerial(device, baud)
	if err != nil {
		return 0, 0, err
	}
	defer port.Close()

	fixCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fix, err := nmea.ReadFix(fixCtx, port)
	if err != nil {
		return 0, 0, err
	}
	return fix.LatDeg, fix.LonDeg, nil
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}

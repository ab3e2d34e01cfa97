package nmea

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

func line(payload string) string {
	var ck byte
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return fmt.Sprintf("$%s*%02X", payload, ck)
}

func TestParseSentenceChecksum(t *testing.T) {
	good := line("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W")
	s, err := ParseSentence(good)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Type != "RMC" {
		t.Fatalf("expected type RMC, got %q", s.Type)
	}

	bad := good[:len(good)-2] + "00"
	if _, err := ParseSentence(bad); err == nil {
		t.Fatalf("expected checksum error")
	}
	if _, err := ParseSentence("GPRMC,123519,A"); err == nil {
		t.Fatalf("expected framing error")
	}
}

func TestParseSentenceNormalizesTalker(t *testing.T) {
	for _, talker := range []string{"GP", "GN", "GL"} {
		s, err := ParseSentence(line(talker + "GGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"))
		if err != nil {
			t.Fatalf("%s: %v", talker, err)
		}
		if s.Type != "GGA" {
			t.Fatalf("%s: type = %q, want GGA", talker, s.Type)
		}
	}
}

func TestFixFromGGA(t *testing.T) {
	var fx Fix
	s, err := ParseSentence(line("GNGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	now := time.Date(2024, 11, 29, 12, 35, 19, 0, time.UTC)
	if !fx.Apply(now, s) {
		t.Fatal("expected position update")
	}
	if !fx.Valid {
		t.Fatal("expected valid fix")
	}
	if math.Abs(fx.LatDeg-48.1173) > 0.0001 || math.Abs(fx.LonDeg-11.5166667) > 0.0001 {
		t.Fatalf("position = %v,%v", fx.LatDeg, fx.LonDeg)
	}
	if fx.Quality != 1 || fx.Satellites != 8 || fx.AltM != 545.4 {
		t.Fatalf("metadata: %+v", fx)
	}
}

func TestFixIgnoresVoidRMC(t *testing.T) {
	var fx Fix
	s, err := ParseSentence(line("GPRMC,123519,V,,,,,,,230394,,"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fx.Apply(time.Now(), s) || fx.Valid {
		t.Fatal("void RMC produced a fix")
	}
}

func TestSouthWestHemispheres(t *testing.T) {
	var fx Fix
	s, err := ParseSentence(line("GPGGA,010203,3352.128,S,15112.558,W,1,05,1.1,20.0,M,0.0,M,,"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	fx.Apply(time.Now(), s)
	if fx.LatDeg >= 0 || fx.LonDeg >= 0 {
		t.Fatalf("hemisphere signs wrong: %v,%v", fx.LatDeg, fx.LonDeg)
	}
}

func TestReadFix(t *testing.T) {
	stream := strings.Join([]string{
		"junk before the receiver settles",
		line("GPGSV,3,1,11,03,03,111,00,04,15,270,00,06,01,010,00,13,06,292,00"),
		line("GPRMC,123519,A,4239.610,N,07103.530,W,000.0,000.0,291124,,"),
	}, "\r\n") + "\r\n"

	fx, err := ReadFix(context.Background(), strings.NewReader(stream))
	if err != nil {
		t.Fatalf("ReadFix: %v", err)
	}
	if math.Abs(fx.LatDeg-42.6602) > 0.001 || math.Abs(fx.LonDeg+71.0588) > 0.001 {
		t.Fatalf("position = %v,%v", fx.LatDeg, fx.LonDeg)
	}

	if _, err := ReadFix(context.Background(), strings.NewReader("no fix here\r\n")); err == nil {
		t.Fatal("expected error for stream without a fix")
	}
}

func TestFormatGGA(t *testing.T) {
	at := time.Date(2024, 11, 29, 12, 35, 19, 0, time.UTC)
	got, err := FormatGGA(48.1173, 11.5166667, 545.4, 1, 8, at)
	if err != nil {
		t.Fatalf("FormatGGA: %v", err)
	}
	if !strings.HasPrefix(got, "$GPGGA,123519.00,4807.03800,N,01131.00000,E,1,08,1.0,545.4,M,") {
		t.Fatalf("sentence = %q", got)
	}
	if !strings.HasSuffix(got, "\r\n") {
		t.Fatalf("missing CRLF terminator: %q", got)
	}

	// The sentence must round-trip through our own validator.
	s, err := ParseSentence(strings.TrimSpace(got))
	if err != nil {
		t.Fatalf("self-parse: %v", err)
	}
	if s.Type != "GGA" {
		t.Fatalf("type = %q", s.Type)
	}

	var fx Fix
	if !fx.Apply(at, s) {
		t.Fatal("formatted sentence did not produce a fix")
	}
	if math.Abs(fx.LatDeg-48.1173) > 0.0001 || math.Abs(fx.LonDeg-11.5166667) > 0.0001 {
		t.Fatalf("round-trip position = %v,%v", fx.LatDeg, fx.LonDeg)
	}
}

func TestFormatGGARejectsBadInput(t *testing.T) {
	at := time.Now()
	if _, err := FormatGGA(91, 0, 0, 1, 8, at); err == nil {
		t.Error("latitude 91 accepted")
	}
	if _, err := FormatGGA(0, -181, 0, 1, 8, at); err == nil {
		t.Error("longitude -181 accepted")
	}
	if _, err := FormatGGA(0, 0, 0, 10, 8, at); err == nil {
		t.Error("fix quality 10 accepted")
	}
	if _, err := FormatGGA(0, 0, 0, 1, 100, at); err == nil {
		t.Error("satellite count 100 accepted")
	}
}

package nmea

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"
)

// ReadFix consumes sentences from r until it has a valid position, then
// returns it. Garbled lines are skipped; receivers emit partial sentences
// at power-on. Returns the context error if ctx ends first, or io.EOF-wrapped
// failure when the stream ends without a fix.
func ReadFix(ctx context.Context, r io.Reader) (Fix, error) {
	var fx Fix
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return Fix{}, err
		}
		s, err := ParseSentence(sc.Text())
		if err != nil {
			continue
		}
		if fx.Apply(time.Now(), s) && fx.Valid {
			return fx, nil
		}
	}
	if err := sc.Err(); err != nil {
		return Fix{}, fmt.Errorf("nmea: read: %w", err)
	}
	return Fix{}, fmt.Errorf("nmea: stream ended without a fix: %w", io.ErrUnexpectedEOF)
}

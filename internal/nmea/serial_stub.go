//go:build !linux

package nmea

import (
	"fmt"
	"os"
)

func OpenSerial(path string, baud int) (*os.File, error) {
	return nil, fmt.Errorf("nmea: serial input not supported on this platform")
}

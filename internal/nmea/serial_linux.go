//go:build linux

package nmea

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// OpenSerial opens a GNSS receiver's serial device in raw 8N1 mode at the
// given baud rate. u-blox style USB receivers show up as /dev/ttyACM* and
// default to 9600 baud.
func OpenSerial(path string, baud int) (*os.File, error) {
	spd, err := baudFlag(baud)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, err
	}
	ok := false
	defer func() {
		if !ok {
			_ = unix.Close(fd)
		}
	}()

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, err
	}

	// Raw mode: no line editing, no CR/LF translation, no flow control.
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8

	// Block for the first byte, then allow up to a second of quiet.
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 10

	t.Cflag &^= unix.CBAUD
	t.Cflag |= spd
	t.Ispeed = spd
	t.Ospeed = spd

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		return nil, err
	}

	f := os.NewFile(uintptr(fd), path)
	if f == nil {
		return nil, fmt.Errorf("nmea: os.NewFile failed for %s", path)
	}
	ok = true
	return f, nil
}

func baudFlag(baud int) (uint32, error) {
	switch baud {
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	default:
		return 0, fmt.Errorf("nmea: unsupported baud %d", baud)
	}
}

package platform

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	userAgent = "NTRIP-Atlas/1.0"
	chunkSize = 1024

	credentialsFile = "credentials.yaml"
	failuresFile    = "failures.bin"
)

// NetPlatform is the standard Platform for hosts with a sockets API and a
// filesystem. Credentials land in a YAML file and failure history in a
// small binary blob, both under StateDir.
type NetPlatform struct {
	StateDir  string
	Dialer    net.Dialer
	TLSConfig *tls.Config
	Log       zerolog.Logger

	mu sync.Mutex // guards StateDir files
}

// NewNetPlatform returns a platform persisting under stateDir, creating the
// directory if needed.
func NewNetPlatform(stateDir string, log zerolog.Logger) (*NetPlatform, error) {
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return nil, fmt.Errorf("platform: state dir: %w", err)
	}
	return &NetPlatform{
		StateDir: stateDir,
		Dialer:   net.Dialer{Timeout: 10 * time.Second},
		Log:      log,
	}, nil
}

// HTTPStream dials the caster, performs a bare GET and streams the body.
// Both proper HTTP responses and the NTRIP 1.0 "SOURCETABLE 200 OK" dialect
// are accepted; in the latter case the status line itself is fed to the
// sink, which skips it as a non-record line.
func (p *NetPlatform) HTTPStream(ctx context.Context, host string, port uint16, useTLS bool, path string, sink StreamFunc) error {
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	start := time.Now()

	conn, err := p.Dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return wrapNetErr(fmt.Errorf("dial %s: %w", addr, err))
	}
	defer conn.Close()

	if useTLS {
		cfg := p.TLSConfig
		if cfg == nil {
			cfg = &tls.Config{ServerName: host}
		}
		tc := tls.Client(conn, cfg)
		if err := tc.HandshakeContext(ctx); err != nil {
			return wrapNetErr(fmt.Errorf("tls handshake %s: %w", addr, err))
		}
		conn = tc
	}

	if dl, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(dl); err != nil {
			return err
		}
	}

	req := fmt.Sprintf("GET %s HTTP/1.1\r\nHost: %s\r\nUser-Agent: %s\r\nNtrip-Version: Ntrip/2.0\r\nConnection: close\r\n\r\n",
		path, host, userAgent)
	if _, err := conn.Write([]byte(req)); err != nil {
		return wrapNetErr(fmt.Errorf("write request: %w", err))
	}

	br := bufio.NewReader(conn)
	if err := skipResponseHeaders(br); err != nil {
		return err
	}

	buf := make([]byte, chunkSize)
	var total int
	for {
		n, err := br.Read(buf)
		if n > 0 {
			total += n
			if sink(buf[:n]) {
				p.Log.Debug().Str("host", host).Int("bytes", total).
					Dur("elapsed", time.Since(start)).Msg("stream stopped early")
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return ErrTimeout
			}
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				p.Log.Debug().Str("host", host).Int("bytes", total).
					Dur("elapsed", time.Since(start)).Msg("stream complete")
				return nil
			}
			return wrapNetErr(err)
		}
	}
}

// skipResponseHeaders consumes an HTTP status line and headers. NTRIP 1.0
// casters answer with a bare "SOURCETABLE 200 OK" line instead; that is left
// in the stream for the caller.
func skipResponseHeaders(br *bufio.Reader) error {
	peek, err := br.Peek(5)
	if err != nil {
		return wrapNetErr(err)
	}
	if string(peek) != "HTTP/" {
		return nil
	}
	status, err := br.ReadString('\n')
	if err != nil {
		return wrapNetErr(err)
	}
	parts := strings.SplitN(status, " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[1], "2") {
		return fmt.Errorf("platform: caster returned %s", strings.TrimSpace(status))
	}
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return wrapNetErr(err)
		}
		if line == "\r\n" || line == "\n" {
			return nil
		}
	}
}

func wrapNetErr(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

// SendNMEA writes one CRLF-terminated sentence to the connection.
func (p *NetPlatform) SendNMEA(conn net.Conn, sentence string) error {
	if conn == nil {
		return errors.New("platform: nil connection")
	}
	if !strings.HasSuffix(sentence, "\r\n") {
		sentence += "\r\n"
	}
	_, err := conn.Write([]byte(sentence))
	return wrapNetErr(err)
}

func (p *NetPlatform) credentialsPath() string { return filepath.Join(p.StateDir, credentialsFile) }
func (p *NetPlatform) failuresPath() string    { return filepath.Join(p.StateDir, failuresFile) }

func (p *NetPlatform) readCredentials() (map[string]string, error) {
	b, err := os.ReadFile(p.credentialsPath())
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	m := map[string]string{}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("platform: credentials file: %w", err)
	}
	return m, nil
}

// StoreCredential writes one key to the credentials file. The file is
// world-unreadable but otherwise plain YAML; hosts wanting a real keyring
// substitute their own Platform.
func (p *NetPlatform) StoreCredential(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, err := p.readCredentials()
	if err != nil {
		return err
	}
	m[key] = value
	b, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(p.credentialsPath(), b, 0o600)
}

func (p *NetPlatform) LoadCredential(key string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, err := p.readCredentials()
	if err != nil {
		return "", err
	}
	v, ok := m[key]
	if !ok {
		return "", ErrNotStored
	}
	return v, nil
}

func (p *NetPlatform) StoreFailures(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return os.WriteFile(p.failuresPath(), data, 0o600)
}

func (p *NetPlatform) LoadFailures() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, err := os.ReadFile(p.failuresPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotStored
	}
	return b, err
}

func (p *NetPlatform) ClearFailures() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := os.Remove(p.failuresPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (p *NetPlatform) NowSeconds() int64 { return time.Now().Unix() }
func (p *NetPlatform) NowMillis() int64  { return time.Now().UnixMilli() }

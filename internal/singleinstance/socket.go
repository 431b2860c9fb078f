// Package singleinstance keeps one viewer process per user. A second
// invocation forwards its document paths over a unix socket to the running
// instance and exits; the running instance publishes them as open requests.
package singleinstance

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/folio/internal/viewer/event"
)

const (
	socketName  = "folio.sock"
	dialTimeout = 2 * time.Second
)

// SocketPath returns the per-user control socket path under the runtime
// directory.
func SocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, socketName)
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("%s-%d", socketName, os.Getuid()))
}

// NotifyRunning forwards paths to an already-running instance. It reports
// false when no instance is listening.
func NotifyRunning(socketPath string, paths []string) bool {
	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return false
	}
	defer conn.Close()

	for _, p := range paths {
		if _, err := fmt.Fprintln(conn, p); err != nil {
			return false
		}
	}
	return true
}

// Server listens on the control socket and turns forwarded paths into
// OpenRequested events.
type Server struct {
	bus    *event.Bus
	logger zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
	path     string
}

// NewServer returns a server publishing to bus.
func NewServer(bus *event.Bus, logger zerolog.Logger) *Server {
	return &Server{
		bus:    bus,
		logger: logger.With().Str("component", "singleinstance").Logger(),
	}
}

// Listen claims the control socket, removing a stale one left by a crashed
// instance.
func (s *Server) Listen(socketPath string) error {
	if NotifyRunning(socketPath, nil) {
		return fmt.Errorf("singleinstance: another instance is listening on %s", socketPath)
	}
	_ = os.Remove(socketPath)

	l, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("singleinstance: listen on %s: %w", socketPath, err)
	}

	s.mu.Lock()
	s.listener = l
	s.path = socketPath
	s.mu.Unlock()
	return nil
}

// Serve accepts forwarded connections until Close. Each connection carries
// newline-separated document paths.
func (s *Server) Serve() error {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return fmt.Errorf("singleinstance: not listening")
	}

	for {
		conn, err := l.Accept()
		if err != nil {
			if strings.Contains(err.Error(), "use of closed network connection") {
				return nil
			}
			return err
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	var paths []string
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if p := strings.TrimSpace(scanner.Text()); p != "" {
			paths = append(paths, p)
		}
	}
	if err := scanner.Err(); err != nil {
		s.logger.Warn().Err(err).Msg("forwarded request read failed")
		return
	}
	if len(paths) == 0 {
		return
	}

	s.logger.Debug().Strs("paths", paths).Msg("open request forwarded")
	s.bus.Publish(event.OpenRequested{Paths: paths})
}

// Close stops accepting and removes the socket file.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	s.listener = nil
	_ = os.Remove(s.path)
	return err
}

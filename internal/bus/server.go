package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ServerOptions contains configurable parameters for the embedded NATS
// server.
type ServerOptions struct {
	// Host is the listen address. Empty means localhost.
	Host string

	// Port is the port the server listens on.
	Port int

	// ServerName is an optional name for the server instance.
	ServerName string
}

// Server wraps an embedded NATS server so serve mode needs no external
// broker for remote observers.
type Server struct {
	natsServer *server.Server
	log        zerolog.Logger
	startOnce  sync.Once
}

// NewServer creates an embedded NATS server with the given options.
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}
	if opts.ServerName == "" {
		opts.ServerName = "automaker_embedded_nats_server"
	}

	serverOpts := &server.Options{
		ServerName: opts.ServerName,
		Host:       opts.Host,
		Port:       opts.Port,
	}

	natsServer, err := server.NewServer(serverOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS server: %w", err)
	}
	natsServer.SetLogger(newNATSLogger(), false, false)

	return &Server{
		natsServer: natsServer,
		log:        log.With().Str("component", "nats-server").Logger(),
	}, nil
}

// Start starts the NATS server and waits until it accepts connections.
func (s *Server) Start(ctx context.Context) error {
	s.startOnce.Do(func() {
		s.natsServer.Start()
	})

	if !s.natsServer.ReadyForConnections(5 * time.Second) {
		return fmt.Errorf("NATS server failed to start within 5s timeout")
	}
	s.log.Info().Str("client_url", s.ClientURL()).Msg("event bus listening")
	return nil
}

// ClientURL returns the URL clients use to connect.
func (s *Server) ClientURL() string {
	return s.natsServer.ClientURL()
}

// Stop gracefully stops the NATS server.
func (s *Server) Stop() error {
	s.natsServer.LameDuckShutdown()
	return nil
}

// newNATSLogger creates a NATS-compatible logger that forwards to zerolog.
func newNATSLogger() server.Logger {
	return &natsLogger{
		log: log.With().Str("component", "nats").Logger().Level(zerolog.WarnLevel),
	}
}

type natsLogger struct {
	log zerolog.Logger
}

func (n *natsLogger) Noticef(format string, v ...interface{}) { n.log.Info().Msgf(format, v...) }
func (n *natsLogger) Warnf(format string, v ...interface{})   { n.log.Warn().Msgf(format, v...) }
func (n *natsLogger) Fatalf(format string, v ...interface{})  { n.log.Fatal().Msgf(format, v...) }
func (n *natsLogger) Errorf(format string, v ...interface{})  { n.log.Error().Msgf(format, v...) }
func (n *natsLogger) Debugf(format string, v ...interface{})  { n.log.Debug().Msgf(format, v...) }
func (n *natsLogger) Tracef(format string, v ...interface{})  { n.log.Trace().Msgf(format, v...) }

package devserver

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/positions/internal/changefeed"
	"github.com/muurk/positions/internal/discovery"
	"github.com/muurk/positions/internal/logging"
	"github.com/muurk/positions/internal/version"
)

// shutdownTimeout bounds how long in-flight requests may take after ctx ends.
const shutdownTimeout = 10 * time.Second

// Config holds the server configuration
type Config struct {
	Host        string
	Port        int
	ContextRoot string // prefix for every route, e.g. "/mes"
	Username    string // enables Basic Auth when set
	Password    string
	CertPath    string // TLS certificate; plain HTTP when empty
	KeyPath     string
	Advertise   bool   // announce the backend over mDNS
	Instance    string // mDNS instance name
}

// Server is the development backend: an in-memory document positions API
// with a change feed.
type Server struct {
	config    *Config
	store     *Store
	hub       *changefeed.Hub
	handler   http.Handler
	tlsConfig *tls.Config

	listener net.Listener
	ready    chan struct{}
}

// New creates a server over store. A nil store gets the sample data.
func New(config *Config, store *Store) (*Server, error) {
	if store == nil {
		store = NewSampleStore()
	}

	var tlsConfig *tls.Config
	if config.CertPath != "" || config.KeyPath != "" {
		var err error
		tlsConfig, err = NewTLSConfig(config.CertPath, config.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	hub := changefeed.NewHub()
	return &Server{
		config:    config,
		store:     store,
		hub:       hub,
		handler:   NewRouter(store, hub, config.ContextRoot, config.Username, config.Password),
		tlsConfig: tlsConfig,
		ready:     make(chan struct{}),
	}, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.handler }

// Hub returns the change feed hub.
func (s *Server) Hub() *changefeed.Hub { return s.hub }

// Store returns the backing store.
func (s *Server) Store() *Store { return s.store }

// Addr returns the listening address once Run has bound it.
func (s *Server) Addr() net.Addr {
	<-s.ready
	return s.listener.Addr()
}

// Run serves until ctx is canceled, then shuts the HTTP server, the change
// feed and the mDNS advertisement down.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if s.tlsConfig != nil {
		listener = tls.NewListener(listener, s.tlsConfig)
	}
	s.listener = listener
	close(s.ready)

	port := listener.Addr().(*net.TCPAddr).Port
	logging.Info("Development backend listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("context_root", s.config.ContextRoot),
		zap.Bool("tls", s.tlsConfig != nil),
		zap.Bool("auth", s.config.Username != ""),
	)

	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.config.Advertise {
		g.Go(func() error {
			instance := s.config.Instance
			if instance == "" {
				instance = "positions-devserver"
			}
			adv, err := discovery.Advertise(instance, port, s.config.ContextRoot, version.Version)
			if err != nil {
				// Discovery is optional; the API stays up.
				logging.Warn("mDNS advertisement failed", zap.Error(err))
				return nil
			}
			logging.Info("Advertising over mDNS",
				zap.String("instance", instance),
				zap.String("service", discovery.ServiceType),
			)
			<-ctx.Done()
			adv.Shutdown()
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logging.Info("Shutting down development backend...")

		s.hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
			return httpServer.Close()
		}
		return nil
	})

	err = g.Wait()
	logging.Sync()
	return err
}

// Package gateway exposes the interceptor to playback engines that speak
// plain HTTP: each inbound request carries an internally tagged URL in
// its "u" query parameter and is adapted into an intercepted request.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/bactn/vidloader/pkg/loader"
	"github.com/bactn/vidloader/pkg/loader/scheme"
)

// Config contains gateway settings
type Config struct {
	Addr           string        `json:"addr"`
	RequestTimeout time.Duration `json:"request_timeout"`
	Logger         logging.Logger
}

// DefaultConfig returns default gateway configuration
func DefaultConfig() *Config {
	return &Config{
		Addr:           "127.0.0.1:8474",
		RequestTimeout: 30 * time.Second,
	}
}

// Server adapts playback-engine HTTP requests into intercepted requests
type Server struct {
	interceptor *loader.Interceptor
	config      *Config
	logger      logging.Logger
	httpServer  *http.Server
}

// NewServer creates a gateway in front of interceptor
func NewServer(interceptor *loader.Interceptor, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	s := &Server{
		interceptor: interceptor,
		config:      config,
		logger:      logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/load", s.handleLoad)
	s.httpServer = &http.Server{
		Addr:    config.Addr,
		Handler: mux,
	}

	return s
}

// ListenAndServe blocks serving requests until Shutdown
func (s *Server) ListenAndServe() error {
	s.logger.Debug("Gateway listening", logging.Fields{
		"addr": s.config.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("gateway server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the gateway's HTTP handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw := r.URL.Query().Get("u")
	if raw == "" {
		http.Error(w, "missing u parameter", http.StatusBadRequest)
		return
	}

	u, err := url.Parse(raw)
	if err != nil || !scheme.IsInternal(u) {
		http.Error(w, "not an intercepted URL", http.StatusBadRequest)
		return
	}

	req := newRequest(u)
	handled := s.interceptor.ShouldHandle(req)

	// A false verdict can still mean "already resolved, do not wait";
	// only treat it as declined when nothing was completed.
	if !handled && !req.isFinished() {
		s.logger.Debug("Request declined", logging.Fields{
			"url": u.String(),
		})
		http.Error(w, "request not handled", http.StatusBadGateway)
		return
	}

	select {
	case <-req.done:
	case <-time.After(s.config.RequestTimeout):
		http.Error(w, "request timed out", http.StatusGatewayTimeout)
		return
	case <-r.Context().Done():
		return
	}

	meta, data := req.result()
	if meta.ContentType != "" {
		w.Header().Set("Content-Type", meta.ContentType)
	}
	w.Header().Set("Content-Length", fmt.Sprintf("%d", meta.ContentLength))
	status := meta.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	w.Write(data)
}

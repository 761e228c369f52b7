package app

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/tunein/go-logging/v7/pkg/logger"
	"github.com/tunein/go-logging/v7/pkg/logger/logtypes"
	"github.com/tunein/go-logging/v7/pkg/rootlogger"

	"github.com/bactn/vidloader/configs"
	"github.com/bactn/vidloader/internal/gateway"
	"github.com/bactn/vidloader/pkg/loader"
	"github.com/bactn/vidloader/pkg/loader/adjust"
	"github.com/bactn/vidloader/pkg/loader/common"
	"github.com/bactn/vidloader/pkg/loader/fetch"
	"github.com/bactn/vidloader/pkg/loader/keystore"
	"github.com/bactn/vidloader/pkg/loader/scheme"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	ConfigFile  string
	SessionFile string // Offline session description (required for serve)
	Verbose     bool

	// Runtime context
	Logger  logging.Logger
	Config  *configs.Config
	Session *Session
}

// LoaderApp wires the interceptor, its collaborators and the gateway for
// one offline playback session
type LoaderApp struct {
	ctx         *Context
	config      *configs.Config
	session     *Session
	logger      logging.Logger
	keys        *keystore.Store
	interceptor *loader.Interceptor
	gateway     *gateway.Server
}

// NewLoaderApp creates the application from a parsed context
func NewLoaderApp(ctx *Context) (*LoaderApp, error) {
	logger := setupLogging(ctx)
	ctx.Logger = logger

	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	ctx.Config = config

	if ctx.SessionFile == "" {
		return nil, fmt.Errorf("session file is required")
	}
	session, err := LoadSession(ctx.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	ctx.Session = session

	logger.Debug("Loader application initialized", logging.Fields{
		"config_file":  ctx.ConfigFile,
		"session_file": ctx.SessionFile,
		"master_url":   session.MasterURL,
		"gateway_addr": config.Gateway.Addr,
	})

	if err := os.MkdirAll(filepath.Dir(config.Keys.DatabasePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create key database directory: %w", err)
	}
	keys, err := keystore.Open(config.Keys.DatabasePath)
	if err != nil {
		return nil, err
	}

	app := &LoaderApp{
		ctx:     ctx,
		config:  config,
		session: session,
		logger:  logger,
		keys:    keys,
	}

	if err := app.buildPipeline(); err != nil {
		keys.Close()
		return nil, err
	}

	return app, nil
}

// buildPipeline constructs the collaborators, seeds the initial manifest
// and assembles interceptor and gateway
func (app *LoaderApp) buildPipeline() error {
	fetcher := fetch.NewClient(&fetch.Config{
		Timeout:   app.config.Fetch.Timeout,
		UserAgent: app.config.Fetch.UserAgent,
	})

	resource, err := app.fetchInitialManifest(fetcher)
	if err != nil {
		return err
	}

	interceptor, err := loader.New(&loader.Config{
		Classifier:       scheme.NewClassifier(app.keys, app.logger),
		Fetcher:          fetcher,
		MasterAdjuster:   adjust.NewMaster(app.logger),
		PlaylistAdjuster: adjust.NewPlaylist(app.logger),
		Observer:         newReportingObserver(app.logger, filepath.Base(app.ctx.SessionFile)),
		Headers:          app.sessionHeaders(),
		Resource:         resource,
		Host: loader.HostCapabilities{
			RequiresResolvedSignal: app.config.Host.RequiresResolvedSignal,
		},
		Logger: app.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create interceptor: %w", err)
	}
	app.interceptor = interceptor

	app.gateway = gateway.NewServer(interceptor, &gateway.Config{
		Addr:           app.config.Gateway.Addr,
		RequestTimeout: app.config.Gateway.RequestTimeout,
		Logger:         app.logger,
	})

	return nil
}

// fetchInitialManifest obtains the session's first manifest up front, the
// way the download manager did before playback
func (app *LoaderApp) fetchInitialManifest(fetcher common.Fetcher) (*common.StreamResource, error) {
	masterURL, err := url.Parse(app.session.MasterURL)
	if err != nil {
		return nil, fmt.Errorf("invalid master URL: %w", err)
	}

	fetchCtx, cancel := context.WithTimeout(context.Background(), app.config.Fetch.Timeout)
	defer cancel()

	resp, err := fetcher.Fetch(fetchCtx, masterURL, app.sessionHeaders())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch initial manifest: %w", err)
	}

	app.logger.Debug("Initial manifest buffered", logging.Fields{
		"url":   masterURL.String(),
		"type":  string(app.session.ResourceType()),
		"bytes": len(resp.Body),
	})

	return &common.StreamResource{
		Type: app.session.ResourceType(),
		Data: resp.Body,
		Meta: resp.Meta,
	}, nil
}

func (app *LoaderApp) sessionHeaders() common.Headers {
	headers := common.Headers{}
	for name, value := range app.config.Fetch.Headers {
		headers[name] = value
	}
	for name, value := range app.session.Headers {
		headers[name] = value
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}

// InternalMasterURL returns the URL the playback engine should request
// through the gateway
func (app *LoaderApp) InternalMasterURL() string {
	u, err := url.Parse(app.session.MasterURL)
	if err != nil {
		return ""
	}
	return scheme.ToInternal(u).String()
}

// Run serves gateway requests until ctx is cancelled
func (app *LoaderApp) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.gateway.ListenAndServe()
	}()

	app.logger.Debug("Serving offline session", logging.Fields{
		"gateway_addr": app.config.Gateway.Addr,
		"master_url":   app.InternalMasterURL(),
	})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return app.gateway.Shutdown(shutdownCtx)
}

// Close releases the interceptor and key store
func (app *LoaderApp) Close() error {
	if app.interceptor != nil {
		app.interceptor.Close()
	}
	if app.keys != nil {
		return app.keys.Close()
	}
	return nil
}

// setupLogging configures logging based on context
func setupLogging(ctx *Context) logging.Logger {
	level := logtypes.InfoLevel
	if ctx.Verbose {
		level = logtypes.DebugLevel
	}

	home, err := os.UserHomeDir()
	if err == nil {
		logPath := filepath.Join(home, ".local", "share", "vidloader", "vidloader.log")
		if mkErr := os.MkdirAll(filepath.Dir(logPath), 0755); mkErr == nil {
			if cfgErr := rootlogger.Configure(logger.LogOptions{
				Out:          logPath,
				ReopenSignal: syscall.SIGHUP,
				Level:        level,
			}); cfgErr != nil {
				logging.Error(cfgErr, "Failed configuring log writer")
			}
		}
	}

	return logging.NewDefaultLogger()
}

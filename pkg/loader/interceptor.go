// Package loader implements the resource-loading interceptor that lets a
// playback engine consume content downloaded for offline use. Every
// intercepted request takes exactly one of three paths: persistent-key
// delivery from the local store, a one-shot rewrite of the buffered
// initial master manifest, or an asynchronous fetch-then-rewrite of any
// other playlist.
package loader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/bactn/vidloader/pkg/loader/common"
)

// AckPolicy selects the verdict ShouldHandle returns for requests that
// were resolved synchronously inside the call.
type AckPolicy int

const (
	// AckWait answers "handled, keep waiting" even for requests already
	// completed inside the intercept call.
	AckWait AckPolicy = iota
	// AckResolved answers "already resolved, do not wait". Hosts that
	// time out on resolved-but-acknowledged-as-pending requests need
	// this.
	AckResolved
)

// HostCapabilities describes the completion-acknowledgment behavior of
// the host runtime. Decided once at construction, never re-derived per
// call.
type HostCapabilities struct {
	// RequiresResolvedSignal is set for host versions that abort with a
	// spurious timeout unless a synchronously completed intercept call
	// is acknowledged as already resolved.
	RequiresResolvedSignal bool
}

// Config contains everything an interceptor needs at construction. The
// four collaborators are required; Observer and Logger default to no-op
// and the default logger.
type Config struct {
	Classifier       common.Classifier
	Fetcher          common.Fetcher
	MasterAdjuster   common.MasterAdjuster
	PlaylistAdjuster common.PlaylistAdjuster
	Observer         common.Observer

	// Headers are forwarded unmodified on every network fetch
	Headers common.Headers

	// Resource is the initial manifest already obtained by the caller.
	// A master-kind resource answers the first master request and is
	// then cleared, success or failure.
	Resource *common.StreamResource

	Host   HostCapabilities
	Logger logging.Logger
}

// Interceptor dispatches intercepted resource-load requests. All
// classification runs on a serial execution context owned by the
// instance; asynchronous completions are marshaled back onto it before
// touching shared state or the host request.
type Interceptor struct {
	classifier common.Classifier
	fetcher    common.Fetcher
	master     common.MasterAdjuster
	playlist   common.PlaylistAdjuster
	observer   common.Observer
	headers    common.Headers
	logger     logging.Logger

	// resource is the single-use initial-manifest slot, touched only on
	// the serial context
	resource *common.StreamResource

	ack  AckPolicy
	exec *executor

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New creates an interceptor from cfg
func New(cfg *Config) (*Interceptor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.MasterAdjuster == nil {
		return nil, fmt.Errorf("master adjuster is required")
	}
	if cfg.PlaylistAdjuster == nil {
		return nil, fmt.Errorf("playlist adjuster is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	ack := AckWait
	if cfg.Host.RequiresResolvedSignal {
		ack = AckResolved
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Interceptor{
		classifier: cfg.Classifier,
		fetcher:    cfg.Fetcher,
		master:     cfg.MasterAdjuster,
		playlist:   cfg.PlaylistAdjuster,
		observer:   cfg.Observer,
		headers:    cfg.Headers,
		logger:     logger,
		resource:   cfg.Resource,
		ack:        ack,
		exec:       newExecutor(),
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// AckPolicy returns the acknowledgment policy detected at construction
func (i *Interceptor) AckPolicy() AckPolicy {
	return i.ack
}

// ShouldHandle is the host entry point, called for every resource load.
// Returning false means the request is not served by this interceptor.
// The call blocks until the request has been classified and either
// resolved (key and master paths) or its fetch launched.
func (i *Interceptor) ShouldHandle(req common.Request) bool {
	verdict := false
	if !i.exec.do(func() {
		verdict = i.dispatch(req)
	}) {
		// Torn down; decline without touching the request.
		return false
	}
	return verdict
}

// Close tears the interceptor down. Pending fetch and adjust callbacks
// become no-ops; no completion is attempted on a request whose owner no
// longer exists.
func (i *Interceptor) Close() error {
	i.closeOnce.Do(func() {
		// Stop the serial context first so completion callbacks racing
		// with teardown are dropped, then cancel in-flight fetches.
		i.exec.close()
		i.cancel()
	})
	return nil
}

// dispatch runs on the serial context and takes exactly one of the three
// paths for req
func (i *Interceptor) dispatch(req common.Request) bool {
	u := req.URL()

	// Key lookup takes precedence over manifest classification.
	if key, ok := i.classifier.PersistentKey(u); ok {
		return i.deliverKey(req, u, key)
	}

	if res := i.resource; res != nil && res.Type == common.FileTypeMaster {
		// Single use: cleared on success and on failure, so a repeat
		// master request falls through to the fetch path.
		i.resource = nil
		return i.rewriteMaster(req, u, res)
	}

	original, ok := i.classifier.OriginalURL(u)
	if !ok {
		i.reportFailure(common.NewLoaderError(common.ErrCodeURLScheme,
			u.String(), "URL lacks the internal scheme marker", nil))
		return false
	}

	i.launchFetch(req, u, original)
	return true
}

func (i *Interceptor) deliverKey(req common.Request, u *url.URL, key []byte) bool {
	req.Finish(common.ResponseMeta{
		StatusCode:    200,
		ContentType:   common.KeyContentType,
		ContentLength: int64(len(key)),
	}, key)

	if i.observer != nil {
		i.observer.OnKeyLoaded()
	}

	i.logger.Debug("Persistent key delivered", logging.Fields{
		"url":       u.String(),
		"key_bytes": len(key),
	})

	return i.resolvedVerdict()
}

func (i *Interceptor) rewriteMaster(req common.Request, u *url.URL, res *common.StreamResource) bool {
	adjusted, err := i.master.Adjust(res.Data)
	if err != nil {
		i.reportFailure(common.NewLoaderError(common.ErrCodeManifestParse,
			u.String(), "failed to adjust master manifest", err))
		// Accepted but never completed: the host treats this as a
		// failure distinct from a declined request.
		return true
	}

	meta := res.Meta
	meta.ContentLength = int64(len(adjusted))
	req.Finish(meta, adjusted)

	i.logger.Debug("Buffered master manifest served", logging.Fields{
		"url":   u.String(),
		"bytes": len(adjusted),
	})

	return i.resolvedVerdict()
}

// launchFetch starts the fetch-then-rewrite pipeline. The fetch runs off
// the serial context; its completion is marshaled back before the
// request or any shared state is touched.
func (i *Interceptor) launchFetch(req common.Request, u, original *url.URL) {
	go func() {
		resp, err := i.fetcher.Fetch(i.ctx, original, i.headers)
		i.exec.submit(func() {
			i.fetchDone(req, u, resp, err)
		})
	}()
}

func (i *Interceptor) fetchDone(req common.Request, u *url.URL, resp *common.FetchedResponse, err error) {
	if err != nil {
		code := common.ErrCodeNetwork
		if errors.Is(err, common.ErrMalformedResponse) {
			code = common.ErrCodeUnknown
		}
		i.reportFailure(common.NewLoaderError(code, u.String(),
			"playlist fetch failed", err))
		return
	}
	if resp == nil || len(resp.Body) == 0 {
		i.reportFailure(common.NewLoaderError(common.ErrCodeUnknown,
			u.String(), "playlist fetch returned no usable response", nil))
		return
	}

	// The untranslated URL is the rewrite base, so relative URIs keep
	// resolving to intercepted locations.
	meta := resp.Meta
	i.playlist.Adjust(resp.Body, u, i.headers, func(adjusted []byte, err error) {
		i.exec.submit(func() {
			i.adjustDone(req, u, meta, adjusted, err)
		})
	})
}

func (i *Interceptor) adjustDone(req common.Request, u *url.URL, meta common.ResponseMeta, adjusted []byte, err error) {
	if err != nil {
		i.reportFailure(common.NewLoaderError(common.ErrCodeManifestParse,
			u.String(), "failed to adjust media playlist", err))
		return
	}

	meta.ContentLength = int64(len(adjusted))
	req.Finish(meta, adjusted)

	i.logger.Debug("Playlist served", logging.Fields{
		"url":   u.String(),
		"bytes": len(adjusted),
	})
}

// resolvedVerdict is the acknowledgment for a request completed
// synchronously inside the intercept call
func (i *Interceptor) resolvedVerdict() bool {
	return i.ack == AckWait
}

func (i *Interceptor) reportFailure(err *common.LoaderError) {
	i.logger.Warn("Resource loading failed", logging.Fields{
		"code":  err.Code,
		"url":   err.URL,
		"error": err.Error(),
	})
	if i.observer != nil {
		i.observer.OnFailure(err)
	}
}

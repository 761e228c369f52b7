package gateway

import (
	"net/url"
	"sync"

	"github.com/bactn/vidloader/pkg/loader/common"
)

// request adapts one inbound HTTP request into the intercepted-request
// handle the loader completes. Finish is accepted at most once.
type request struct {
	u    *url.URL
	done chan struct{}

	mu       sync.Mutex
	finished bool
	meta     common.ResponseMeta
	data     []byte
}

func newRequest(u *url.URL) *request {
	return &request{
		u:    u,
		done: make(chan struct{}),
	}
}

func (r *request) URL() *url.URL {
	return r.u
}

func (r *request) Finish(meta common.ResponseMeta, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	r.finished = true
	r.meta = meta
	r.data = data
	close(r.done)
}

func (r *request) isFinished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

func (r *request) result() (common.ResponseMeta, []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meta, r.data
}

var _ common.Request = (*request)(nil)

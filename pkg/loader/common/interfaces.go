package common

import (
	"context"
	"errors"
	"net/url"
)

// ErrMalformedResponse marks the condition where a fetch produced a
// response but no usable metadata or body came with it. Distinct from a
// transport error; the interceptor maps it to the UNKNOWN failure class.
var ErrMalformedResponse = errors.New("malformed response")

// Classifier inspects intercepted URLs. The persistent-key check takes
// precedence over manifest classification: a URL that resolves to key
// bytes is always served from the key store.
type Classifier interface {
	// PersistentKey returns the stored key bytes for u, if u encodes a
	// persistent-key lookup.
	PersistentKey(u *url.URL) ([]byte, bool)
	// OriginalURL translates an internally tagged URL back to the real
	// network URL. ok is false when u lacks the internal scheme marker.
	OriginalURL(u *url.URL) (originalURL *url.URL, ok bool)
}

// FetchedResponse is the result of a single network fetch
type FetchedResponse struct {
	Meta ResponseMeta
	Body []byte
}

// Fetcher performs a single HTTP GET with the supplied headers. One
// request per call, no retries.
type Fetcher interface {
	Fetch(ctx context.Context, u *url.URL, headers Headers) (*FetchedResponse, error)
}

// MasterAdjuster rewrites master-manifest bytes. Synchronous and pure
// from the interceptor's point of view.
type MasterAdjuster interface {
	Adjust(data []byte) ([]byte, error)
}

// PlaylistAdjuster rewrites variant/media-playlist bytes so embedded
// segment and key URIs resolve against locally cached resources. done is
// invoked exactly once, possibly on an arbitrary goroutine.
type PlaylistAdjuster interface {
	Adjust(data []byte, base *url.URL, headers Headers, done func([]byte, error))
}

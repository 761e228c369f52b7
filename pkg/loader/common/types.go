package common

import "net/url"

// FileType identifies which kind of manifest a buffered resource holds
type FileType string

const (
	FileTypeMaster  FileType = "master"
	FileTypeVariant FileType = "variant"
)

// KeyContentType is the fixed content type used when delivering a
// persistent content key to the playback engine.
const KeyContentType = "application/x-offline-key"

// Headers are forwarded verbatim on every outbound fetch
type Headers map[string]string

// ResponseMeta carries the response metadata used to complete an
// intercepted request
type ResponseMeta struct {
	StatusCode    int    `json:"status_code"`
	ContentType   string `json:"content_type"`
	ContentLength int64  `json:"content_length"`
}

// StreamResource is the first manifest obtained by the caller before
// interception begins. A master-kind resource is consumed at most once.
type StreamResource struct {
	Type FileType     `json:"type"`
	Data []byte       `json:"-"`
	Meta ResponseMeta `json:"meta"`
}

// Request is the host-supplied handle for one intercepted resource load.
// Finish must be called at most once; a request that is never finished is
// left to the host's own timeout policy.
type Request interface {
	URL() *url.URL
	Finish(meta ResponseMeta, data []byte)
}

// Observer receives terminal outcomes. Implementations must not block or
// panic; they are invoked from the interceptor's execution context.
type Observer interface {
	OnKeyLoaded()
	OnFailure(err *LoaderError)
}

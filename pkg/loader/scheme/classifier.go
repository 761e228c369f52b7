package scheme

import (
	"context"
	"net/url"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/bactn/vidloader/pkg/loader/common"
)

// KeyReader is the slice of the key store the classifier needs
type KeyReader interface {
	Load(ctx context.Context, id string) ([]byte, error)
}

// Classifier implements common.Classifier on top of the scheme
// convention and a persistent key store.
type Classifier struct {
	keys        KeyReader
	logger      logging.Logger
	loadTimeout time.Duration
}

// NewClassifier creates a classifier backed by the given key store
func NewClassifier(keys KeyReader, logger logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Classifier{
		keys:        keys,
		logger:      logger,
		loadTimeout: 5 * time.Second,
	}
}

// PersistentKey returns the stored key bytes when u is an offline-key
// URL whose identifier is present in the store.
func (c *Classifier) PersistentKey(u *url.URL) ([]byte, bool) {
	id, ok := KeyID(u)
	if !ok {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.loadTimeout)
	defer cancel()

	key, err := c.keys.Load(ctx, id)
	if err != nil {
		c.logger.Warn("Persistent key lookup failed", logging.Fields{
			"key_id": id,
			"error":  err.Error(),
		})
		return nil, false
	}
	return key, true
}

// OriginalURL translates an internally tagged URL back to its network form
func (c *Classifier) OriginalURL(u *url.URL) (*url.URL, bool) {
	return ToOriginal(u)
}

var _ common.Classifier = (*Classifier)(nil)

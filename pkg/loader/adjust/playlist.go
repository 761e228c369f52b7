package adjust

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/grafov/m3u8"

	"github.com/bactn/vidloader/pkg/loader/common"
	"github.com/bactn/vidloader/pkg/loader/keystore"
	"github.com/bactn/vidloader/pkg/loader/scheme"
)

// Playlist rewrites variant/media playlists: segment and map URIs are
// resolved to absolute URLs against the playlist's base URL, and
// encryption-key URIs are replaced by offline-key lookups so the engine
// never fetches a key from the network during offline playback.
type Playlist struct {
	logger logging.Logger
}

// NewPlaylist creates a media-playlist adjuster
func NewPlaylist(logger logging.Logger) *Playlist {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Playlist{logger: logger}
}

// Adjust rewrites playlist bytes and reports the result through done,
// exactly once, from a worker goroutine.
func (a *Playlist) Adjust(data []byte, base *url.URL, headers common.Headers, done func([]byte, error)) {
	go func() {
		adjusted, err := a.rewrite(data, base)
		done(adjusted, err)
	}()
}

func (a *Playlist) rewrite(data []byte, base *url.URL) ([]byte, error) {
	playlist, listType, err := m3u8.Decode(*bytes.NewBuffer(data), true)
	if err != nil {
		return nil, fmt.Errorf("failed to parse media playlist: %w", err)
	}
	if listType != m3u8.MEDIA {
		return nil, fmt.Errorf("expected media playlist, got master manifest")
	}

	media := playlist.(*m3u8.MediaPlaylist)

	if media.Key != nil && media.Key.URI != "" {
		media.Key.URI = a.disguiseKeyURI(base, media.Key.URI)
	}
	if media.Map != nil && media.Map.URI != "" {
		media.Map.URI = resolveURI(base, media.Map.URI)
	}

	segments := 0
	for _, segment := range media.Segments {
		if segment == nil {
			continue
		}
		segment.URI = resolveURI(base, segment.URI)
		if segment.Key != nil && segment.Key.URI != "" {
			segment.Key.URI = a.disguiseKeyURI(base, segment.Key.URI)
		}
		if segment.Map != nil && segment.Map.URI != "" {
			segment.Map.URI = resolveURI(base, segment.Map.URI)
		}
		segments++
	}

	a.logger.Debug("Media playlist adjusted", logging.Fields{
		"base":     base.String(),
		"segments": segments,
	})

	return media.Encode().Bytes(), nil
}

// disguiseKeyURI maps a key URI to the offline-key URL it is stored
// under. The identifier derives from the real network form of the key
// URL so download and playback agree on it.
func (a *Playlist) disguiseKeyURI(base *url.URL, uri string) string {
	resolved, err := url.Parse(resolveURI(base, uri))
	if err != nil {
		return uri
	}
	if original, ok := scheme.ToOriginal(resolved); ok {
		resolved = original
	}
	id := keystore.DeriveKeyID(resolved.String())
	return scheme.KeyURL(id).String()
}

// resolveURI resolves uri against base, returning uri untouched when it
// cannot be parsed
func resolveURI(base *url.URL, uri string) string {
	ref, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	if ref.IsAbs() {
		return uri
	}
	return base.ResolveReference(ref).String()
}

var _ common.PlaylistAdjuster = (*Playlist)(nil)

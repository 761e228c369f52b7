// Package adjust provides the default manifest adjusters consumed by the
// interceptor. Master manifests have their variant URIs tagged with the
// internal scheme; media playlists get segment URIs resolved against
// their base URL and key URIs disguised as persistent-key lookups.
package adjust

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/grafov/m3u8"

	"github.com/bactn/vidloader/pkg/loader/common"
	"github.com/bactn/vidloader/pkg/loader/scheme"
)

// Master rewrites master manifests so every absolute variant URI carries
// the internal scheme marker. Relative URIs are left alone: the playback
// engine resolves them against the (already internal) master URL.
type Master struct {
	logger logging.Logger
}

// NewMaster creates a master-manifest adjuster
func NewMaster(logger logging.Logger) *Master {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Master{logger: logger}
}

// Adjust rewrites master-manifest bytes
func (a *Master) Adjust(data []byte) ([]byte, error) {
	playlist, listType, err := m3u8.Decode(*bytes.NewBuffer(data), true)
	if err != nil {
		return nil, fmt.Errorf("failed to parse master manifest: %w", err)
	}
	if listType != m3u8.MASTER {
		return nil, fmt.Errorf("expected master manifest, got media playlist")
	}

	master := playlist.(*m3u8.MasterPlaylist)
	for _, variant := range master.Variants {
		if variant == nil {
			continue
		}
		variant.URI = tagAbsolute(variant.URI)
		for _, alt := range variant.Alternatives {
			if alt != nil && alt.URI != "" {
				alt.URI = tagAbsolute(alt.URI)
			}
		}
	}

	a.logger.Debug("Master manifest adjusted", logging.Fields{
		"variants": len(master.Variants),
		"bytes":    len(data),
	})

	return master.Encode().Bytes(), nil
}

// tagAbsolute tags absolute URIs with the internal scheme marker and
// returns relative URIs unchanged.
func tagAbsolute(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || !u.IsAbs() {
		return uri
	}
	return scheme.ToInternal(u).String()
}

var _ common.MasterAdjuster = (*Master)(nil)

// Package scheme implements the URL convention that marks resource-load
// requests for interception. Original network URLs are tagged by
// prefixing their scheme (https -> offline-https); persistent content
// keys use the dedicated offline-key scheme with the key identifier in
// the host position. Tagging and untagging are pure, reversible
// functions with no side effects.
package scheme

import (
	"net/url"
	"strings"
)

const (
	// Prefix marks a URL as internal so the host routes it to the
	// interceptor instead of the network.
	Prefix = "offline-"

	// KeyScheme is the scheme of persistent-key URLs: offline-key://<id>
	KeyScheme = "offline-key"
)

// ToInternal tags u with the internal scheme marker. Key URLs and
// already-tagged URLs are returned unchanged.
func ToInternal(u *url.URL) *url.URL {
	if u.Scheme == KeyScheme || strings.HasPrefix(u.Scheme, Prefix) {
		return u
	}
	tagged := *u
	tagged.Scheme = Prefix + u.Scheme
	return &tagged
}

// ToOriginal strips the internal scheme marker, recovering the real
// network URL. ok is false when u carries no marker, including for key
// URLs, which never correspond to a network location.
func ToOriginal(u *url.URL) (*url.URL, bool) {
	if u.Scheme == KeyScheme || !strings.HasPrefix(u.Scheme, Prefix) {
		return nil, false
	}
	original := *u
	original.Scheme = strings.TrimPrefix(u.Scheme, Prefix)
	if original.Scheme == "" {
		return nil, false
	}
	return &original, true
}

// IsInternal reports whether u carries the internal scheme marker
func IsInternal(u *url.URL) bool {
	return u.Scheme == KeyScheme || strings.HasPrefix(u.Scheme, Prefix)
}

// KeyURL builds the disguised URL under which the key identified by id
// is requested by rewritten playlists.
func KeyURL(id string) *url.URL {
	return &url.URL{Scheme: KeyScheme, Host: id}
}

// KeyID extracts the key identifier from a persistent-key URL. ok is
// false when u is not a key URL.
func KeyID(u *url.URL) (string, bool) {
	if u.Scheme != KeyScheme || u.Host == "" {
		return "", false
	}
	return u.Host, true
}

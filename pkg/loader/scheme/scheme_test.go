package scheme

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestToInternal(t *testing.T) {
	t.Run("tags network URLs", func(t *testing.T) {
		u := mustParse(t, "https://host/path/master.m3u8?token=1")
		tagged := ToInternal(u)

		assert.Equal(t, "offline-https://host/path/master.m3u8?token=1", tagged.String())
		// The input is never mutated.
		assert.Equal(t, "https", u.Scheme)
	})

	t.Run("already tagged URLs are unchanged", func(t *testing.T) {
		u := mustParse(t, "offline-https://host/master.m3u8")
		assert.Same(t, u, ToInternal(u))
	})

	t.Run("key URLs are unchanged", func(t *testing.T) {
		u := KeyURL("abc")
		assert.Same(t, u, ToInternal(u))
	})
}

func TestToOriginal(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		original := mustParse(t, "http://host:8080/v/low.m3u8")
		back, ok := ToOriginal(ToInternal(original))

		require.True(t, ok)
		assert.Equal(t, original.String(), back.String())
	})

	t.Run("missing marker fails", func(t *testing.T) {
		_, ok := ToOriginal(mustParse(t, "https://host/master.m3u8"))
		assert.False(t, ok)
	})

	t.Run("key URLs have no network form", func(t *testing.T) {
		_, ok := ToOriginal(KeyURL("abc"))
		assert.False(t, ok)
	})

	t.Run("bare marker fails", func(t *testing.T) {
		_, ok := ToOriginal(mustParse(t, "offline-://host/x"))
		assert.False(t, ok)
	})
}

func TestIsInternal(t *testing.T) {
	assert.True(t, IsInternal(mustParse(t, "offline-https://host/x")))
	assert.True(t, IsInternal(KeyURL("abc")))
	assert.False(t, IsInternal(mustParse(t, "https://host/x")))
}

func TestKeyURL(t *testing.T) {
	u := KeyURL("deadbeef")
	assert.Equal(t, "offline-key://deadbeef", u.String())

	id, ok := KeyID(u)
	require.True(t, ok)
	assert.Equal(t, "deadbeef", id)

	_, ok = KeyID(mustParse(t, "offline-https://host/x"))
	assert.False(t, ok)

	_, ok = KeyID(mustParse(t, "offline-key://"))
	assert.False(t, ok)
}

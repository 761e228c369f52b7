package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bactn/vidloader/pkg/loader/common"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestFetchSuccess(t *testing.T) {
	playlist := "#EXTM3U\n#EXT-X-VERSION:3\n"
	var gotHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(playlist))
	}))
	defer server.Close()

	client := NewClient(nil)
	resp, err := client.Fetch(context.Background(), mustParse(t, server.URL),
		common.Headers{"Authorization": "Bearer token"})

	require.NoError(t, err)
	assert.Equal(t, []byte(playlist), resp.Body)
	assert.Equal(t, http.StatusOK, resp.Meta.StatusCode)
	assert.Equal(t, "application/vnd.apple.mpegurl", resp.Meta.ContentType)
	assert.Equal(t, int64(len(playlist)), resp.Meta.ContentLength)

	// Caller headers are forwarded verbatim.
	assert.Equal(t, "Bearer token", gotHeaders.Get("Authorization"))
	assert.Equal(t, "vidloader/1.0", gotHeaders.Get("User-Agent"))
}

func TestFetchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(&Config{Timeout: time.Second, UserAgent: "vidloader/1.0"})
	_, err := client.Fetch(context.Background(), mustParse(t, server.URL), nil)

	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrMalformedResponse)
}

func TestFetchHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(nil)
	_, err := client.Fetch(context.Background(), mustParse(t, server.URL), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetchEmptyBodyIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(nil)
	_, err := client.Fetch(context.Background(), mustParse(t, server.URL), nil)

	assert.ErrorIs(t, err, common.ErrMalformedResponse)
}

func TestFetchNoRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(nil)
	_, err := client.Fetch(context.Background(), mustParse(t, server.URL), nil)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

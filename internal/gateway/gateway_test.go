package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bactn/vidloader/pkg/loader"
	"github.com/bactn/vidloader/pkg/loader/adjust"
	"github.com/bactn/vidloader/pkg/loader/common"
	"github.com/bactn/vidloader/pkg/loader/keystore"
	"github.com/bactn/vidloader/pkg/loader/scheme"
)

type mapKeyReader map[string][]byte

func (m mapKeyReader) Load(_ context.Context, id string) ([]byte, error) {
	key, ok := m[id]
	if !ok {
		return nil, keystore.ErrKeyNotFound
	}
	return key, nil
}

type stubFetcher struct {
	bodies map[string][]byte
}

func (f *stubFetcher) Fetch(_ context.Context, u *url.URL, _ common.Headers) (*common.FetchedResponse, error) {
	body, ok := f.bodies[u.String()]
	if !ok {
		return nil, fmt.Errorf("unexpected fetch: %s", u)
	}
	return &common.FetchedResponse{
		Meta: common.ResponseMeta{
			StatusCode:  200,
			ContentType: "application/vnd.apple.mpegurl",
		},
		Body: body,
	}, nil
}

const testVariantPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:6
#EXT-X-MEDIA-SEQUENCE:0
#EXTINF:6.000,
seg0.ts
#EXT-X-ENDLIST
`

func newTestGateway(t *testing.T, keys mapKeyReader, fetcher common.Fetcher) (*httptest.Server, *loader.Interceptor) {
	t.Helper()

	interceptor, err := loader.New(&loader.Config{
		Classifier:       scheme.NewClassifier(keys, nil),
		Fetcher:          fetcher,
		MasterAdjuster:   adjust.NewMaster(nil),
		PlaylistAdjuster: adjust.NewPlaylist(nil),
	})
	require.NoError(t, err)

	gw := NewServer(interceptor, &Config{
		Addr:           "127.0.0.1:0",
		RequestTimeout: 2 * time.Second,
	})
	srv := httptest.NewServer(gw.Handler())
	t.Cleanup(func() {
		srv.Close()
		interceptor.Close()
	})
	return srv, interceptor
}

func TestGatewayDeliversKey(t *testing.T) {
	keyID := keystore.DeriveKeyID("https://host/v/key.bin")
	srv, _ := newTestGateway(t, mapKeyReader{keyID: []byte("sixteen-byte-key")}, &stubFetcher{})

	resp, err := http.Get(srv.URL + "/load?u=" + url.QueryEscape(scheme.KeyURL(keyID).String()))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, common.KeyContentType, resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("sixteen-byte-key"), body)
}

func TestGatewayServesFetchedPlaylist(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string][]byte{
		"https://host/v/index.m3u8": []byte(testVariantPlaylist),
	}}
	srv, _ := newTestGateway(t, mapKeyReader{}, fetcher)

	resp, err := http.Get(srv.URL + "/load?u=" + url.QueryEscape("offline-https://host/v/index.m3u8"))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "offline-https://host/v/seg0.ts",
		"served playlist should have segment URIs rewritten to intercepted form")
}

func TestGatewayRejectsUntaggedURL(t *testing.T) {
	srv, _ := newTestGateway(t, mapKeyReader{}, &stubFetcher{})

	resp, err := http.Get(srv.URL + "/load?u=" + url.QueryEscape("https://host/v/index.m3u8"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGatewayMissingParameter(t *testing.T) {
	srv, _ := newTestGateway(t, mapKeyReader{}, &stubFetcher{})

	resp, err := http.Get(srv.URL + "/load")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGatewayDeclinedRequest(t *testing.T) {
	// A bare offline-key URL for an unknown key is declined by the
	// interceptor: key lookup misses and the URL has no network form.
	srv, _ := newTestGateway(t, mapKeyReader{}, &stubFetcher{})

	resp, err := http.Get(srv.URL + "/load?u=" + url.QueryEscape("offline-key://deadbeef"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

package fantia

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"fantiadl/pkg/config"
	"fantiadl/pkg/errors"
	"fantiadl/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.FantiaConfig{
		SessionID: "secret-session",
		UserAgent: "fantiadl-test",
		SiteURL:   server.URL,
		APIURL:    server.URL + "/api/v1",
	}
	return NewClient(cfg, 0, logger.NewTestLogger()), server
}

func TestClientSendsSessionCookie(t *testing.T) {
	var gotCookie, gotAgent string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(SessionCookieName); err == nil {
			gotCookie = c.Value
		}
		gotAgent = r.UserAgent()
		w.Write([]byte("ok"))
	}))

	_, err := client.DownloadAsset(context.Background(), client.siteURL+"/asset.png")
	require.NoError(t, err)

	assert.Equal(t, "secret-session", gotCookie)
	assert.Equal(t, "fantiadl-test", gotAgent)
}

func TestFetchListing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fanclubs/12345/posts", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(listingHTML))
	})
	client, _ := newTestClient(t, mux)

	page, err := client.FetchListing(context.Background(), "12345", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"/posts/300", "/posts/100", "/posts/100", "/posts/200"}, page.PostRefs)
	assert.Equal(t, 7, page.MaxPage)
}

func TestFetchPost(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/posts/42", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"post":{"id":42,"posted_at":"Fri, 3 Mar 2023 18:30:00 +0900","post_contents":[{"post_content_photos":[{"show_original_uri":"/posts/42/post_content_photo/9"}]}]}}`))
	})
	client, _ := newTestClient(t, mux)

	post, err := client.FetchPost(context.Background(), "/posts/42")
	require.NoError(t, err)

	assert.Equal(t, "42_20230303_183000", post.DirName())
	assert.Equal(t, []string{"/posts/42/post_content_photo/9"}, post.OriginalURIs)
}

func TestFetchPostMalformed(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"post":{"id":42}}`))
	}))

	_, err := client.FetchPost(context.Background(), "/posts/42")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMalformedPost))
	assert.Contains(t, err.Error(), "/posts/42")
}

func TestFetchOriginal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/posts/999/post_content_photo/555", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><img src="/uploads/abcde.png"></body></html>`))
	})
	client, server := newTestClient(t, mux)

	asset, err := client.FetchOriginal(context.Background(), "/posts/999/post_content_photo/555")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/uploads/abcde.png", asset.URL)
}

func TestClientStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   errors.ErrorType
	}{
		{http.StatusUnauthorized, errors.ErrorTypeAuth},
		{http.StatusForbidden, errors.ErrorTypeAuth},
		{http.StatusNotFound, errors.ErrorTypeNotFound},
		{http.StatusTooManyRequests, errors.ErrorTypeRateLimit},
		{http.StatusBadGateway, errors.ErrorTypeServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := client.FetchListing(context.Background(), "1", 1)
			require.Error(t, err)
			assert.Equal(t, tt.want, errors.TypeOf(err))
		})
	}
}

func TestClientNetworkError(t *testing.T) {
	client, server := newTestClient(t, http.NotFoundHandler())
	server.Close()

	_, err := client.FetchPost(context.Background(), "/posts/1")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
}

func TestClientCancelledContext(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("unreachable"))
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.DownloadAsset(ctx, client.siteURL+"/a.png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeHTMLShiftJIS(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().String("<p>画像一覧</p>")
	require.NoError(t, err)

	r, err := decodeHTML([]byte(encoded), "text/html; charset=Shift_JIS")
	require.NoError(t, err)

	decoded, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(decoded), "画像一覧"))
}

type countingTransport struct {
	calls int
	next  http.RoundTripper
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls++
	return c.next.RoundTrip(req)
}

func TestClientCustomHeaderAndTransport(t *testing.T) {
	var gotReferer, gotAccept string
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Referer()
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("ok"))
	}))

	transport := &countingTransport{next: http.DefaultTransport}
	client.SetHTTPClient(&http.Client{Transport: transport})
	client.SetHeader("Referer", server.URL+"/")

	body, err := client.DownloadAsset(context.Background(), server.URL+"/a.png")
	require.NoError(t, err)

	assert.Equal(t, "ok", string(body))
	assert.Equal(t, server.URL+"/", gotReferer)
	assert.Equal(t, "*/*", gotAccept)
	assert.Equal(t, 1, transport.calls)
}

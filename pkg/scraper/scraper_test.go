package scraper

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantiadl/pkg/config"
	"fantiadl/pkg/errors"
	"fantiadl/pkg/logger"
)

const testFanClub = "77"

// fakeSite serves a two page fan club:
//
//	page 1: /posts/1 (photos 11, 12), /posts/2 (no photos)
//	page 2: /posts/3 (photo 31)
type fakeSite struct {
	server *httptest.Server

	mu     sync.Mutex
	events []string

	noPagination bool
	failAsset    string
}

func newFakeSite(t *testing.T) *fakeSite {
	t.Helper()
	site := &fakeSite{}

	pages := map[string][]string{
		"1": {"/posts/1", "/posts/2"},
		"2": {"/posts/3"},
	}
	posts := map[string]string{
		"1": `{"post":{"id":1,"posted_at":"Mon, 2 Jan 2023 3:4:5 +0900","post_contents":[` +
			`{"post_content_photos":[{"show_original_uri":"/posts/1/post_content_photo/11"},{"show_original_uri":"/posts/1/post_content_photo/12"}]}]}}`,
		"2": `{"post":{"id":2,"posted_at":"Tue, 3 Jan 2023 10:00:00 +0900","post_contents":[{"comment":"text only"}]}}`,
		"3": `{"post":{"id":"3","posted_at":"Sun, 1 Jan 2023 23:59:59 +0900","post_contents":[` +
			`{"post_content_photos":[{"show_original_uri":"/posts/3/post_content_photo/31"}]}]}}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/fanclubs/"+testFanClub+"/posts", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		site.record("listing " + page)

		var b strings.Builder
		b.WriteString("<html><body>")
		for _, ref := range pages[page] {
			fmt.Fprintf(&b, `<a class="link-block" href="%s">post</a>`, ref)
		}
		if !site.noPagination {
			b.WriteString(`<a class="page-link" href="/fanclubs/77/posts?page=1">1</a>`)
			b.WriteString(`<a class="page-link" href="/fanclubs/77/posts?page=2">2</a>`)
		}
		b.WriteString("</body></html>")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(b.String()))
	})
	mux.HandleFunc("/api/v1/posts/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/v1/posts/")
		site.record("post " + id)

		body, ok := posts[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	})
	mux.HandleFunc("/posts/", func(w http.ResponseWriter, r *http.Request) {
		photo := filepath.Base(r.URL.Path)
		site.record("original " + photo)

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body><img src="/uploads/%s/image_%s.jpg"><img src="/thumb.png"></body></html>`, photo, photo)
	})
	mux.HandleFunc("/uploads/", func(w http.ResponseWriter, r *http.Request) {
		photo := strings.Split(strings.TrimPrefix(r.URL.Path, "/uploads/"), "/")[0]
		site.record("asset " + photo)

		if photo == site.failAsset {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes-" + photo))
	})

	site.server = httptest.NewServer(mux)
	t.Cleanup(site.server.Close)
	return site
}

func (f *fakeSite) record(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeSite) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

// recordingPacer writes its waits into the same event log as the site
type recordingPacer struct {
	site   *fakeSite
	cancel context.CancelFunc
}

func (p *recordingPacer) Wait(ctx context.Context) error {
	p.site.record("wait")
	if p.cancel != nil {
		p.cancel()
	}
	return ctx.Err()
}

func testConfig(site *fakeSite, root string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Fantia.SessionID = "session"
	cfg.Fantia.FanClubID = testFanClub
	cfg.Fantia.SiteURL = site.server.URL
	cfg.Fantia.APIURL = site.server.URL + "/api/v1"
	cfg.Download.IntervalSeconds = 0
	cfg.Download.RootDirectory = root
	return cfg
}

func newTestScraper(t *testing.T, site *fakeSite, root string) *Scraper {
	t.Helper()
	s, err := New(testConfig(site, root), logger.NewTestLogger())
	require.NoError(t, err)
	s.pacer = &recordingPacer{site: site}
	return s
}

func listFiles(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestRunDownloadsEveryImage(t *testing.T) {
	site := newFakeSite(t)
	root := t.TempDir()

	summary, err := newTestScraper(t, site, root).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"77/1_20230102_030405/11.jpg": "jpeg-bytes-11",
		"77/1_20230102_030405/12.jpg": "jpeg-bytes-12",
		"77/3_20230101_235959/31.jpg": "jpeg-bytes-31",
	}, listFiles(t, root))

	assert.Equal(t, 2, summary.Pages)
	assert.Equal(t, 3, summary.Posts)
	assert.Equal(t, 1, summary.EmptyPosts)
	assert.Equal(t, 3, summary.Images)
	assert.Equal(t, int64(len("jpeg-bytes-11")*3), summary.Bytes)
}

func TestRunRequestOrder(t *testing.T) {
	site := newFakeSite(t)

	_, err := newTestScraper(t, site, t.TempDir()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"listing 1",
		"listing 1",
		"post 1",
		"wait", "original 11", "asset 11",
		"wait", "original 12", "asset 12",
		"post 2",
		"listing 2",
		"post 3",
		"wait", "original 31", "asset 31",
	}, site.Events())
}

func TestRunIsRepeatable(t *testing.T) {
	site := newFakeSite(t)
	root := t.TempDir()

	_, err := newTestScraper(t, site, root).Run(context.Background())
	require.NoError(t, err)
	first := listFiles(t, root)

	_, err = newTestScraper(t, site, root).Run(context.Background())
	require.NoError(t, err)
	second := listFiles(t, root)

	assert.Equal(t, first, second)

	names := make([]string, 0, len(second))
	for name := range second {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		assert.NotContains(t, name, ".tmp", "temporary file left behind")
	}
}

func TestRunWithoutPagination(t *testing.T) {
	site := newFakeSite(t)
	site.noPagination = true

	summary, err := newTestScraper(t, site, t.TempDir()).Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, errors.ErrorTypePageStructure, errors.TypeOf(err))
	assert.Equal(t, []string{"listing 1"}, site.Events())
	assert.Zero(t, summary.Images)
}

func TestRunAbortsOnFirstError(t *testing.T) {
	site := newFakeSite(t)
	site.failAsset = "12"
	root := t.TempDir()

	summary, err := newTestScraper(t, site, root).Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, errors.ErrorTypeServerError, errors.TypeOf(err))
	assert.Equal(t, 1, summary.Images)
	assert.Equal(t, "asset 12", site.Events()[len(site.Events())-1])
	assert.NotContains(t, site.Events(), "post 2")
	assert.Len(t, listFiles(t, root), 1)
}

func TestRunCancelled(t *testing.T) {
	site := newFakeSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newTestScraper(t, site, t.TempDir())
	s.pacer = &recordingPacer{site: site, cancel: cancel}

	_, err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, site.Events(), "original 11")
}

func TestRunLogsProgress(t *testing.T) {
	site := newFakeSite(t)
	log := logger.NewTestLogger()

	s, err := New(testConfig(site, t.TempDir()), log)
	require.NoError(t, err)
	s.pacer = &recordingPacer{site: site}

	_, err = s.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, log.HasMessage("fan club has 2 pages."))
	assert.True(t, log.HasMessage("post [/posts/2] has no images."))
	assert.True(t, log.HasMessageContaining("image [/posts/1/post_content_photo/11] download to ["))
	assert.True(t, log.HasMessage("crawl finished"))
}

func TestNewRequiresSession(t *testing.T) {
	site := newFakeSite(t)
	cfg := testConfig(site, t.TempDir())
	cfg.Fantia.SessionID = ""

	_, err := New(cfg, logger.NewTestLogger())
	assert.Error(t, err)
}

package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meur/tiermaker/internal/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<!DOCTYPE html>
<html><head><title>Amazon.co.jp</title></head>
<body>
  <div id="imageBlock"><img id="imgBlkFront" src="/images/I/51WSIfaeliL.jpg" alt=""></div>
  <h1><span id="productTitle">
      ぼっち・ざ・ろっく！ 1 (まんがタイムKRコミックス)
  </span></h1>
</body></html>`

const ogPage = `<html><head>
  <meta property="og:image" content="https://cdn.example.com/cover.png">
  <meta property="og:title" content=" A Book ">
</head><body></body></html>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/dp/4832270729", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(productPage))
	})
	mux.HandleFunc("/og", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(ogPage))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>nothing here</p></body></html>`))
	})
	mux.HandleFunc("/images/I/51WSIfaeliL.jpg", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tiermaker-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte{0xff, 0xd8, 0xff})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAmazon_Scrape(t *testing.T) {
	srv := newServer(t)
	s := scraper.NewAmazon(srv.Client(), "tiermaker-test")

	res, err := s.Scrape(context.Background(), srv.URL+"/dp/4832270729")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/images/I/51WSIfaeliL.jpg", res.ImageURL)
	assert.True(t, strings.HasPrefix(res.Title, "ぼっち・ざ・ろっく！"))
	assert.Equal(t, strings.TrimSpace(res.Title), res.Title)
}

func TestAmazon_ScrapeOpenGraphFallback(t *testing.T) {
	srv := newServer(t)
	s := scraper.NewAmazon(srv.Client(), "")

	res, err := s.Scrape(context.Background(), srv.URL+"/og")
	require.NoError(t, err)
	assert.Equal(t, scraper.Result{ImageURL: "https://cdn.example.com/cover.png", Title: "A Book"}, res)
}

func TestAmazon_ScrapeNotFound(t *testing.T) {
	srv := newServer(t)
	s := scraper.NewAmazon(srv.Client(), "")

	_, err := s.Scrape(context.Background(), srv.URL+"/empty")
	require.ErrorIs(t, err, scraper.ErrNotFound)

	_, err = s.Scrape(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.NotErrorIs(t, err, scraper.ErrNotFound)
}

func TestAmazon_Download(t *testing.T) {
	srv := newServer(t)
	s := scraper.NewAmazon(srv.Client(), "tiermaker-test")
	dir := t.TempDir()

	p1, err := s.Download(context.Background(), dir, srv.URL+"/images/I/51WSIfaeliL.jpg")
	require.NoError(t, err)
	p2, err := s.Download(context.Background(), dir, srv.URL+"/images/I/51WSIfaeliL.jpg")
	require.NoError(t, err)

	assert.NotEqual(t, p1, p2)
	assert.Equal(t, dir, filepath.Dir(p1))
	assert.True(t, strings.HasSuffix(p1, "-51WSIfaeliL.jpg"))
	data, err := os.ReadFile(p1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)
}

package jrchord

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const urlset = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:image="http://www.google.com/schemas/sitemap-image/1.1">
	<url>
		<loc>%[1]s/amazing-grace/</loc>
		<image:image><image:loc>%[1]s/wp-content/cover.jpg</image:loc></image:image>
	</url>
	<url><loc> %[1]s/bapa-yang-kekal/ </loc></url>
	<url><loc>%[1]s/%[2]s/</loc></url>
</urlset>`

func TestParseSitemap(t *testing.T) {
	sitemap, err := ParseSitemap(strings.NewReader(fmt.Sprintf(urlset, "https://x.test", "kasih")))
	require.NoError(t, err)
	assert.False(t, sitemap.Index)
	assert.Equal(t, []string{
		"https://x.test/amazing-grace/",
		"https://x.test/bapa-yang-kekal/",
		"https://x.test/kasih/",
	}, sitemap.Locations)
}

func TestParseSitemap_Index(t *testing.T) {
	index := `<?xml version="1.0"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<sitemap><loc>https://x.test/post-sitemap.xml</loc></sitemap>
	<sitemap><loc>https://x.test/post-sitemap2.xml</loc></sitemap>
</sitemapindex>`

	sitemap, err := ParseSitemap(strings.NewReader(index))
	require.NoError(t, err)
	assert.True(t, sitemap.Index)
	assert.Len(t, sitemap.Locations, 2)
}

func newSitemapServer(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap_index.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<sitemapindex><sitemap><loc>%[1]s/post-sitemap.xml</loc></sitemap><sitemap><loc>%[1]s/post-sitemap2.xml</loc></sitemap></sitemapindex>`, srv.URL)
	})
	mux.HandleFunc("/post-sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, urlset, srv.URL, "kasih")
	})
	mux.HandleFunc("/post-sitemap2.xml", func(w http.ResponseWriter, r *http.Request) {
		// gzip encoded, overlapping with the first sitemap
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		fmt.Fprintf(gz, urlset, srv.URL, "yesus")
		gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	})
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCollectLinks(t *testing.T) {
	srv := newSitemapServer(t)
	p := NewParser(NewClient(5*time.Second), nil)

	links, err := p.CollectLinks(context.Background(), []string{
		srv.URL + "/post-sitemap.xml",
		srv.URL + "/post-sitemap2.xml",
		srv.URL + "/broken.xml",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/amazing-grace/",
		srv.URL + "/bapa-yang-kekal/",
		srv.URL + "/kasih/",
		srv.URL + "/yesus/",
	}, links)
}

func TestCollectLinks_FollowsIndex(t *testing.T) {
	srv := newSitemapServer(t)
	p := NewParser(NewClient(5*time.Second), nil)

	links, err := p.CollectLinks(context.Background(), []string{srv.URL + "/sitemap_index.xml"})
	require.NoError(t, err)
	assert.Len(t, links, 4)
}

func TestCollectLinks_Cancelled(t *testing.T) {
	srv := newSitemapServer(t)
	p := NewParser(NewClient(5*time.Second), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.CollectLinks(ctx, []string{srv.URL + "/post-sitemap.xml"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchPage_StatusError(t *testing.T) {
	srv := newSitemapServer(t)
	c := NewClient(5 * time.Second)

	_, err := c.FetchPage(context.Background(), srv.URL+"/broken.xml")
	assert.Error(t, err)
}

func TestExtractPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, songPage)
	}))
	defer srv.Close()

	p := NewParser(NewClient(5*time.Second), nil)
	page, err := p.ExtractPage(context.Background(), srv.URL+"/amazing-grace/")
	require.NoError(t, err)
	assert.Equal(t, "Amazing Grace", page.Title)
	assert.False(t, page.FetchedAt.IsZero())
}

func TestFetchPage_RateLimited(t *testing.T) {
	srv := newSitemapServer(t)
	c := NewClient(5 * time.Second).WithRateLimit(0.001, 1)

	_, err := c.FetchPage(context.Background(), srv.URL+"/post-sitemap.xml")
	require.NoError(t, err)

	// the next token is far away, so a short deadline fails fast
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.FetchPage(ctx, srv.URL+"/post-sitemap.xml")
	assert.Error(t, err)

	_, err = c.WithRateLimit(0, 0).FetchPage(ctx, srv.URL+"/post-sitemap.xml")
	assert.NoError(t, err)
}

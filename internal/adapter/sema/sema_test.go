package sema

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserAgent = "balneabilidade-test/0.1"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(indexURL string) *Client {
	return NewClient(http.DefaultClient, indexURL, testUserAgent, testLogger())
}

const indexHTML = `<html><body>
<nav><a href="/">Início</a><a href="/contato">Contato</a></nav>
<ul>
  <li><a href="/uploads/laudo_21_08_2025.pdf">Laudo de Balneabilidade 21_08_2025</a></li>
  <li><a href="/uploads/laudo_07_08_2025.pdf">Laudo de Balneabilidade 07_08_2025</a></li>
  <li><a href="/noticias/laudo-mais-recente">Último laudo publicado</a></li>
  <li><a href="/uploads/laudo_21_08_2025.pdf">Laudo de Balneabilidade 21_08_2025</a></li>
</ul>
</body></html>`

func TestFetchIndex(t *testing.T) {
	var gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(indexHTML))
	}))
	defer srv.Close()

	bulletins, err := newTestClient(srv.URL).FetchIndex(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, testUserAgent, gotUserAgent)

	// Nav links are skipped, the duplicate href collapses, PDFs rank before
	// the page link, newest title date first.
	require.Len(t, bulletins, 3)
	assert.Equal(t, srv.URL+"/uploads/laudo_21_08_2025.pdf", bulletins[0].URL)
	assert.Equal(t, srv.URL+"/uploads/laudo_07_08_2025.pdf", bulletins[1].URL)
	assert.Equal(t, srv.URL+"/noticias/laudo-mais-recente", bulletins[2].URL)
	assert.Equal(t, "Laudo de Balneabilidade 21_08_2025", bulletins[0].Title)
}

func TestFetchIndex_Limit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(indexHTML))
	}))
	defer srv.Close()

	bulletins, err := newTestClient(srv.URL).FetchIndex(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, bulletins, 1)
	assert.Equal(t, srv.URL+"/uploads/laudo_21_08_2025.pdf", bulletins[0].URL)
}

func TestFetchIndex_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchIndex(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestFetchIndex_NoBulletins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><a href="/sobre">Sobre</a></body></html>`))
	}))
	defer srv.Close()

	bulletins, err := newTestClient(srv.URL).FetchIndex(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, bulletins)
}

func TestDownload(t *testing.T) {
	const body = "%PDF-1.4 fake"
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := newTestClient(srv.URL)

	path, err := c.Download(context.Background(), srv.URL+"/uploads/laudo_21_08_2025.pdf", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "laudo_21_08_2025.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	// Second call reuses the file on disk.
	_, err = c.Download(context.Background(), srv.URL+"/uploads/laudo_21_08_2025.pdf", dir)
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
}

func TestDownload_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Download(context.Background(), srv.URL+"/missing.pdf", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLocalName(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"https://sema.example/uploads/laudo_21_08_2025.pdf", "laudo_21_08_2025.pdf"},
		{"https://sema.example/uploads/laudo%2021.pdf?x=1", "laudo_2021.pdf"},
		{"https://sema.example/laudos/balneabilidade", "balneabilidade.pdf"},
		{"https://sema.example/", "laudo.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, localName(tt.in), "url %q", tt.in)
	}
}

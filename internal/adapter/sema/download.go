package sema

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// unsafeNameRe matches runs of characters that are not safe in a local
// filename derived from a URL.
var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Download fetches a bulletin PDF into dir and returns the local path. An
// already-downloaded non-empty file is reused, so re-running a refresh does
// not re-fetch unchanged bulletins.
func (c *Client) Download(ctx context.Context, bulletinURL, dir string) (string, error) {
	path := filepath.Join(dir, localName(bulletinURL))
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		c.logger.Debug("bulletin already downloaded", "path", path)
		return path, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, bulletinURL, nil)
	if err != nil {
		return "", fmt.Errorf("create download request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download bulletin: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download bulletin %s: status %d", bulletinURL, resp.StatusCode)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create bulletin file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write bulletin file: %w", err)
	}

	c.logger.Info("downloaded bulletin", "url", bulletinURL, "path", path, "bytes", n)
	return path, nil
}

// localName derives a filesystem-safe name from the bulletin URL's last path
// segment, always suffixed ".pdf".
func localName(bulletinURL string) string {
	segment := bulletinURL
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	if i := strings.IndexAny(segment, "?#"); i >= 0 {
		segment = segment[:i]
	}
	name := unsafeNameRe.ReplaceAllString(segment, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "laudo"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

// Package fetcher opens dataset documents from HTTP, FTP and local sources
// and reads the CSV, XLSX and ZIP payloads they may carry.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for retrieving a document by locator.
type Fetcher interface {
	// Download fetches the locator and returns the document body.
	Download(ctx context.Context, locator string) (io.ReadCloser, error)
}

// Router dispatches locators to a Fetcher by URL scheme. Locators without a
// scheme are treated as local file paths.
type Router struct {
	HTTP Fetcher
	FTP  Fetcher
	File Fetcher
}

// NewRouter creates a Router with the given HTTP options and default FTP and
// file fetchers.
func NewRouter(httpOpts HTTPOptions, ftpOpts FTPOptions) *Router {
	return &Router{
		HTTP: NewHTTPFetcher(httpOpts),
		FTP:  NewFTPFetcher(ftpOpts),
		File: FileFetcher{},
	}
}

// Download routes the locator to the fetcher for its scheme.
func (r *Router) Download(ctx context.Context, locator string) (io.ReadCloser, error) {
	f, err := r.route(locator)
	if err != nil {
		return nil, err
	}
	return f.Download(ctx, locator)
}

func (r *Router) route(locator string) (Fetcher, error) {
	switch Scheme(locator) {
	case "http", "https":
		if r.HTTP == nil {
			return nil, eris.Errorf("fetcher: no http fetcher for %s", locator)
		}
		return r.HTTP, nil
	case "ftp":
		if r.FTP == nil {
			return nil, eris.Errorf("fetcher: no ftp fetcher for %s", locator)
		}
		return r.FTP, nil
	case "", "file":
		if r.File == nil {
			return nil, eris.Errorf("fetcher: no file fetcher for %s", locator)
		}
		return r.File, nil
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme in %q", locator)
	}
}

// Scheme returns the lower-cased URL scheme of a locator, or "" for plain
// file paths (including Windows drive paths such as C:\data.json).
func Scheme(locator string) string {
	if !strings.Contains(locator, "://") {
		return ""
	}
	u, err := url.Parse(locator)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}

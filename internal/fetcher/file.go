package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"

	"github.com/rotisserie/eris"
)

// FileFetcher opens documents from the local filesystem.
type FileFetcher struct{}

// Download opens a bare path or a file:// URL.
func (FileFetcher) Download(ctx context.Context, locator string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "file: context cancelled")
	}
	path, err := LocalPath(locator)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "file: open %s", path)
	}
	return f, nil
}

// LocalPath converts a bare path or file:// URL into a filesystem path.
func LocalPath(locator string) (string, error) {
	switch Scheme(locator) {
	case "":
		return locator, nil
	case "file":
		u, err := url.Parse(locator)
		if err != nil {
			return "", eris.Wrap(err, "file: parse url")
		}
		if u.Path == "" {
			return "", eris.Errorf("file: empty path in %q", locator)
		}
		return u.Path, nil
	default:
		return "", eris.Errorf("file: %q is not a local path", locator)
	}
}

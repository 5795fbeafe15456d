package storage

import (
	"net/url"
	"strings"
)

// KeyFromURL extracts the object key from an asset URL of the form
// http(s)://<host>/<bucket>/<key>. ok is false when the URL does not match
// the expected host/bucket shape, which means the URL was never issued by
// this store.
func KeyFromURL(rawURL, host, bucket string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	if u.Host != host {
		return "", false
	}

	// Path: /portfolio/projects/<id>/<uuid>.jpg
	path := strings.TrimPrefix(u.Path, "/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) < 2 || parts[0] != bucket || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

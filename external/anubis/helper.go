package anubis

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errAnubisTransient)
}

// principalCacheKey keeps raw bearer tokens out of the in-process cache.
func principalCacheKey(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return "principal:" + hex.EncodeToString(sum[:])
}

// introspectEndpoint joins the introspect path onto the base URL. An absolute
// path wins over the base.
func introspectEndpoint(baseURL, path string) string {
	path = strings.TrimSpace(path)
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if path == "" {
		return base
	}
	return base + "/" + strings.TrimLeft(path, "/")
}

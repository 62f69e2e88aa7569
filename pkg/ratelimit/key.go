package ratelimit

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
)

// Backend key length is capped so composite keys stay reasonable in Redis.
const maxKeyLength = 64

// KeyFunc derives a rate limit key from an HTTP request. An empty key skips
// limiting for that request.
type KeyFunc func(*http.Request) string

// ByIP keys requests on the client IP, honoring the first X-Forwarded-For
// entry when present.
func ByIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ByPath keys requests on the request path.
func ByPath(r *http.Request) string {
	return r.URL.Path
}

// Composite joins several key functions into one key. Keys longer than 64
// chars are reduced to a 128-bit SHA256 prefix.
func Composite(keyFuncs ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(keyFuncs))
		for _, fn := range keyFuncs {
			if key := fn(r); key != "" {
				parts = append(parts, key)
			}
		}

		if len(parts) == 0 {
			return ""
		}

		combined := strings.Join(parts, ":")
		if len(combined) > maxKeyLength {
			hash := sha256.Sum256([]byte(combined))
			return hex.EncodeToString(hash[:16])
		}

		return combined
	}
}

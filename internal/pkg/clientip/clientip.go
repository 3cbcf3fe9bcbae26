// Package clientip derives a best-effort client identifier from proxy headers.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Unknown is returned when no address can be determined.
const Unknown = "unknown"

// FromRequest prefers the first X-Forwarded-For entry, then X-Real-IP, then
// the connection's remote address.
func FromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return Unknown
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

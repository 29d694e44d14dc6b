package pkg

import (
	"errors"
	"net"
	"net/http"
	"strings"
)

var ErrNoClientAddr = errors.New("client address not found")

// ClientAddr returns the caller's IP, preferring the proxy headers set by nginx.
func ClientAddr(r *http.Request) (string, error) {
	addr := r.Header.Get("X-Real-Ip")
	if addr == "" {
		// first hop is the original client
		addr, _, _ = strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
		addr = strings.TrimSpace(addr)
	}
	if addr == "" {
		addr = r.RemoteAddr
	}
	if addr == "" {
		return "", ErrNoClientAddr
	}

	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if net.ParseIP(addr) == nil {
		return "", errors.New("ip addr " + addr + " is invalid")
	}
	return addr, nil
}

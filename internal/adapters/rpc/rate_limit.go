package rpc

import (
	"net"
	"net/http"
	"strings"
)

// rateLimitKey buckets callers by remote host; ports are ignored so one
// client reusing several connections shares a bucket.
func rateLimitKey(r *http.Request) string {
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return "ip:unknown"
	}
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return "ip:" + remote
	}
	if strings.TrimSpace(host) == "" {
		return "ip:unknown"
	}
	return "ip:" + host
}

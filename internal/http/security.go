package http

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
)

// securityMetrics counts rejected and suspicious requests.
type securityMetrics struct {
	rateLimitHits      int64
	suspiciousRequests int64
}

// SecuritySnapshot is a point-in-time copy of the security counters.
type SecuritySnapshot struct {
	RateLimitHits      int64 `json:"rateLimitHits"`
	SuspiciousRequests int64 `json:"suspiciousRequests"`
}

func (m *securityMetrics) snapshot() SecuritySnapshot {
	return SecuritySnapshot{
		RateLimitHits:      atomic.LoadInt64(&m.rateLimitHits),
		SuspiciousRequests: atomic.LoadInt64(&m.suspiciousRequests),
	}
}

// trustedProxies are the networks allowed to set forwarding headers.
var trustedProxies = []*net.IPNet{
	parseCIDR("127.0.0.0/8"),
	parseCIDR("::1/128"),
	parseCIDR("10.0.0.0/8"),
	parseCIDR("172.16.0.0/12"),
	parseCIDR("192.168.0.0/16"),
}

func parseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

func isTrustedProxy(ip net.IP) bool {
	for _, network := range trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// extractClientIP returns the peer address, or the first forwarded address
// when the peer is a trusted proxy.
func extractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil || !isTrustedProxy(parsed) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

var (
	suspiciousPatterns = []string{
		"../", "..\\", ".env", "wp-admin", "phpmyadmin",
		".php", ".git", ".ssh", "etc/passwd", "cmd.exe",
		"<script", "javascript:", "union select", "eval(",
	}
	suspiciousAgents = []string{
		"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan",
	}
	unusualMethods = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}
)

// detectSuspiciousRequest reports requests that look like probes. They are
// still served; the caller only logs them.
func detectSuspiciousRequest(r *http.Request, metrics *securityMetrics) bool {
	query, err := url.QueryUnescape(r.URL.RawQuery)
	if err != nil {
		query = r.URL.RawQuery
	}
	suspicious := containsAny(strings.ToLower(r.URL.Path), suspiciousPatterns) ||
		containsAny(strings.ToLower(query), suspiciousPatterns) ||
		containsAny(strings.ToLower(r.Header.Get("User-Agent")), suspiciousAgents) ||
		len(r.URL.String()) > 2048 ||
		strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5

	for _, m := range unusualMethods {
		if r.Method == m {
			suspicious = true
		}
	}

	if suspicious && metrics != nil {
		atomic.AddInt64(&metrics.suspiciousRequests, 1)
	}
	return suspicious
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

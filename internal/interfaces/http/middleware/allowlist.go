package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/homechef/backend/internal/interfaces/http/dto"
)

// IPAllowlist restricts a route to the given IPs and CIDR ranges. Entries
// that do not parse are ignored; an empty list lets every request through.
func IPAllowlist(entries []string) gin.HandlerFunc {
	var (
		ips  []net.IP
		nets []*net.IPNet
	)
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				nets = append(nets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			ips = append(ips, ip)
		}
	}
	open := len(entries) == 0

	return func(c *gin.Context) {
		if open || isIPAllowed(clientIP(c), ips, nets) {
			c.Next()
			return
		}
		abort(c, dto.ErrCodeForbidden, "Access to this endpoint is restricted")
	}
}

// clientIP prefers gin's proxy-aware ClientIP and falls back to RemoteAddr
func clientIP(c *gin.Context) net.IP {
	if ip := net.ParseIP(c.ClientIP()); ip != nil {
		return ip
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	return net.ParseIP(host)
}

func isIPAllowed(ip net.IP, ips []net.IP, nets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range ips {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

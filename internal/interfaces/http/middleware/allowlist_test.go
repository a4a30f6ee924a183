package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func allowlistRouter(entries []string) *gin.Engine {
	r := gin.New()
	r.GET("/metrics", IPAllowlist(entries), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func requestFrom(r *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = remoteAddr
	r.ServeHTTP(w, req)
	return w
}

func TestIPAllowlist(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		remote  string
		status  int
	}{
		{"empty list allows all", nil, "203.0.113.9:5000", http.StatusOK},
		{"exact ip", []string{"10.0.0.5"}, "10.0.0.5:5000", http.StatusOK},
		{"cidr range", []string{"10.0.0.0/8"}, "10.20.30.40:5000", http.StatusOK},
		{"outside range", []string{"10.0.0.0/8"}, "192.168.1.1:5000", http.StatusForbidden},
		{"ipv6 loopback", []string{"::1"}, "[::1]:5000", http.StatusOK},
		{"garbage entries ignored", []string{"not-an-ip", "10.0.0.0/99"}, "10.0.0.1:5000", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := requestFrom(allowlistRouter(tt.entries), tt.remote)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusForbidden {
				assert.Contains(t, w.Body.String(), "FORBIDDEN")
			}
		})
	}
}

func TestIsIPAllowed(t *testing.T) {
	_, network, _ := net.ParseCIDR("172.16.0.0/12")
	assert.False(t, isIPAllowed(nil, nil, nil))
	assert.True(t, isIPAllowed(net.ParseIP("172.20.1.1"), nil, []*net.IPNet{network}))
	assert.False(t, isIPAllowed(net.ParseIP("172.32.0.1"), nil, []*net.IPNet{network}))
}

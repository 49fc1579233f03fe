package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// IPResolver finds the originating client address of a request. Forwarding
// headers are honoured only when the direct peer is a trusted proxy.
type IPResolver struct {
	trustedProxies []*net.IPNet
}

// NewIPResolver trusts loopback and private networks.
func NewIPResolver() *IPResolver {
	r := &IPResolver{}
	for _, cidr := range []string{"127.0.0.0/8", "::1/128", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"} {
		if err := r.AddTrustedProxy(cidr); err != nil {
			panic(err)
		}
	}
	return r
}

// AddTrustedProxy adds a trusted proxy network
func (d *IPResolver) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}

// ClientIP returns the client address for r.
func (d *IPResolver) ClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil || !d.isTrustedProxy(parsed) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

func (d *IPResolver) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

package pkg

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIPResolver finds the client address of a request. The X-Real-Ip and
// X-Forwarded-For headers are only read when the direct peer is a trusted proxy,
// anyone else could set them to dodge per-IP limits.
type ClientIPResolver struct {
	trustedProxies []netip.Prefix
}

// NewClientIPResolver takes the CIDRs (or bare addresses) of the reverse proxies in
// front of the service. With none, the peer address is always used.
func NewClientIPResolver(trustedProxies []string) (*ClientIPResolver, error) {
	resolver := &ClientIPResolver{}
	for _, raw := range trustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			addr, addrErr := netip.ParseAddr(raw)
			if addrErr != nil {
				return nil, fmt.Errorf("trusted proxy %q is not an ip or cidr", raw)
			}
			prefix = netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen())
		}
		resolver.trustedProxies = append(resolver.trustedProxies, prefix.Masked())
	}
	return resolver, nil
}

func (c *ClientIPResolver) ClientIP(r *http.Request) (string, error) {
	peer, err := parseIP(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	if !c.trusted(peer) {
		return peer.String(), nil
	}

	if realIP := r.Header.Get("X-Real-Ip"); realIP != "" {
		addr, err := parseIP(realIP)
		if err != nil {
			return "", err
		}
		return addr.String(), nil
	}

	// X-Forwarded-For: client, proxy1, proxy2
	// walked from the right, the first hop that is not one of ours is the client
	var hops []string
	for _, value := range r.Header.Values("X-Forwarded-For") {
		hops = append(hops, strings.Split(value, ",")...)
	}
	for i := len(hops) - 1; i >= 0; i-- {
		addr, err := parseIP(strings.TrimSpace(hops[i]))
		if err != nil {
			return "", err
		}
		if !c.trusted(addr) || i == 0 {
			return addr.String(), nil
		}
	}

	return peer.String(), nil
}

func (c *ClientIPResolver) trusted(addr netip.Addr) bool {
	for _, prefix := range c.trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func parseIP(raw string) (netip.Addr, error) {
	host := raw
	if h, _, err := net.SplitHostPort(raw); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("ip addr %s is invalid", raw)
	}
	return addr.Unmap(), nil
}

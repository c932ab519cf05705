package util

import (
	"net"
	"strings"
)

// RPContext is the relying-party identity a ceremony is verified against.
type RPContext struct {
	Origin string
	RpID   string
}

// ResolveRPContext derives the relying-party context from the request scheme
// and Host header. It is a pure function and must produce the same result at
// begin and complete, otherwise the ceremony fails closed.
//
// The rp_id is the hostname with the port stripped. A raw loopback IP is not a
// valid rp_id for many authenticators, so 127.0.0.1 normalizes to localhost.
func ResolveRPContext(scheme, host string) RPContext {
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}
	hostname = strings.ToLower(hostname)
	if hostname == "127.0.0.1" {
		hostname = "localhost"
	}
	return RPContext{
		Origin: scheme + "://" + host,
		RpID:   hostname,
	}
}

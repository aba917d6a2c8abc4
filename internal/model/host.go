package model

import "net"

// Protocol is the transport protocol that succeeded for a host.
type Protocol int

const (
	// ProtocolSecure is HTTP over TLS.
	ProtocolSecure Protocol = iota

	// ProtocolPlain is plaintext HTTP.
	ProtocolPlain
)

// String returns the URL scheme of the protocol.
func (p Protocol) String() string {
	switch p {
	case ProtocolSecure:
		return "https"
	case ProtocolPlain:
		return "http"
	default:
		return "unknown"
	}
}

// ResolvedHost is produced once per crawl attempt by the resolver.
// It is not cached across tasks: every task re-resolves its host.
type ResolvedHost struct {
	// IPAddress is the first address the lookup returned, preferring IPv4.
	IPAddress string

	// Hostname is the host part of the task URL without any port.
	Hostname string

	// Port is the explicit port from the task URL, empty for the scheme default.
	Port string

	// Protocol is the transport that answered the connection test.
	Protocol Protocol
}

// Origin returns "scheme://host[:port]", the target the fetcher requests.
func (h ResolvedHost) Origin() string {
	host := h.Hostname
	if h.Port != "" {
		host = net.JoinHostPort(h.Hostname, h.Port)
	}
	return h.Protocol.String() + "://" + host
}

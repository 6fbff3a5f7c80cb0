package session

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// DefaultHostPort is assumed when a bare IPv4 address omits the port.
const DefaultHostPort = 3030

// ErrInvalidAddress indicates an address that is neither a ws(s) URL nor a
// bare IPv4 literal.
var ErrInvalidAddress = errors.New("session: address must be ws:// or wss://")

// NormalizeAddress validates a user-entered host address.
//
// ws:// and wss:// URLs are accepted as given. A bare IPv4 literal with an
// optional port expands to ws://<ip>:<port>/ws with DefaultHostPort assumed.
// Anything else is a local validation error; no channel is opened for it.
func NormalizeAddress(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidAddress
	}

	if strings.HasPrefix(trimmed, "ws://") || strings.HasPrefix(trimmed, "wss://") {
		u, err := url.Parse(trimmed)
		if err != nil || u.Host == "" {
			return "", ErrInvalidAddress
		}
		return trimmed, nil
	}

	host := trimmed
	port := DefaultHostPort
	if h, p, err := net.SplitHostPort(trimmed); err == nil {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed <= 0 || parsed > 65535 {
			return "", ErrInvalidAddress
		}
		host = h
		port = parsed
	}

	ip := net.ParseIP(host)
	if ip == nil || ip.To4() == nil {
		return "", ErrInvalidAddress
	}

	return fmt.Sprintf("ws://%s:%d/ws", host, port), nil
}

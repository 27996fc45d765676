package client

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const addrScheme = "beanstalk"

var (
	ErrInvalidAddr   = errors.New("invalid address")
	ErrInvalidScheme = errors.New("address scheme is not beanstalk")
)

// ParseAddr accepts host:port, a bare host, or a beanstalk://host[:port]
// uri and returns host:port. The port defaults to DefaultPort.
func ParseAddr(addr string) (string, error) {
	if addr == "" {
		return "", ErrInvalidAddr
	}

	if strings.Contains(addr, "://") {
		u, err := url.Parse(addr)
		if err != nil {
			return "", ErrInvalidAddr
		}
		if strings.ToLower(u.Scheme) != addrScheme {
			return "", ErrInvalidScheme
		}
		if u.Host == "" || (u.Path != "" && u.Path != "/") {
			return "", ErrInvalidAddr
		}
		addr = u.Host
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		// no port
		if strings.Count(addr, ":") > 1 && !strings.HasPrefix(addr, "[") {
			// unbracketed ipv6 literal
			return net.JoinHostPort(addr, strconv.Itoa(DefaultPort)), nil
		}
		host, port = strings.Trim(addr, "[]"), strconv.Itoa(DefaultPort)
	}

	if port == "" {
		port = strconv.Itoa(DefaultPort)
	}
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return "", ErrInvalidAddr
	}

	return net.JoinHostPort(host, port), nil
}

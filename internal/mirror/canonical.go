package mirror

import (
	"net"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/idna"
)

// normalizeHost lower-cases host and converts IDN labels to punycode.
// A port, if any, is kept unless it is the default for scheme.
func normalizeHost(scheme, hostport string) (string, error) {
	u, err := url.Parse(scheme + "://" + hostport + "/")
	if err != nil {
		return "", err
	}

	host := strings.ToLower(u.Hostname())
	if net.ParseIP(host) == nil {
		puny, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return "", err
		}
		host = puny
	}

	port := u.Port()
	switch {
	case port == "", (scheme == "http" && port == "80"), (scheme == "https" && port == "443"):
		return host, nil
	default:
		return net.JoinHostPort(host, port), nil
	}
}

// canonicalLink returns the key used to detect duplicate download links:
// lower-case scheme and host, no default port, no credentials, no fragment,
// cleaned path. The query is kept as is because it can select a file.
func canonicalLink(u *url.URL) string {
	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	if host, err := normalizeHost(c.Scheme, c.Host); err == nil {
		c.Host = host
	} else {
		c.Host = strings.ToLower(c.Host)
	}
	c.User = nil
	c.Fragment = ""
	c.RawFragment = ""
	if c.Path != "" {
		c.Path = path.Clean(c.Path)
		c.RawPath = ""
	}
	return c.String()
}

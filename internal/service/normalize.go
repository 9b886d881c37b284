package service

import (
	"net/url"
	"strings"
)

// NormalizeURL produces the canonical form used for duplicate detection:
// lowercased scheme and host, default port stripped, trailing slash on the
// path ignored, query preserved, fragment dropped. Two submissions that
// normalize equal reuse one short code.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if (u.Scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(u.Scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Hostname()
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	u.Fragment = ""

	return u.String()
}

package links

import (
	"net/url"
	"strings"
)

// trackingParams are dropped from every URL. Keys are compared lowercased.
var trackingParams = map[string]struct{}{
	// Meta
	"fbclid": {},
	"igsh":   {},
	"igshid": {},
	// Google
	"gclid":  {},
	"gclsrc": {},
	// generic
	"ref":    {},
	"rcm":    {},
	"source": {},
	"mc_cid": {},
	"mc_eid": {},
	// LinkedIn
	"trk":  {},
	"lipi": {},
	"licu": {},
	// Amazon
	"tag":      {},
	"linkcode": {},
	"linkid":   {},
	// Spotify and share sheets
	"share": {},
	"si":    {},
}

// essentialParams survive even when they collide with the deny-list.
var essentialParams = map[string]map[string]struct{}{
	"youtube.com": {"v": {}, "t": {}, "list": {}, "index": {}},
	"youtu.be":    {"t": {}},
	"twitter.com": {"s": {}},
	"x.com":       {"s": {}},
}

func isTracking(key, domain string) bool {
	k := strings.ToLower(key)
	if _, keep := essentialParams[domain][k]; keep {
		return false
	}
	if strings.HasPrefix(k, "utm_") {
		return true
	}
	_, drop := trackingParams[k]
	return drop
}

// Normalize strips tracking query parameters and cosmetic noise from raw.
// Remaining parameters keep their order and encoding; path and fragment are
// preserved apart from a trailing slash and text-fragment directives.
// Normalize is idempotent. Unparseable input is returned unchanged.
func Normalize(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return raw
	}
	u.Host = strings.ToLower(u.Host)
	u.Scheme = strings.ToLower(u.Scheme)
	domain := Domain(u.Host)

	if u.RawQuery != "" {
		var kept []string
		for _, pair := range strings.Split(u.RawQuery, "&") {
			if pair == "" {
				continue
			}
			key, _, _ := strings.Cut(pair, "=")
			if k, err := url.QueryUnescape(key); err == nil {
				key = k
			}
			if isTracking(key, domain) {
				continue
			}
			kept = append(kept, pair)
		}
		u.RawQuery = strings.Join(kept, "&")
	}
	u.ForceQuery = false

	// Only a literal slash is trimmed; an escaped %2F is part of the name.
	if ep := u.EscapedPath(); ep != "/" && strings.HasSuffix(ep, "/") {
		trimmed := strings.TrimRight(ep, "/")
		if p, err := url.PathUnescape(trimmed); err == nil {
			u.Path, u.RawPath = p, trimmed
		}
	}

	if i := strings.Index(u.Fragment, ":~:"); i >= 0 {
		u.Fragment = u.Fragment[:i]
		u.RawFragment = ""
	}

	return u.String()
}

// Domain is the host without "www." and port, lowercased.
func Domain(host string) string {
	host = strings.ToLower(host)
	if h, _, ok := strings.Cut(host, ":"); ok && !strings.Contains(host, "]") {
		host = h
	}
	return strings.TrimPrefix(host, "www.")
}

// DomainOf parses raw and returns its Domain, or "unknown".
func DomainOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return Domain(u.Host)
}

// Package scope decides which URLs belong to a crawl and reduces them to a
// canonical form used for deduplication and output naming.
package scope

import (
	"net"
	"net/url"
	"path"
	"strings"
)

// Kind is the outcome of classifying one URL.
type Kind int

const (
	// InScope means the URL belongs to the crawl; Classification.Canonical is set.
	InScope Kind = iota
	// OutOfScope means the URL parsed fine but points outside the root domain
	// or at a non-page asset. Dropped silently.
	OutOfScope
	// Malformed means the URL could not be parsed or uses a non-http(s)
	// scheme (mailto:, javascript:, ...). Dropped silently, counted nowhere.
	Malformed
)

// Classification is the result of Classify: a kind plus, for in-scope URLs,
// the canonical string form.
type Classification struct {
	Kind      Kind
	Canonical string
}

// Asset extensions that are never crawled as pages. Matches the filter the
// crawler has always applied to discovered links.
var skippedExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".svg": true, ".webp": true,
	".css": true, ".js": true, ".json": true, ".xml": true,
	".zip": true, ".rar": true, ".tar": true, ".gz": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".wmv": true, ".flv": true,
}

// Classify resolves href against base (nil base means href must already be
// absolute) and decides whether the result belongs to a crawl rooted at
// rootDomain.
//
// Scope policy: a URL is in scope when its normalized host equals rootDomain
// or is a subdomain of it ("docs.example.com" is in scope for "example.com").
// The policy is fixed; there is no per-site override.
func Classify(href string, base *url.URL, rootDomain string) Classification {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return Classification{Kind: Malformed}
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return Classification{Kind: Malformed}
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return Classification{Kind: Malformed}
	}
	if !hostInScope(host, rootDomain) {
		return Classification{Kind: OutOfScope}
	}

	if skippedExtensions[strings.ToLower(path.Ext(parsed.Path))] {
		return Classification{Kind: OutOfScope}
	}

	return Classification{Kind: InScope, Canonical: Canonicalize(parsed)}
}

// hostInScope implements the subdomain-inclusive scope policy.
func hostInScope(host, rootDomain string) bool {
	root := strings.ToLower(rootDomain)
	return host == root || strings.HasSuffix(host, "."+root)
}

// Canonicalize standardizes a URL for comparison, storage, and output naming.
// It lowercases the scheme and host (path case is preserved), removes default
// ports (80 for http, 443 for https), removes the trailing slash from
// non-root paths, ensures an empty path becomes "/", and strips the fragment.
// The query string is kept; two URLs differing only by query are distinct
// pages. Does not modify the input *url.URL.
//
// Canonicalize is a fixed point: canonicalizing a canonical URL returns it
// unchanged.
func Canonicalize(u *url.URL) string {
	if u == nil {
		return ""
	}
	// Work on a copy
	normalized := *u

	normalized.Scheme = strings.ToLower(normalized.Scheme)
	normalized.Host = strings.ToLower(normalized.Host)

	// Remove default ports
	host, port, err := net.SplitHostPort(normalized.Host)
	if err == nil { // Host included a port
		if (normalized.Scheme == "http" && port == "80") ||
			(normalized.Scheme == "https" && port == "443") {
			normalized.Host = host
		}
	}

	// Trailing slash normalization
	if normalized.Path == "" {
		normalized.Path = "/"
	} else if len(normalized.Path) > 1 && strings.HasSuffix(normalized.Path, "/") {
		normalized.Path = strings.TrimSuffix(normalized.Path, "/")
	}

	normalized.Fragment = ""
	normalized.RawFragment = ""

	return normalized.String()
}

// RootDomain extracts the normalized host from a start URL string.
func RootDomain(startURL string) (string, error) {
	parsed, err := url.Parse(startURL)
	if err != nil {
		return "", err
	}
	return strings.ToLower(parsed.Hostname()), nil
}

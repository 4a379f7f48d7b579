// Package internal provides URL resolution for link targets.
package internal

import (
	"net/url"
	"strings"
)

// ResolveURL resolves a link target against a base URL. Absolute targets,
// fragments-only targets and unparsable input are returned unchanged.
func ResolveURL(baseURL, target string) string {
	target = strings.TrimSpace(target)
	if baseURL == "" || target == "" || strings.HasPrefix(target, "#") {
		return target
	}
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return target
	}
	ref, err := url.Parse(target)
	if err != nil {
		return target
	}
	return base.ResolveReference(ref).String()
}

// IsAbsoluteURL reports whether raw is an http(s) URL with a host.
func IsAbsoluteURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

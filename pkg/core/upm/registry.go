package upm

import (
	"net/url"
	"strings"
)

// Well-known registries. Neither is ever sent credentials.
const (
	OpenUPMRegistryURL = "https://package.openupm.com"
	UnityRegistryURL   = "https://packages.unity.com"
)

// Registry is an npm-compatible package registry.
type Registry struct {
	URL  string
	Auth *Auth
}

// Auth holds credentials for one registry. Token wins over basic auth.
type Auth struct {
	Token      string
	Username   string
	Password   string
	AlwaysAuth bool
}

// NewRegistry returns a registry for rawURL with a normalized URL.
func NewRegistry(rawURL string, auth *Auth) Registry {
	return Registry{URL: NormalizeRegistryURL(rawURL), Auth: auth}
}

// NormalizeRegistryURL trims surrounding space and trailing slashes so URLs
// compare equal regardless of how they were typed.
func NormalizeRegistryURL(rawURL string) string {
	return strings.TrimRight(strings.TrimSpace(rawURL), "/")
}

// IsWellKnown reports whether the registry is one of the public registries
// that never require authentication.
func (r Registry) IsWellKnown() bool {
	switch NormalizeRegistryURL(r.URL) {
	case OpenUPMRegistryURL, UnityRegistryURL:
		return true
	}
	return false
}

// Credentials returns the auth to send, or nil.
func (r Registry) Credentials() *Auth {
	if r.IsWellKnown() {
		return nil
	}
	return r.Auth
}

// ScopeName is the display name used for a scoped registry entry created for
// this registry: its host, or the raw URL when it does not parse.
func (r Registry) ScopeName() string {
	u, err := url.Parse(r.URL)
	if err != nil || u.Host == "" {
		return r.URL
	}
	return u.Host
}

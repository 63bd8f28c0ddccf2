package npm

import (
	"context"
	"encoding/base64"
	"net/url"

	"github.com/google/uuid"

	"github.com/openupm/openupm-cli/pkg/cache"
	"github.com/openupm/openupm-cli/pkg/core/upm"
	errs "github.com/openupm/openupm-cli/pkg/errors"
	"github.com/openupm/openupm-cli/pkg/integrations"
)

// CacheKeyPrefix starts every cache key this package writes.
const CacheKeyPrefix = "openupm:"

// Client fetches packuments. It implements deps.PackumentFetcher.
type Client struct {
	*integrations.Client
	keyer   cache.Keyer
	session string
}

// NewClient creates a registry client. Every request carries the same
// npm-session id so a registry can group the requests of one run.
func NewClient(opts integrations.Options) *Client {
	return &Client{
		Client:  integrations.NewClient(opts),
		keyer:   cache.NewScopedKeyer(cache.NewDefaultKeyer(), CacheKeyPrefix),
		session: uuid.NewString(),
	}
}

// Session returns the npm-session id sent with each request.
func (c *Client) Session() string { return c.session }

// FetchPackument retrieves the packument for name from registry.
func (c *Client) FetchPackument(ctx context.Context, registry upm.Registry, name upm.DomainName) (*upm.Packument, error) {
	return c.fetchPackument(ctx, registry, name, false)
}

// RefreshPackument is FetchPackument bypassing the cache.
func (c *Client) RefreshPackument(ctx context.Context, registry upm.Registry, name upm.DomainName) (*upm.Packument, error) {
	return c.fetchPackument(ctx, registry, name, true)
}

func (c *Client) fetchPackument(ctx context.Context, registry upm.Registry, name upm.DomainName, refresh bool) (*upm.Packument, error) {
	if err := errs.ValidatePackageName(string(name)); err != nil {
		return nil, err
	}
	if !upm.IsDomainName(string(name)) {
		return nil, errs.New(errs.ErrCodeInvalidPackage, "%q is not a valid package name", name)
	}
	base := upm.NormalizeRegistryURL(registry.URL)
	key := c.keyer.PackumentKey(base, string(name))

	var p upm.Packument
	err := c.Cached(ctx, key, refresh, &p, func() error {
		return c.GetWithHeaders(ctx, base+"/"+url.PathEscape(string(name)), c.headers(registry), &p)
	})
	if err != nil {
		if errs.Is(err, errs.ErrCodePackageNotFound) {
			return nil, errs.Wrap(errs.ErrCodePackageNotFound, err, "%s not found in %s", name, base)
		}
		return nil, err
	}
	if p.Versions == nil {
		p.Versions = map[upm.SemanticVersion]upm.PackumentVersion{}
	}
	if p.Name == "" {
		p.Name = name
	}
	return &p, nil
}

func (c *Client) headers(registry upm.Registry) map[string]string {
	h := map[string]string{
		"Accept":      "application/json",
		"npm-session": c.session,
	}
	if auth := authorization(registry); auth != "" {
		h["Authorization"] = auth
	}
	return h
}

// authorization builds the Authorization header value, or "" when the
// registry gets no credentials.
func authorization(registry upm.Registry) string {
	auth := registry.Credentials()
	switch {
	case auth == nil:
		return ""
	case auth.Token != "":
		return "Bearer " + auth.Token
	case auth.Username != "":
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(auth.Username+":"+auth.Password))
	}
	return ""
}

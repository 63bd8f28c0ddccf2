// Package manifest models a project's Packages/manifest.json.
//
// A [Manifest] is a value: every transform returns a new Manifest and leaves
// its receiver untouched, so a failed multi-step edit can be abandoned by
// dropping the intermediate values. Top-level keys this package does not
// model are carried through a load/save round trip unchanged.
package manifest

import (
	"maps"
	"slices"

	"github.com/openupm/openupm-cli/pkg/core/upm"
)

// RelativePath is where a project keeps its manifest.
const RelativePath = "Packages/manifest.json"

// Manifest is the decoded project manifest.
type Manifest struct {
	// Dependencies maps package names to a SemanticVersion or a PackageUrl.
	Dependencies     map[upm.DomainName]string
	ScopedRegistries []ScopedRegistry
	Testables        []upm.DomainName

	// extra holds top-level keys not modelled above, raw, in file order.
	extra []rawField
}

// ScopedRegistry routes package names under its scopes to a registry.
type ScopedRegistry struct {
	Name   string           `json:"name"`
	URL    string           `json:"url"`
	Scopes []upm.DomainName `json:"scopes"`
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{Dependencies: map[upm.DomainName]string{}}
}

// Clone returns a deep copy.
func (m *Manifest) Clone() *Manifest {
	c := &Manifest{
		Dependencies: maps.Clone(m.Dependencies),
		Testables:    slices.Clone(m.Testables),
		extra:        slices.Clone(m.extra),
	}
	if c.Dependencies == nil {
		c.Dependencies = map[upm.DomainName]string{}
	}
	if m.ScopedRegistries != nil {
		c.ScopedRegistries = make([]ScopedRegistry, len(m.ScopedRegistries))
		for i, sr := range m.ScopedRegistries {
			sr.Scopes = slices.Clone(sr.Scopes)
			c.ScopedRegistries[i] = sr
		}
	}
	return c
}

// Dependency returns the version or URL a package is pinned to.
func (m *Manifest) Dependency(name upm.DomainName) (string, bool) {
	v, ok := m.Dependencies[name]
	return v, ok
}

// SetDependency pins name to version. It returns the new manifest and the
// previous pin, if any.
func (m *Manifest) SetDependency(name upm.DomainName, version string) (*Manifest, string, bool) {
	prev, had := m.Dependencies[name]
	c := m.Clone()
	c.Dependencies[name] = version
	return c, prev, had
}

// RemoveDependency deletes name from dependencies and from every scoped
// registry, pruning registries left without scopes.
func (m *Manifest) RemoveDependency(name upm.DomainName) *Manifest {
	c := m.Clone()
	delete(c.Dependencies, name)
	for i := range c.ScopedRegistries {
		c.ScopedRegistries[i].Scopes = slices.DeleteFunc(c.ScopedRegistries[i].Scopes, func(s upm.DomainName) bool {
			return s == name
		})
	}
	return c.pruneScopedRegistries()
}

// ScopedRegistry returns the entry whose URL matches url.
func (m *Manifest) ScopedRegistry(url string) (ScopedRegistry, bool) {
	url = upm.NormalizeRegistryURL(url)
	for _, sr := range m.ScopedRegistries {
		if upm.NormalizeRegistryURL(sr.URL) == url {
			return sr, true
		}
	}
	return ScopedRegistry{}, false
}

// AddScopes merges scopes into the scoped registry for url, creating an
// entry named name when none exists. Scopes end up sorted and unique.
func (m *Manifest) AddScopes(name, url string, scopes ...upm.DomainName) *Manifest {
	c := m.Clone()
	norm := upm.NormalizeRegistryURL(url)
	idx := slices.IndexFunc(c.ScopedRegistries, func(sr ScopedRegistry) bool {
		return upm.NormalizeRegistryURL(sr.URL) == norm
	})
	if idx < 0 {
		c.ScopedRegistries = append(c.ScopedRegistries, ScopedRegistry{Name: name, URL: url})
		idx = len(c.ScopedRegistries) - 1
	}
	sr := &c.ScopedRegistries[idx]
	sr.Scopes = sortedUnique(append(sr.Scopes, scopes...))
	return c
}

// AddTestable adds name to testables, kept sorted and unique.
func (m *Manifest) AddTestable(name upm.DomainName) *Manifest {
	c := m.Clone()
	c.Testables = sortedUnique(append(c.Testables, name))
	return c
}

// pruneScopedRegistries drops entries with no scopes. It mutates m and is
// only called on fresh clones.
func (m *Manifest) pruneScopedRegistries() *Manifest {
	m.ScopedRegistries = slices.DeleteFunc(m.ScopedRegistries, func(sr ScopedRegistry) bool {
		return len(sr.Scopes) == 0
	})
	if len(m.ScopedRegistries) == 0 {
		m.ScopedRegistries = nil
	}
	return m
}

func sortedUnique(names []upm.DomainName) []upm.DomainName {
	out := slices.Clone(names)
	slices.Sort(out)
	return slices.Compact(out)
}

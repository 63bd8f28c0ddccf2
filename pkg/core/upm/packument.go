package upm

import (
	"maps"
	"slices"

	errs "github.com/openupm/openupm-cli/pkg/errors"
)

// Packument is the registry document describing every published version of
// a package.
type Packument struct {
	Name        DomainName                           `json:"name"`
	Description string                               `json:"description,omitempty"`
	Versions    map[SemanticVersion]PackumentVersion `json:"versions"`
	DistTags    map[string]SemanticVersion           `json:"dist-tags,omitempty"`
}

// PackumentVersion is the manifest of one published version.
type PackumentVersion struct {
	Name         DomainName            `json:"name"`
	Version      SemanticVersion       `json:"version"`
	DisplayName  string                `json:"displayName,omitempty"`
	Description  string                `json:"description,omitempty"`
	Dependencies map[DomainName]string `json:"dependencies,omitempty"`

	// Unity is the minimum editor "major.minor"; UnityRelease optionally
	// narrows it to a patch release such as "1f1".
	Unity        string `json:"unity,omitempty"`
	UnityRelease string `json:"unityRelease,omitempty"`
}

// Version returns the manifest for an exact version.
func (p *Packument) Version(v SemanticVersion) (PackumentVersion, bool) {
	pv, ok := p.Versions[v]
	return pv, ok
}

// VersionList returns published versions in ascending semver order.
func (p *Packument) VersionList() []SemanticVersion {
	vs := slices.Collect(maps.Keys(p.Versions))
	SortVersions(vs)
	return vs
}

// Latest returns the version tagged "latest", falling back to the highest
// stable version, then to the highest version of any kind.
func (p *Packument) Latest() (SemanticVersion, bool) {
	if v, ok := p.DistTags[TagLatest]; ok {
		if _, exists := p.Versions[v]; exists {
			return v, true
		}
	}
	vs := p.VersionList()
	for i := len(vs) - 1; i >= 0; i-- {
		if isStable(vs[i]) {
			return vs[i], true
		}
	}
	if len(vs) > 0 {
		return vs[len(vs)-1], true
	}
	return "", false
}

// ResolveVersion maps a requested version (empty, a tag or an exact
// version) to a published version.
func (p *Packument) ResolveVersion(requested string) (SemanticVersion, error) {
	switch requested {
	case "", TagLatest, TagStable:
		if v, ok := p.Latest(); ok {
			return v, nil
		}
		return "", errs.New(errs.ErrCodeVersionNotFound, "%s has no published versions", p.Name)
	}
	if v, ok := p.DistTags[requested]; ok {
		if _, exists := p.Versions[v]; exists {
			return v, nil
		}
	}
	if _, ok := p.Versions[SemanticVersion(requested)]; ok {
		return SemanticVersion(requested), nil
	}
	return "", &errs.VersionNotFoundError{
		Name:      string(p.Name),
		Version:   requested,
		Available: versionStrings(p.VersionList()),
	}
}

func versionStrings(vs []SemanticVersion) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}

// Package pipeline applies add and remove transactions to a project
// manifest.
//
// Every transaction works on an in-memory [manifest.Manifest] value. All
// requested packages are processed against that one value before anything
// touches the disk, and a single failure abandons the whole transaction:
// the manifest on disk is either fully updated or left exactly as it was.
//
// # Add
//
// For each requested reference, in order:
//
//  1. Resolve the version from the primary registry. Only when the primary
//     registry does not know the package at all, and upstream is enabled,
//     ask the upstream registry instead.
//  2. Check the version's declared minimum editor against the project's.
//  3. For packages not served by upstream, resolve the full dependency
//     graph and collect the scopes each registry must serve.
//  4. Pin the version, merge scopes, and record testables.
//
// Incompatible editors, failed compatibility checks and unresolved
// dependencies abort the transaction unless [AddOptions].Force is set.
//
// # Usage
//
//	runner := pipeline.NewRunner(client, hub.New(""), logger)
//	env, err := pipeline.NewEnv(projectDir, cfg)
//	res, err := runner.Add(ctx, env, refs, pipeline.AddOptions{})
//	if err != nil {
//	    return err // nothing was written
//	}
package pipeline

import (
	"github.com/openupm/openupm-cli/pkg/config"
	"github.com/openupm/openupm-cli/pkg/core/manifest"
	"github.com/openupm/openupm-cli/pkg/core/project"
	"github.com/openupm/openupm-cli/pkg/core/upm"
	errs "github.com/openupm/openupm-cli/pkg/errors"
)

// =============================================================================
// Environment
// =============================================================================

// Env describes the project a transaction runs against.
type Env struct {
	// ProjectDir is the project root containing Packages/manifest.json.
	ProjectDir string

	// Primary is the registry packages are added from.
	Primary upm.Registry

	// Upstream is always searched for dependencies. A requested package
	// is taken from it only when UpstreamEnabled and Primary does not
	// know the package.
	Upstream        upm.Registry
	UpstreamEnabled bool

	// EditorVersion is the project's editor. Compatibility checks are
	// skipped when it did not parse.
	EditorVersion project.EditorVersion
}

// NewEnv builds an Env for the project at dir from cfg, reading the
// project's editor version.
func NewEnv(dir string, cfg config.Config) (Env, error) {
	ev, err := project.LoadEditorVersion(dir)
	if err != nil {
		return Env{}, err
	}
	env := Env{
		ProjectDir:    dir,
		Primary:       cfg.Primary(),
		EditorVersion: ev,
	}
	env.Upstream, env.UpstreamEnabled = cfg.Fallback()
	return env, nil
}

// sources returns the registries dependency resolution searches, in order.
// The upstream registry is always searched; UpstreamEnabled only governs
// where a requested package's version may come from.
func (e Env) sources() []upm.Registry {
	return []upm.Registry{e.Primary, e.Upstream}
}

// =============================================================================
// Add
// =============================================================================

// AddOptions controls an add transaction.
type AddOptions struct {
	// Force adds packages despite incompatible editors, failed
	// compatibility checks and unresolved dependencies.
	Force bool

	// Testable also lists each added package under testables.
	Testable bool
}

// Status describes what an add did to one dependency entry.
type Status string

const (
	StatusAdded    Status = "added"
	StatusModified Status = "modified"
	StatusExisted  Status = "existed"
)

// AddedPackage reports the outcome for one requested reference.
type AddedPackage struct {
	Name     upm.DomainName
	Version  string // SemanticVersion or PackageUrl now pinned
	Previous string // prior pin, set when Status is StatusModified
	Status   Status
	Upstream bool // version came from the upstream registry
}

// AddResult is the outcome of a successful add transaction.
type AddResult struct {
	Manifest *manifest.Manifest
	// Dirty reports whether Manifest differs from the input and must be
	// written back.
	Dirty    bool
	Packages []AddedPackage
}

// =============================================================================
// Remove
// =============================================================================

// RemovedPackage reports a removed dependency and the pin it had.
type RemovedPackage struct {
	Name    upm.DomainName
	Version string
}

// RemovePackages removes names from m. If any name is not a dependency of
// m, it fails with PACKAGE_NOT_FOUND naming the first missing one and
// nothing is removed. m itself is never modified.
func RemovePackages(m *manifest.Manifest, names []upm.DomainName) (*manifest.Manifest, []RemovedPackage, error) {
	for _, name := range names {
		if _, ok := m.Dependency(name); !ok {
			return nil, nil, errs.New(errs.ErrCodePackageNotFound, "package %s is not a dependency of this project", name)
		}
	}

	out := m
	removed := make([]RemovedPackage, 0, len(names))
	for _, name := range names {
		version, ok := out.Dependency(name)
		if !ok {
			// repeated name
			continue
		}
		out = out.RemoveDependency(name)
		removed = append(removed, RemovedPackage{Name: name, Version: version})
	}
	return out, removed, nil
}

// Package deps builds dependency graphs for UPM packages.
//
// A [Resolver] walks a package's dependencies breadth-first, asking the
// installed editor's built-in package set and then each registry in order
// whether it can supply the exact version required. Every (name, version)
// pair it meets becomes one node of a [Graph] recording where it was found,
// or why it could not be.
//
// The resolver never picks versions: each name resolves to the version its
// dependent asked for. It answers "can everything be found, and where?"
//
//	r := deps.NewResolver(client, hub, projectEditor, deps.Options{Logger: logger})
//	g, err := r.Resolve(ctx, []upm.Registry{primary, upstream}, "com.example.pkg", "1.0.0", true)
package deps

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/openupm/openupm-cli/pkg/core/editor"
	"github.com/openupm/openupm-cli/pkg/core/upm"
)

// PackumentFetcher retrieves package metadata from an npm-compatible
// registry.
//
// Implementations must distinguish a package the registry does not know
// (errors.ErrCodePackageNotFound) from a registry that could not be queried
// (errors.ErrCodeNetwork, errors.ErrCodeUnauthorized).
type PackumentFetcher interface {
	FetchPackument(ctx context.Context, registry upm.Registry, name upm.DomainName) (*upm.Packument, error)
}

// BuiltInLister lists the packages bundled with an installed editor.
//
// An error means the set is unavailable (editor not installed, platform not
// supported), which is not the same as an empty set.
type BuiltInLister interface {
	ListBuiltInPackages(ctx context.Context, version editor.Version) ([]upm.DomainName, error)
}

// Options configures dependency resolution behavior.
type Options struct {
	Logger *log.Logger // Debug output for each resolved or failed node (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

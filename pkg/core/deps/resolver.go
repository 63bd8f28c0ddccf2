package deps

import (
	"context"
	"slices"
	"time"

	"github.com/openupm/openupm-cli/pkg/core/editor"
	"github.com/openupm/openupm-cli/pkg/core/upm"
	errs "github.com/openupm/openupm-cli/pkg/errors"
	"github.com/openupm/openupm-cli/pkg/observability"
)

// Resolver builds dependency graphs from a fetcher and the installed
// editor's built-in packages.
//
// Use [NewResolver] to construct instances.
type Resolver struct {
	fetcher  PackumentFetcher
	builtins BuiltInLister
	editor   *editor.Version
	opts     Options
}

// NewResolver creates a Resolver.
//
// projectEditor is the project's editor version, or nil when it could not
// be parsed. Built-in packages are only looked up for release versions; for
// anything else the built-in set is empty and builtins is never called.
func NewResolver(fetcher PackumentFetcher, builtins BuiltInLister, projectEditor *editor.Version, opts Options) *Resolver {
	return &Resolver{
		fetcher:  fetcher,
		builtins: builtins,
		editor:   projectEditor,
		opts:     opts.WithDefaults(),
	}
}

// Resolve builds the graph of name@version and its dependencies.
//
// Nodes are processed first-in first-out starting from the root. For each
// node the built-in set is consulted, then sources in order; the first
// source whose packument contains the exact version wins and later sources
// are not queried. Dependencies are queued in ascending name order. Those
// pinned to a PackageUrl are skipped.
//
// With deep=false only the root is looked up and its direct dependencies
// are recorded as unresolved.
//
// Missing packages are not errors: they become failed nodes. The returned
// error is non-nil only when resolution cannot proceed at all, because the
// built-in set is unavailable or ctx is done.
func (r *Resolver) Resolve(ctx context.Context, sources []upm.Registry, name upm.DomainName, version upm.SemanticVersion, deep bool) (*Graph, error) {
	root := Key{Name: name, Version: version}
	w := &walk{
		Resolver: r,
		ctx:      ctx,
		sources:  uniqueSources(sources),
		g:        NewGraph(root),
	}

	start := time.Now()
	observability.Resolve().OnResolveStart(ctx, string(name), string(version))
	if err := w.run(root, deep); err != nil {
		return nil, err
	}
	observability.Resolve().OnResolveComplete(ctx, string(name), string(version), w.g.Len(), len(w.g.Failed()), time.Since(start))
	return w.g, nil
}

// walk holds the state of one Resolve call.
type walk struct {
	*Resolver
	ctx     context.Context
	sources []upm.Registry
	g       *Graph

	builtinSet    map[upm.DomainName]bool
	builtinLoaded bool
}

func (w *walk) run(root Key, deep bool) error {
	queue := []Key{root}
	for len(queue) > 0 {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		key := queue[0]
		queue = queue[1:]
		if w.g.Has(key) {
			continue
		}

		source, deps, failures, err := w.lookup(key)
		if err != nil {
			return err
		}
		if failures != nil {
			w.g.AddFailed(key, failures)
			w.opts.Logger.Debug("unresolved", "pkg", key)
			continue
		}
		w.g.AddResolved(key, source, deps)
		w.opts.Logger.Debug("resolved", "pkg", key, "source", source)

		for _, dep := range sortedDependencies(deps) {
			if w.g.Has(dep) {
				continue
			}
			if deep {
				queue = append(queue, dep)
			} else {
				w.g.AddUnresolved(dep)
			}
		}
	}
	return nil
}

// lookup finds key among the built-ins and then the sources. Exactly one of
// source and failures is set unless err is non-nil.
func (w *walk) lookup(key Key) (string, map[upm.DomainName]string, map[string]error, error) {
	builtins, err := w.builtinPackages()
	if err != nil {
		return "", nil, nil, err
	}
	if builtins[key.Name] {
		return BuiltIn, nil, nil, nil
	}

	failures := make(map[string]error, len(w.sources))
	for _, reg := range w.sources {
		pv, err := w.query(reg, key)
		observability.Resolve().OnRegistryQuery(w.ctx, reg.URL, string(key.Name), err == nil)
		if err == nil {
			return reg.URL, pv.Dependencies, nil, nil
		}
		if ctxErr := w.ctx.Err(); ctxErr != nil {
			return "", nil, nil, ctxErr
		}
		failures[reg.URL] = err
	}
	return "", nil, failures, nil
}

// query asks one registry for the exact version of key.
func (w *walk) query(reg upm.Registry, key Key) (upm.PackumentVersion, error) {
	p, err := w.fetcher.FetchPackument(w.ctx, reg, key.Name)
	if err != nil {
		return upm.PackumentVersion{}, categorize(reg, key, err)
	}
	if p == nil {
		return upm.PackumentVersion{}, errs.New(errs.ErrCodePackageNotFound, "%s not found in %s", key.Name, reg.URL)
	}
	pv, ok := p.Version(key.Version)
	if !ok {
		available := p.VersionList()
		names := make([]string, len(available))
		for i, v := range available {
			names[i] = string(v)
		}
		return upm.PackumentVersion{}, &errs.VersionNotFoundError{
			Name:      string(key.Name),
			Version:   string(key.Version),
			Available: names,
		}
	}
	return pv, nil
}

// builtinPackages loads the built-in set on first use and reuses it for
// the rest of the walk.
func (w *walk) builtinPackages() (map[upm.DomainName]bool, error) {
	if w.builtinLoaded {
		return w.builtinSet, nil
	}
	w.builtinLoaded = true
	w.builtinSet = map[upm.DomainName]bool{}

	if w.editor == nil || !w.editor.IsRelease() || w.builtins == nil {
		return w.builtinSet, nil
	}
	names, err := w.builtins.ListBuiltInPackages(w.ctx, *w.editor)
	if err != nil {
		if errs.GetCode(err) == "" {
			err = errs.Wrap(errs.ErrCodeEditorNotInstalled, err, "list built-in packages for editor %s", w.editor)
		}
		return nil, err
	}
	for _, n := range names {
		w.builtinSet[n] = true
	}
	return w.builtinSet, nil
}

// categorize keeps coded registry errors and files anything else under
// NETWORK_ERROR, since an uncoded failure means the registry could not be
// queried.
func categorize(reg upm.Registry, key Key, err error) error {
	switch errs.GetCode(err) {
	case errs.ErrCodePackageNotFound, errs.ErrCodeNetwork, errs.ErrCodeUnauthorized,
		errs.ErrCodeTimeout, errs.ErrCodeRateLimited, errs.ErrCodeMalformedPackument:
		return err
	}
	return errs.Wrap(errs.ErrCodeNetwork, err, "query %s for %s", reg.URL, key.Name)
}

// sortedDependencies returns the registry dependencies of a node as keys in
// ascending name order, dropping PackageUrl pins.
func sortedDependencies(deps map[upm.DomainName]string) []Key {
	keys := make([]Key, 0, len(deps))
	for name, v := range deps {
		if upm.IsPackageUrl(v) {
			continue
		}
		keys = append(keys, Key{Name: name, Version: upm.SemanticVersion(v)})
	}
	slices.SortFunc(keys, func(a, b Key) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return keys
}

// uniqueSources drops repeated registry URLs, keeping the first occurrence.
func uniqueSources(sources []upm.Registry) []upm.Registry {
	seen := make(map[string]bool, len(sources))
	out := make([]upm.Registry, 0, len(sources))
	for _, s := range sources {
		if seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		out = append(out, s)
	}
	return out
}

package pipeline

import (
	"context"
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/openupm/openupm-cli/pkg/core/compat"
	"github.com/openupm/openupm-cli/pkg/core/deps"
	"github.com/openupm/openupm-cli/pkg/core/manifest"
	"github.com/openupm/openupm-cli/pkg/core/upm"
	errs "github.com/openupm/openupm-cli/pkg/errors"
)

// Runner executes manifest transactions against registries.
//
// The Runner holds no per-transaction state; callers must still serialize
// transactions on the same project since nothing locks the manifest file.
type Runner struct {
	Fetcher  deps.PackumentFetcher
	BuiltIns deps.BuiltInLister
	Logger   *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
// builtins may be nil, in which case no package is treated as built-in.
func NewRunner(fetcher deps.PackumentFetcher, builtins deps.BuiltInLister, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Fetcher:  fetcher,
		BuiltIns: builtins,
		Logger:   logger,
	}
}

// Add loads the project manifest, adds refs and writes the manifest back
// once if anything changed. On error nothing is written.
func (r *Runner) Add(ctx context.Context, env Env, refs []upm.PackageReference, opts AddOptions) (*AddResult, error) {
	m, err := manifest.Load(env.ProjectDir)
	if err != nil {
		return nil, err
	}
	res, err := r.AddPackages(ctx, m, env, refs, opts)
	if err != nil {
		return nil, err
	}
	if res.Dirty {
		if err := manifest.Save(env.ProjectDir, res.Manifest); err != nil {
			return nil, err
		}
		r.Logger.Debug("saved manifest", "path", manifest.Path(env.ProjectDir))
	}
	return res, nil
}

// Remove loads the project manifest, removes names and writes it back. If
// any name is missing nothing is written.
func (r *Runner) Remove(ctx context.Context, env Env, names []upm.DomainName) ([]RemovedPackage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := manifest.Load(env.ProjectDir)
	if err != nil {
		return nil, err
	}
	out, removed, err := RemovePackages(m, names)
	if err != nil {
		return nil, err
	}
	if err := manifest.Save(env.ProjectDir, out); err != nil {
		return nil, err
	}
	return removed, nil
}

// AddPackages adds refs to m in order and returns the resulting manifest.
// m is never modified; on error the partial result is discarded.
func (r *Runner) AddPackages(ctx context.Context, m *manifest.Manifest, env Env, refs []upm.PackageReference, opts AddOptions) (*AddResult, error) {
	res := &AddResult{Manifest: m}
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		added, err := r.addOne(ctx, res, env, ref, opts)
		if err != nil {
			return nil, err
		}
		res.Packages = append(res.Packages, added)
	}
	return res, nil
}

// plan is what adding one reference will do to the manifest.
type plan struct {
	version  string
	upstream bool
	scopes   map[string][]upm.DomainName // registry URL -> names it must serve
}

func (r *Runner) addOne(ctx context.Context, res *AddResult, env Env, ref upm.PackageReference, opts AddOptions) (AddedPackage, error) {
	name, err := upm.ParseDomainName(string(ref.Name))
	if err != nil {
		return AddedPackage{}, err
	}

	var p plan
	if ref.IsURL() {
		p = plan{
			version: ref.Version,
			scopes:  map[string][]upm.DomainName{env.Primary.URL: {name}},
		}
	} else {
		p, err = r.planRegistryPackage(ctx, res.Manifest, env, name, ref.Version, opts)
		if err != nil {
			return AddedPackage{}, err
		}
	}

	added := AddedPackage{Name: name, Version: p.version, Upstream: p.upstream}
	next, prev, had := res.Manifest.SetDependency(name, p.version)
	switch {
	case !had:
		added.Status = StatusAdded
		res.Dirty = true
	case prev != p.version:
		added.Status = StatusModified
		added.Previous = prev
		res.Dirty = true
	default:
		added.Status = StatusExisted
	}

	for _, url := range slices.Sorted(maps.Keys(p.scopes)) {
		before, _ := next.ScopedRegistry(url)
		next = next.AddScopes(scopeRegistryName(env, url), url, p.scopes[url]...)
		after, _ := next.ScopedRegistry(url)
		if !sameNames(before.Scopes, after.Scopes) {
			res.Dirty = true
		}
	}

	if opts.Testable {
		before := next.Testables
		next = next.AddTestable(name)
		if !sameNames(before, next.Testables) {
			res.Dirty = true
		}
	}

	res.Manifest = next
	r.Logger.Debug("planned", "pkg", name, "version", p.version, "status", added.Status)
	return added, nil
}

// planRegistryPackage resolves a registry reference to a version, checks
// it against the project's editor and collects the scopes its dependency
// graph needs.
func (r *Runner) planRegistryPackage(ctx context.Context, m *manifest.Manifest, env Env, name upm.DomainName, requested string, opts AddOptions) (plan, error) {
	pv, upstream, err := r.resolveVersion(ctx, env, name, requested)
	if err != nil {
		return plan{}, err
	}
	p := plan{version: string(pv.Version), upstream: upstream}

	projectEditor := env.EditorVersion.Parsed
	if err := compat.Check(pv, projectEditor).Error(pv, projectEditor); err != nil {
		if !opts.Force {
			return plan{}, err
		}
		r.Logger.Warn("adding anyway", "pkg", name, "err", errs.UserMessage(err))
	}

	if upstream {
		return p, nil
	}

	resolver := deps.NewResolver(r.Fetcher, r.BuiltIns, projectEditor, deps.Options{Logger: r.Logger})
	g, err := resolver.Resolve(ctx, env.sources(), name, pv.Version, true)
	if err != nil {
		return plan{}, err
	}

	p.scopes = map[string][]upm.DomainName{}
	var unresolved []string
	for _, n := range g.Nodes() {
		switch n.Kind {
		case deps.KindFailed:
			if _, ok := m.Dependency(n.Name); ok {
				continue
			}
			unresolved = append(unresolved, n.Key.String())
			for url, ferr := range n.Errors {
				r.Logger.Debug("dependency not found", "pkg", n.Key, "registry", url, "err", errs.UserMessage(ferr))
			}
		case deps.KindResolved:
			if n.Source == deps.BuiltIn || n.Source == env.Upstream.URL {
				continue
			}
			p.scopes[n.Source] = append(p.scopes[n.Source], n.Name)
		}
	}
	if len(unresolved) > 0 {
		uerr := &errs.UnresolvedDependencyError{Package: string(name), Dependencies: unresolved}
		if !opts.Force {
			return plan{}, uerr
		}
		r.Logger.Warn("adding anyway", "pkg", name, "err", uerr)
	}
	return p, nil
}

// Dependencies resolves ref to a version and builds its dependency graph
// across the environment's registries. With deep=false only direct
// dependencies are listed, unresolved.
func (r *Runner) Dependencies(ctx context.Context, env Env, ref upm.PackageReference, deep bool) (*deps.Graph, error) {
	if ref.IsURL() {
		return nil, errs.New(errs.ErrCodeInvalidInput, "%s is pinned to a URL and has no registry dependencies", ref.Name)
	}
	pv, _, err := r.resolveVersion(ctx, env, ref.Name, ref.Version)
	if err != nil {
		return nil, err
	}
	resolver := deps.NewResolver(r.Fetcher, r.BuiltIns, env.EditorVersion.Parsed, deps.Options{Logger: r.Logger})
	return resolver.Resolve(ctx, env.sources(), ref.Name, pv.Version, deep)
}

// resolveVersion picks the version of name to add. The upstream registry
// is only asked when the primary registry has no packument for name; a
// primary packument lacking the requested version is final.
func (r *Runner) resolveVersion(ctx context.Context, env Env, name upm.DomainName, requested string) (upm.PackumentVersion, bool, error) {
	upstream := false
	pkt, err := r.Fetcher.FetchPackument(ctx, env.Primary, name)
	if errs.Is(err, errs.ErrCodePackageNotFound) && env.UpstreamEnabled {
		r.Logger.Debug("not in primary registry, trying upstream", "pkg", name, "registry", env.Upstream.URL)
		pkt, err = r.Fetcher.FetchPackument(ctx, env.Upstream, name)
		upstream = true
	}
	if err != nil {
		return upm.PackumentVersion{}, false, err
	}
	if pkt == nil {
		return upm.PackumentVersion{}, false, errs.New(errs.ErrCodePackageNotFound, "package %s not found", name)
	}

	v, err := pkt.ResolveVersion(requested)
	if err != nil {
		return upm.PackumentVersion{}, false, err
	}
	pv, _ := pkt.Version(v)
	if pv.Name == "" {
		pv.Name = name
	}
	if pv.Version == "" {
		pv.Version = v
	}
	return pv, upstream, nil
}

// sameNames reports whether a and b hold the same names, ignoring order
// and repeats.
func sameNames(a, b []upm.DomainName) bool {
	a, b = slices.Clone(a), slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(slices.Compact(a), slices.Compact(b))
}

// scopeRegistryName names a new scoped registry entry for url.
func scopeRegistryName(env Env, url string) string {
	if url == env.Primary.URL {
		return env.Primary.ScopeName()
	}
	return upm.NewRegistry(url, nil).ScopeName()
}

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/openupm/openupm-cli/pkg/config"
	"github.com/openupm/openupm-cli/pkg/core/editor"
	"github.com/openupm/openupm-cli/pkg/core/manifest"
	"github.com/openupm/openupm-cli/pkg/core/project"
	"github.com/openupm/openupm-cli/pkg/core/upm"
	errs "github.com/openupm/openupm-cli/pkg/errors"
)

const (
	primaryURL  = "https://registry.example.com"
	upstreamURL = upm.UnityRegistryURL
)

// fakeRegistries serves packuments by registry URL and package name and
// records every fetch as "url name".
type fakeRegistries struct {
	pkts  map[string]map[upm.DomainName]*upm.Packument
	calls []string
}

func newFakeRegistries() *fakeRegistries {
	return &fakeRegistries{pkts: map[string]map[upm.DomainName]*upm.Packument{
		primaryURL:  {},
		upstreamURL: {},
	}}
}

func (f *fakeRegistries) publish(url string, versions ...upm.PackumentVersion) {
	for _, pv := range versions {
		p, ok := f.pkts[url][pv.Name]
		if !ok {
			p = &upm.Packument{Name: pv.Name, Versions: map[upm.SemanticVersion]upm.PackumentVersion{}}
			f.pkts[url][pv.Name] = p
		}
		p.Versions[pv.Version] = pv
	}
}

func (f *fakeRegistries) FetchPackument(_ context.Context, reg upm.Registry, name upm.DomainName) (*upm.Packument, error) {
	f.calls = append(f.calls, reg.URL+" "+string(name))
	pkts, ok := f.pkts[reg.URL]
	if !ok {
		return nil, errs.New(errs.ErrCodeNetwork, "%s unreachable", reg.URL)
	}
	p, ok := pkts[name]
	if !ok {
		return nil, errs.New(errs.ErrCodePackageNotFound, "%s not found", name)
	}
	return p, nil
}

type fakeBuiltIns struct {
	names []upm.DomainName
	calls int
}

func (f *fakeBuiltIns) ListBuiltInPackages(context.Context, editor.Version) ([]upm.DomainName, error) {
	f.calls++
	return f.names, nil
}

func pv(name, version string, deps map[upm.DomainName]string) upm.PackumentVersion {
	return upm.PackumentVersion{
		Name:         upm.DomainName(name),
		Version:      upm.SemanticVersion(version),
		Dependencies: deps,
	}
}

func withUnity(v upm.PackumentVersion, unity, release string) upm.PackumentVersion {
	v.Unity = unity
	v.UnityRelease = release
	return v
}

func testEnv(dir string) Env {
	ev := editor.MustParse("2022.2.1f2")
	return Env{
		ProjectDir:      dir,
		Primary:         upm.NewRegistry(primaryURL, nil),
		Upstream:        upm.NewRegistry(upstreamURL, nil),
		UpstreamEnabled: true,
		EditorVersion:   project.EditorVersion{Raw: ev.String(), Parsed: &ev},
	}
}

func testRunner(reg *fakeRegistries) *Runner {
	return NewRunner(reg, &fakeBuiltIns{}, log.New(&bytes.Buffer{}))
}

func refs(t *testing.T, ss ...string) []upm.PackageReference {
	t.Helper()
	out := make([]upm.PackageReference, len(ss))
	for i, s := range ss {
		ref, err := upm.ParsePackageReference(s)
		if err != nil {
			t.Fatalf("ParsePackageReference(%q): %v", s, err)
		}
		out[i] = ref
	}
	return out
}

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	path := manifest.Path(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readManifest(t *testing.T, dir string) []byte {
	t.Helper()
	data, err := os.ReadFile(manifest.Path(dir))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestAddResolvesScopes(t *testing.T) {
	reg := newFakeRegistries()
	reg.publish(primaryURL,
		pv("pkg", "1.0.0", map[upm.DomainName]string{"dep": "1.0.0"}),
		withUnity(pv("dep", "1.0.0", nil), "2022.2", ""),
	)
	dir := t.TempDir()
	writeManifest(t, dir, "{\n  \"dependencies\": {}\n}\n")

	res, err := testRunner(reg).Add(context.Background(), testEnv(dir), refs(t, "pkg"), AddOptions{})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !res.Dirty {
		t.Error("Dirty = false, want true")
	}
	want := []AddedPackage{{Name: "pkg", Version: "1.0.0", Status: StatusAdded}}
	if !reflect.DeepEqual(res.Packages, want) {
		t.Errorf("Packages = %+v, want %+v", res.Packages, want)
	}

	wantFile := `{
  "dependencies": {
    "pkg": "1.0.0"
  },
  "scopedRegistries": [
    {
      "name": "registry.example.com",
      "url": "https://registry.example.com",
      "scopes": [
        "dep",
        "pkg"
      ]
    }
  ]
}
`
	if got := string(readManifest(t, dir)); got != wantFile {
		t.Errorf("manifest =\n%s\nwant\n%s", got, wantFile)
	}
}

func TestAddIsAtomic(t *testing.T) {
	const original = "{\n  \"dependencies\": {\n    \"other\": \"0.1.0\"\n  }\n}\n"
	for _, order := range [][]string{{"pkg", "missing"}, {"missing", "pkg"}} {
		t.Run(order[0]+"_first", func(t *testing.T) {
			reg := newFakeRegistries()
			reg.publish(primaryURL, pv("pkg", "1.0.0", nil))
			dir := t.TempDir()
			writeManifest(t, dir, original)

			_, err := testRunner(reg).Add(context.Background(), testEnv(dir), refs(t, order...), AddOptions{})
			if !errs.Is(err, errs.ErrCodePackageNotFound) {
				t.Fatalf("Add error = %v, want PACKAGE_NOT_FOUND", err)
			}
			if got := string(readManifest(t, dir)); got != original {
				t.Errorf("manifest changed:\n%s", got)
			}
		})
	}
}

func TestAddPackagesLeavesInputUntouched(t *testing.T) {
	reg := newFakeRegistries()
	reg.publish(primaryURL, pv("pkg", "1.0.0", nil))
	m := manifest.New()

	res, err := testRunner(reg).AddPackages(context.Background(), m, testEnv(""), refs(t, "pkg"), AddOptions{Testable: true})
	if err != nil {
		t.Fatalf("AddPackages: %v", err)
	}
	if len(m.Dependencies) != 0 || m.ScopedRegistries != nil || m.Testables != nil {
		t.Errorf("input manifest modified: %+v", m)
	}
	if got := res.Manifest.Testables; !slices.Equal(got, []upm.DomainName{"pkg"}) {
		t.Errorf("Testables = %v, want [pkg]", got)
	}
}

func TestAddEditorCompatibility(t *testing.T) {
	tests := []struct {
		name         string
		unity        string
		unityRelease string
		wantCode     errs.Code
	}{
		{"older target", "2021.3", "", ""},
		{"same release", "2022.2", "1f2", ""},
		{"newer target", "2023.1", "", errs.ErrCodeIncompatible},
		{"newer patch", "2022.2", "5f1", errs.ErrCodeIncompatible},
		{"malformed", "latest", "", errs.ErrCodeCompatCheckFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newFakeRegistries()
			reg.publish(primaryURL, withUnity(pv("pkg", "1.0.0", nil), tt.unity, tt.unityRelease))
			r := testRunner(reg)

			_, err := r.AddPackages(context.Background(), manifest.New(), testEnv(""), refs(t, "pkg"), AddOptions{})
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("AddPackages: %v", err)
				}
				return
			}
			if !errs.Is(err, tt.wantCode) {
				t.Fatalf("AddPackages error = %v, want %s", err, tt.wantCode)
			}

			res, err := r.AddPackages(context.Background(), manifest.New(), testEnv(""), refs(t, "pkg"), AddOptions{Force: true})
			if err != nil {
				t.Fatalf("forced AddPackages: %v", err)
			}
			if v, _ := res.Manifest.Dependency("pkg"); v != "1.0.0" {
				t.Errorf("forced dependency = %q, want 1.0.0", v)
			}
		})
	}
}

func TestAddUnknownEditorSkipsCompatibility(t *testing.T) {
	reg := newFakeRegistries()
	reg.publish(primaryURL, withUnity(pv("pkg", "1.0.0", nil), "2099.1", ""))
	builtins := &fakeBuiltIns{}
	env := testEnv("")
	env.EditorVersion = project.EditorVersion{Raw: "2022.2"}

	r := NewRunner(reg, builtins, log.New(&bytes.Buffer{}))
	if _, err := r.AddPackages(context.Background(), manifest.New(), env, refs(t, "pkg"), AddOptions{}); err != nil {
		t.Fatalf("AddPackages: %v", err)
	}
	if builtins.calls != 0 {
		t.Errorf("built-ins listed %d times for an unparsed editor, want 0", builtins.calls)
	}
}

func TestAddUnresolvedDependency(t *testing.T) {
	reg := newFakeRegistries()
	reg.publish(primaryURL, pv("pkg", "1.0.0", map[upm.DomainName]string{
		"dep":     "1.0.0",
		"missing": "2.0.0",
	}), pv("dep", "1.0.0", nil))
	r := testRunner(reg)

	_, err := r.AddPackages(context.Background(), manifest.New(), testEnv(""), refs(t, "pkg"), AddOptions{})
	var uerr *errs.UnresolvedDependencyError
	if !errors.As(err, &uerr) {
		t.Fatalf("AddPackages error = %v, want UnresolvedDependencyError", err)
	}
	if !slices.Equal(uerr.Dependencies, []string{"missing@2.0.0"}) {
		t.Errorf("Dependencies = %v, want [missing@2.0.0]", uerr.Dependencies)
	}

	t.Run("already in manifest", func(t *testing.T) {
		m, _, _ := manifest.New().SetDependency("missing", "file:../missing")
		if _, err := r.AddPackages(context.Background(), m, testEnv(""), refs(t, "pkg"), AddOptions{}); err != nil {
			t.Fatalf("AddPackages: %v", err)
		}
	})

	t.Run("force", func(t *testing.T) {
		res, err := r.AddPackages(context.Background(), manifest.New(), testEnv(""), refs(t, "pkg"), AddOptions{Force: true})
		if err != nil {
			t.Fatalf("AddPackages: %v", err)
		}
		sr, ok := res.Manifest.ScopedRegistry(primaryURL)
		if !ok || !slices.Equal(sr.Scopes, []upm.DomainName{"dep", "pkg"}) {
			t.Errorf("scoped registry = %+v, want scopes [dep pkg]", sr)
		}
	})
}

func TestAddUpstreamFallback(t *testing.T) {
	reg := newFakeRegistries()
	reg.publish(upstreamURL, pv("com.unity.timeline", "1.8.0", map[upm.DomainName]string{"com.unity.modules.audio": "1.0.0"}))
	reg.pkts[upstreamURL]["com.unity.timeline"].DistTags = map[string]upm.SemanticVersion{"latest": "1.8.0"}

	res, err := testRunner(reg).AddPackages(context.Background(), manifest.New(), testEnv(""), refs(t, "com.unity.timeline"), AddOptions{})
	if err != nil {
		t.Fatalf("AddPackages: %v", err)
	}
	if got := res.Packages[0]; !got.Upstream || got.Version != "1.8.0" {
		t.Errorf("package = %+v, want upstream 1.8.0", got)
	}
	if res.Manifest.ScopedRegistries != nil {
		t.Errorf("ScopedRegistries = %+v, want none for upstream packages", res.Manifest.ScopedRegistries)
	}
	wantCalls := []string{primaryURL + " com.unity.timeline", upstreamURL + " com.unity.timeline"}
	if !slices.Equal(reg.calls, wantCalls) {
		t.Errorf("calls = %v, want %v", reg.calls, wantCalls)
	}
}

func TestAddNoFallbackForMissingVersion(t *testing.T) {
	reg := newFakeRegistries()
	reg.publish(primaryURL, pv("pkg", "1.0.0", nil))
	reg.publish(upstreamURL, pv("pkg", "2.0.0", nil))

	_, err := testRunner(reg).AddPackages(context.Background(), manifest.New(), testEnv(""), refs(t, "pkg@2.0.0"), AddOptions{})
	if !errs.Is(err, errs.ErrCodeVersionNotFound) {
		t.Fatalf("AddPackages error = %v, want VERSION_NOT_FOUND", err)
	}
	if slices.Contains(reg.calls, upstreamURL+" pkg") {
		t.Errorf("upstream queried: %v", reg.calls)
	}
}

func TestAddUpstreamDisabled(t *testing.T) {
	reg := newFakeRegistries()
	reg.publish(upstreamURL, pv("com.unity.timeline", "1.8.0", nil))
	env := testEnv("")
	env.UpstreamEnabled = false

	_, err := testRunner(reg).AddPackages(context.Background(), manifest.New(), env, refs(t, "com.unity.timeline"), AddOptions{})
	if !errs.Is(err, errs.ErrCodePackageNotFound) {
		t.Fatalf("AddPackages error = %v, want PACKAGE_NOT_FOUND", err)
	}
}

func TestAddUpstreamDisabledResolvesUpstreamDependencies(t *testing.T) {
	reg := newFakeRegistries()
	reg.publish(primaryURL, pv("pkg", "1.0.0", map[upm.DomainName]string{"com.unity.textmeshpro": "3.0.6"}))
	reg.publish(upstreamURL, pv("com.unity.textmeshpro", "3.0.6", nil))
	env := testEnv("")
	env.UpstreamEnabled = false

	res, err := testRunner(reg).AddPackages(context.Background(), manifest.New(), env, refs(t, "pkg@1.0.0"), AddOptions{})
	if err != nil {
		t.Fatalf("AddPackages: %v", err)
	}
	sr, ok := res.Manifest.ScopedRegistry(primaryURL)
	if !ok || !slices.Equal(sr.Scopes, []upm.DomainName{"pkg"}) {
		t.Errorf("scoped registry = %+v, want scopes [pkg]", sr)
	}
	if _, ok := res.Manifest.ScopedRegistry(upstreamURL); ok {
		t.Error("upstream dependency should not add a scoped registry")
	}
	wantCalls := []string{
		primaryURL + " pkg",
		primaryURL + " pkg",
		primaryURL + " com.unity.textmeshpro",
		upstreamURL + " com.unity.textmeshpro",
	}
	if !slices.Equal(reg.calls, wantCalls) {
		t.Errorf("calls = %v, want %v", reg.calls, wantCalls)
	}
}

func TestAddUnsortedScopesNotDirty(t *testing.T) {
	reg := newFakeRegistries()
	reg.publish(primaryURL,
		pv("pkg", "1.0.0", map[upm.DomainName]string{"dep": "1.0.0"}),
		pv("dep", "1.0.0", nil),
	)
	m, err := manifest.Parse([]byte(`{
  "dependencies": {"pkg": "1.0.0"},
  "scopedRegistries": [{"name": "example", "url": "` + primaryURL + `", "scopes": ["pkg", "dep"]}],
  "testables": ["pkg", "dep"]
}`))
	if err != nil {
		t.Fatal(err)
	}

	res, err := testRunner(reg).AddPackages(context.Background(), m, testEnv(""), refs(t, "pkg@1.0.0"), AddOptions{Testable: true})
	if err != nil {
		t.Fatalf("AddPackages: %v", err)
	}
	if res.Dirty {
		t.Error("re-adding a package whose scopes and testables are only unordered should not be dirty")
	}
	if got := res.Packages[0].Status; got != StatusExisted {
		t.Errorf("status = %s, want %s", got, StatusExisted)
	}
}

func TestAddStatus(t *testing.T) {
	reg := newFakeRegistries()
	reg.publish(primaryURL, pv("pkg", "1.0.0", nil), pv("pkg", "1.1.0", nil))
	r := testRunner(reg)

	base, err := r.AddPackages(context.Background(), manifest.New(), testEnv(""), refs(t, "pkg@1.0.0"), AddOptions{})
	if err != nil {
		t.Fatal(err)
	}

	existed, err := r.AddPackages(context.Background(), base.Manifest, testEnv(""), refs(t, "pkg@1.0.0"), AddOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if existed.Dirty || existed.Packages[0].Status != StatusExisted {
		t.Errorf("re-add: dirty=%v status=%s, want clean existed", existed.Dirty, existed.Packages[0].Status)
	}

	testable, err := r.AddPackages(context.Background(), base.Manifest, testEnv(""), refs(t, "pkg@1.0.0"), AddOptions{Testable: true})
	if err != nil {
		t.Fatal(err)
	}
	if !testable.Dirty {
		t.Error("adding a testable should mark the manifest dirty")
	}

	modified, err := r.AddPackages(context.Background(), base.Manifest, testEnv(""), refs(t, "pkg@1.1.0"), AddOptions{})
	if err != nil {
		t.Fatal(err)
	}
	got := modified.Packages[0]
	if !modified.Dirty || got.Status != StatusModified || got.Previous != "1.0.0" {
		t.Errorf("upgrade = %+v dirty=%v, want modified from 1.0.0", got, modified.Dirty)
	}
}

func TestAddPackageURL(t *testing.T) {
	reg := newFakeRegistries()
	const url = "git+https://github.com/example/pkg.git#v1"

	res, err := testRunner(reg).AddPackages(context.Background(), manifest.New(), testEnv(""), refs(t, "pkg@"+url), AddOptions{})
	if err != nil {
		t.Fatalf("AddPackages: %v", err)
	}
	if len(reg.calls) != 0 {
		t.Errorf("registry queried for a URL reference: %v", reg.calls)
	}
	if v, _ := res.Manifest.Dependency("pkg"); v != url {
		t.Errorf("dependency = %q, want %q", v, url)
	}
	sr, _ := res.Manifest.ScopedRegistry(primaryURL)
	if !slices.Equal(sr.Scopes, []upm.DomainName{"pkg"}) {
		t.Errorf("scopes = %v, want [pkg]", sr.Scopes)
	}
}

func TestAddBuiltInDependency(t *testing.T) {
	reg := newFakeRegistries()
	reg.publish(primaryURL, pv("pkg", "1.0.0", map[upm.DomainName]string{
		"com.unity.ugui": "1.0.0",
		"dep":            "1.0.0",
	}), pv("dep", "1.0.0", map[upm.DomainName]string{"com.unity.ugui": "1.0.0"}))
	builtins := &fakeBuiltIns{names: []upm.DomainName{"com.unity.ugui"}}

	r := NewRunner(reg, builtins, log.New(&bytes.Buffer{}))
	res, err := r.AddPackages(context.Background(), manifest.New(), testEnv(""), refs(t, "pkg"), AddOptions{})
	if err != nil {
		t.Fatalf("AddPackages: %v", err)
	}
	if builtins.calls != 1 {
		t.Errorf("built-ins listed %d times, want 1", builtins.calls)
	}
	sr, _ := res.Manifest.ScopedRegistry(primaryURL)
	if !slices.Equal(sr.Scopes, []upm.DomainName{"dep", "pkg"}) {
		t.Errorf("scopes = %v, want [dep pkg]", sr.Scopes)
	}
}

func TestAddLatest(t *testing.T) {
	reg := newFakeRegistries()
	reg.publish(primaryURL, pv("pkg", "1.0.0", nil), pv("pkg", "1.2.0", nil), pv("pkg", "2.0.0-preview.1", nil))

	res, err := testRunner(reg).AddPackages(context.Background(), manifest.New(), testEnv(""), refs(t, "pkg", "pkg@latest"), AddOptions{})
	if err != nil {
		t.Fatalf("AddPackages: %v", err)
	}
	for _, p := range res.Packages {
		if p.Version != "1.2.0" {
			t.Errorf("version = %s, want highest stable 1.2.0", p.Version)
		}
	}
	if res.Packages[1].Status != StatusExisted {
		t.Errorf("second add status = %s, want existed", res.Packages[1].Status)
	}
}

func TestAddCanceled(t *testing.T) {
	reg := newFakeRegistries()
	reg.publish(primaryURL, pv("pkg", "1.0.0", nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := testRunner(reg).AddPackages(ctx, manifest.New(), testEnv(""), refs(t, "pkg"), AddOptions{}); err != context.Canceled {
		t.Errorf("AddPackages error = %v, want context.Canceled", err)
	}
}

func TestRemovePackages(t *testing.T) {
	m := manifest.New()
	m, _, _ = m.SetDependency("a", "1.0.0")
	m, _, _ = m.SetDependency("b", "2.0.0")
	m = m.AddScopes("registry.example.com", primaryURL, "a")
	m = m.AddScopes("other.example.com", "https://other.example.com", "a", "b")

	out, removed, err := RemovePackages(m, []upm.DomainName{"a"})
	if err != nil {
		t.Fatalf("RemovePackages: %v", err)
	}
	if want := []RemovedPackage{{Name: "a", Version: "1.0.0"}}; !reflect.DeepEqual(removed, want) {
		t.Errorf("removed = %+v, want %+v", removed, want)
	}
	if _, ok := out.ScopedRegistry(primaryURL); ok {
		t.Error("scoped registry left without scopes should be pruned")
	}
	if sr, _ := out.ScopedRegistry("https://other.example.com"); !slices.Equal(sr.Scopes, []upm.DomainName{"b"}) {
		t.Errorf("other scopes = %v, want [b]", sr.Scopes)
	}
	if _, ok := m.Dependency("a"); !ok {
		t.Error("input manifest modified")
	}

	_, _, err = RemovePackages(m, []upm.DomainName{"b", "missing", "gone"})
	if !errs.Is(err, errs.ErrCodePackageNotFound) {
		t.Fatalf("RemovePackages error = %v, want PACKAGE_NOT_FOUND", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "missing") {
		t.Errorf("error %q should name the first missing package", msg)
	}
}

func TestRemoveMissingLeavesFile(t *testing.T) {
	const original = "{\n  \"dependencies\": {\n    \"other\": \"0.1.0\"\n  }\n}\n"
	dir := t.TempDir()
	writeManifest(t, dir, original)

	_, err := testRunner(newFakeRegistries()).Remove(context.Background(), testEnv(dir), []upm.DomainName{"pkg"})
	if !errs.Is(err, errs.ErrCodePackageNotFound) {
		t.Fatalf("Remove error = %v, want PACKAGE_NOT_FOUND", err)
	}
	if got := readManifest(t, dir); !bytes.Equal(got, []byte(original)) {
		t.Errorf("manifest changed:\n%s", got)
	}
}

func TestRemoveWritesManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{
  "dependencies": {
    "other": "0.1.0",
    "pkg": "1.0.0"
  },
  "scopedRegistries": [
    {
      "name": "registry.example.com",
      "url": "https://registry.example.com",
      "scopes": [
        "pkg"
      ]
    }
  ]
}
`)
	removed, err := testRunner(newFakeRegistries()).Remove(context.Background(), testEnv(dir), []upm.DomainName{"pkg"})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(removed) != 1 || removed[0].Version != "1.0.0" {
		t.Errorf("removed = %+v", removed)
	}
	want := "{\n  \"dependencies\": {\n    \"other\": \"0.1.0\"\n  }\n}\n"
	if got := string(readManifest(t, dir)); got != want {
		t.Errorf("manifest =\n%s\nwant\n%s", got, want)
	}
}

func TestNewEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, filepath.FromSlash(project.VersionFile))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "m_EditorVersion: 2022.3.10f1\nm_EditorVersionWithRevision: 2022.3.10f1 (ff3792e53c62)\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	env, err := NewEnv(dir, config.Default())
	if err != nil {
		t.Fatalf("NewEnv: %v", err)
	}
	if env.Primary.URL != upm.OpenUPMRegistryURL || env.Upstream.URL != upm.UnityRegistryURL || !env.UpstreamEnabled {
		t.Errorf("registries = %+v", env)
	}
	if env.EditorVersion.Parsed == nil || env.EditorVersion.Parsed.String() != "2022.3.10f1" {
		t.Errorf("editor = %+v", env.EditorVersion)
	}
	if got := env.sources(); len(got) != 2 {
		t.Errorf("sources = %v, want primary and upstream", got)
	}
}

func TestDependencies(t *testing.T) {
	reg := newFakeRegistries()
	reg.publish(primaryURL,
		pv("pkg", "1.0.0", map[upm.DomainName]string{"dep": "1.0.0"}),
		pv("pkg", "1.1.0", map[upm.DomainName]string{"dep": "1.1.0"}),
		pv("dep", "1.1.0", nil),
	)
	r := testRunner(reg)

	g, err := r.Dependencies(context.Background(), testEnv(""), refs(t, "pkg")[0], false)
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	var got []string
	for _, n := range g.Nodes() {
		got = append(got, n.Key.String()+" "+n.Kind.String())
	}
	want := []string{"pkg@1.1.0 resolved", "dep@1.1.0 unresolved"}
	if !slices.Equal(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
	if slices.Contains(reg.calls, primaryURL+" dep") {
		t.Error("shallow walk fetched a dependency")
	}

	if _, err := r.Dependencies(context.Background(), testEnv(""), refs(t, "pkg@file:../pkg")[0], true); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("URL reference error = %v, want INVALID_INPUT", err)
	}
}

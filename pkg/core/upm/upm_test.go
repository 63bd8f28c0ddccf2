package upm

import (
	"encoding/json"
	"testing"

	errs "github.com/openupm/openupm-cli/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDomainName(t *testing.T) {
	valid := []string{"pkg", "com.example.pkg", "com.unity.2d.sprite", "com.my-company.tool", "a1.b2"}
	for _, s := range valid {
		assert.True(t, IsDomainName(s), s)
	}
	invalid := []string{"", "Com.Example", "com..example", ".com", "com.", "com.-a", "com.a-", "com.a--b", "com.ex ample", "com/example"}
	for _, s := range invalid {
		assert.False(t, IsDomainName(s), s)
	}
}

func TestParseDomainName(t *testing.T) {
	n, err := ParseDomainName("com.example.pkg")
	require.NoError(t, err)
	assert.Equal(t, DomainName("com.example.pkg"), n)

	_, err = ParseDomainName("Not Valid")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidPackage))
}

func TestSemanticVersion(t *testing.T) {
	for _, s := range []string{"1.0.0", "0.1.2-preview.3", "2.0.0+build.5"} {
		assert.True(t, IsSemanticVersion(s), s)
	}
	for _, s := range []string{"1.0", "v1.0.0", "latest", ""} {
		assert.False(t, IsSemanticVersion(s), s)
	}

	_, err := ParseSemanticVersion("1.0")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput))
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, -1, CompareVersions("1.0.0-preview.1", "1.0.0"))
	assert.Equal(t, -1, CompareVersions("1.0.0-preview.2", "1.0.0-preview.10"))
	assert.Equal(t, 1, CompareVersions("1.10.0", "1.9.0"))
	assert.Equal(t, 0, CompareVersions("1.0.0", "1.0.0"))
	assert.Equal(t, -1, CompareVersions("garbage", "0.0.1"))

	vs := []SemanticVersion{"1.10.0", "1.2.0", "1.2.0-pre", "0.9.0"}
	SortVersions(vs)
	assert.Equal(t, []SemanticVersion{"0.9.0", "1.2.0-pre", "1.2.0", "1.10.0"}, vs)
}

func TestIsPackageUrl(t *testing.T) {
	for _, s := range []string{
		"https://github.com/example/pkg.git",
		"git@github.com:example/pkg.git",
		"git+ssh://git@github.com/example/pkg.git",
		"file:../local-pkg",
	} {
		assert.True(t, IsPackageUrl(s), s)
	}
	for _, s := range []string{"1.0.0", "latest", ""} {
		assert.False(t, IsPackageUrl(s), s)
	}
}

func TestParsePackageReference(t *testing.T) {
	tests := []struct {
		in      string
		name    DomainName
		version string
		isURL   bool
	}{
		{"com.example.pkg", "com.example.pkg", "", false},
		{"com.example.pkg@1.2.3", "com.example.pkg", "1.2.3", false},
		{"com.example.pkg@latest", "com.example.pkg", "latest", false},
		{"com.example.pkg@git@github.com:ex/pkg.git", "com.example.pkg", "git@github.com:ex/pkg.git", true},
		{"com.example.pkg@file:../pkg", "com.example.pkg", "file:../pkg", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ref, err := ParsePackageReference(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.name, ref.Name)
			assert.Equal(t, tt.version, ref.Version)
			assert.Equal(t, tt.isURL, ref.IsURL())
			assert.Equal(t, tt.in, ref.String())
		})
	}

	for _, bad := range []string{"", "@1.0.0", "Bad Name@1.0.0", "com.example.pkg@"} {
		_, err := ParsePackageReference(bad)
		assert.Error(t, err, bad)
	}
}

const samplePackument = `{
  "name": "com.example.pkg",
  "versions": {
    "1.0.0": {"name": "com.example.pkg", "version": "1.0.0", "unity": "2019.4"},
    "1.1.0": {"name": "com.example.pkg", "version": "1.1.0", "dependencies": {"com.example.dep": "2.0.0"}},
    "2.0.0-preview.1": {"name": "com.example.pkg", "version": "2.0.0-preview.1"}
  },
  "dist-tags": {"latest": "1.0.0", "next": "2.0.0-preview.1"}
}`

func TestPackumentDecode(t *testing.T) {
	var p Packument
	require.NoError(t, json.Unmarshal([]byte(samplePackument), &p))

	assert.Equal(t, DomainName("com.example.pkg"), p.Name)
	assert.Equal(t, []SemanticVersion{"1.0.0", "1.1.0", "2.0.0-preview.1"}, p.VersionList())

	v, ok := p.Version("1.1.0")
	require.True(t, ok)
	assert.Equal(t, map[DomainName]string{"com.example.dep": "2.0.0"}, v.Dependencies)

	v, _ = p.Version("1.0.0")
	assert.Equal(t, "2019.4", v.Unity)
}

func TestResolveVersion(t *testing.T) {
	var p Packument
	require.NoError(t, json.Unmarshal([]byte(samplePackument), &p))

	tests := []struct {
		requested string
		want      SemanticVersion
	}{
		{"", "1.0.0"},
		{"latest", "1.0.0"},
		{"stable", "1.0.0"},
		{"next", "2.0.0-preview.1"},
		{"1.1.0", "1.1.0"},
	}
	for _, tt := range tests {
		got, err := p.ResolveVersion(tt.requested)
		require.NoError(t, err, tt.requested)
		assert.Equal(t, tt.want, got, tt.requested)
	}

	_, err := p.ResolveVersion("9.9.9")
	var vnf *errs.VersionNotFoundError
	require.ErrorAs(t, err, &vnf)
	assert.Equal(t, []string{"1.0.0", "1.1.0", "2.0.0-preview.1"}, vnf.Available)
	assert.True(t, errs.Is(err, errs.ErrCodeVersionNotFound))
}

func TestLatestWithoutDistTags(t *testing.T) {
	p := Packument{
		Name: "com.example.pkg",
		Versions: map[SemanticVersion]PackumentVersion{
			"1.0.0":     {},
			"1.2.0":     {},
			"2.0.0-pre": {},
		},
	}
	v, ok := p.Latest()
	require.True(t, ok)
	assert.Equal(t, SemanticVersion("1.2.0"), v)

	onlyPre := Packument{Versions: map[SemanticVersion]PackumentVersion{"0.1.0-a": {}, "0.2.0-a": {}}}
	v, ok = onlyPre.Latest()
	require.True(t, ok)
	assert.Equal(t, SemanticVersion("0.2.0-a"), v)

	empty := Packument{Name: "com.example.empty"}
	_, ok = empty.Latest()
	assert.False(t, ok)
	_, err := empty.ResolveVersion("")
	assert.True(t, errs.Is(err, errs.ErrCodeVersionNotFound))
}

func TestRegistry(t *testing.T) {
	auth := &Auth{Token: "secret"}

	openupm := NewRegistry("https://package.openupm.com/", auth)
	assert.Equal(t, OpenUPMRegistryURL, openupm.URL)
	assert.True(t, openupm.IsWellKnown())
	assert.Nil(t, openupm.Credentials())

	unity := NewRegistry(UnityRegistryURL, auth)
	assert.Nil(t, unity.Credentials())

	private := NewRegistry("https://npm.example.com/registry", auth)
	assert.False(t, private.IsWellKnown())
	assert.Same(t, auth, private.Credentials())
	assert.Equal(t, "npm.example.com", private.ScopeName())
	assert.Equal(t, "package.openupm.com", openupm.ScopeName())
}

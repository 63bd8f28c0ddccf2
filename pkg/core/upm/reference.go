package upm

import (
	"strings"

	errs "github.com/openupm/openupm-cli/pkg/errors"
)

// Version tags accepted in place of a concrete version.
const (
	TagLatest = "latest"
	TagStable = "stable"
)

// PackageReference is a package name with an optional version, as typed on
// the command line: "com.example.pkg", "com.example.pkg@1.2.0" or
// "com.example.pkg@https://github.com/example/pkg.git".
type PackageReference struct {
	Name DomainName
	// Version is empty, a tag, a SemanticVersion or a PackageUrl.
	Version string
}

// ParsePackageReference splits s at the first "@" and validates the name.
func ParsePackageReference(s string) (PackageReference, error) {
	name, version, _ := strings.Cut(strings.TrimSpace(s), "@")
	n, err := ParseDomainName(name)
	if err != nil {
		return PackageReference{}, err
	}
	if strings.HasSuffix(s, "@") {
		return PackageReference{}, errs.New(errs.ErrCodeInvalidInput, "%q has an empty version", s)
	}
	return PackageReference{Name: n, Version: version}, nil
}

// IsURL reports whether the reference pins a PackageUrl.
func (r PackageReference) IsURL() bool { return IsPackageUrl(r.Version) }

// String formats the reference back to name[@version].
func (r PackageReference) String() string {
	if r.Version == "" {
		return string(r.Name)
	}
	return string(r.Name) + "@" + r.Version
}

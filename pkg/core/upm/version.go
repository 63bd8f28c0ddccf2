package upm

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	errs "github.com/openupm/openupm-cli/pkg/errors"
)

// SemanticVersion is a major.minor.patch[-prerelease][+build] string.
type SemanticVersion string

// ParseSemanticVersion validates s as a strict semantic version. A leading
// "v" or missing components are rejected.
func ParseSemanticVersion(s string) (SemanticVersion, error) {
	if _, err := semver.StrictNewVersion(s); err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidInput, err, "%q is not a semantic version", s)
	}
	return SemanticVersion(s), nil
}

// IsSemanticVersion reports whether s parses as a strict semantic version.
func IsSemanticVersion(s string) bool {
	_, err := semver.StrictNewVersion(s)
	return err == nil
}

// String implements fmt.Stringer.
func (v SemanticVersion) String() string { return string(v) }

// CompareVersions orders a and b by semver precedence. Strings that are not
// semantic versions sort before all valid ones and lexically among
// themselves.
func CompareVersions(a, b SemanticVersion) int {
	va, errA := semver.StrictNewVersion(string(a))
	vb, errB := semver.StrictNewVersion(string(b))
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(string(a), string(b))
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return va.Compare(vb)
}

// SortVersions sorts vs ascending by semver precedence.
func SortVersions(vs []SemanticVersion) {
	slices.SortStableFunc(vs, CompareVersions)
}

// isStable reports whether v is a valid release version without prerelease.
func isStable(v SemanticVersion) bool {
	sv, err := semver.StrictNewVersion(string(v))
	return err == nil && sv.Prerelease() == ""
}

// PackageUrl is a git, http or file locator used in place of a version.
type PackageUrl string

var packageUrlPrefixes = []string{"git", "http", "file"}

// IsPackageUrl reports whether s locates a package directly instead of
// naming a registry version.
func IsPackageUrl(s string) bool {
	for _, p := range packageUrlPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

package upm

import (
	"regexp"

	errs "github.com/openupm/openupm-cli/pkg/errors"
)

// DomainName is a reverse-DNS package identifier such as
// "com.unity.textmeshpro".
type DomainName string

var domainNamePattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*(?:\.[a-z0-9]+(?:-[a-z0-9]+)*)*$`)

// IsDomainName reports whether s is lowercase dot-separated segments with
// no leading, trailing or doubled hyphens inside a segment.
func IsDomainName(s string) bool {
	return len(s) <= 214 && domainNamePattern.MatchString(s)
}

// ParseDomainName validates s as a DomainName.
func ParseDomainName(s string) (DomainName, error) {
	if !IsDomainName(s) {
		return "", errs.New(errs.ErrCodeInvalidPackage, "%q is not a valid package name", s)
	}
	return DomainName(s), nil
}

// String implements fmt.Stringer.
func (n DomainName) String() string { return string(n) }

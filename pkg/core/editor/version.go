// Package editor models calendar-versioned editor releases such as
// "2022.2.1f2" and their total ordering.
//
// A Version is a tuple prefix: {major, minor} optionally extended with patch,
// then {flag, build}, then {locale, localeBuild}. Only versions carrying the
// full {major, minor, patch, flag, build} prefix are release versions (see
// [Version.IsRelease]); shorter forms still parse and compare, with missing
// fields sorting as their minimum.
package editor

import (
	"cmp"
	"regexp"
	"strconv"
)

// Release flags.
const (
	FlagAlpha   = "a"
	FlagBeta    = "b"
	FlagFinal   = "f"
	FlagChina   = "c"
	LocaleChina = "c"
)

// Version is a parsed editor version. The zero value is not meaningful; obtain
// values through [Parse] or [MustParse].
type Version struct {
	Major int
	Minor int

	// Patch is nil for "major.minor" versions.
	Patch *int

	// Flag and Build are set together, only when Patch is set.
	Flag  string
	Build *int

	// Locale and LocaleBuild are set together, only when Flag is set.
	Locale      string
	LocaleBuild *int
}

var versionRe = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+)(?:([abfc])(\d+)(?:(c)(\d+))?)?)?$`)

// Parse parses s into a Version. It reports false for any malformed input
// instead of returning an error, because an unknown editor version is a
// valid, handled state for callers.
func Parse(s string) (Version, bool) {
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return Version{}, false
	}

	var v Version
	var ok bool
	if v.Major, ok = atoi(m[1]); !ok {
		return Version{}, false
	}
	if v.Minor, ok = atoi(m[2]); !ok {
		return Version{}, false
	}
	if m[3] == "" {
		return v, true
	}
	patch, ok := atoi(m[3])
	if !ok {
		return Version{}, false
	}
	v.Patch = &patch
	if m[4] == "" {
		return v, true
	}
	build, ok := atoi(m[5])
	if !ok {
		return Version{}, false
	}
	v.Flag, v.Build = m[4], &build
	if m[6] == "" {
		return v, true
	}
	localeBuild, ok := atoi(m[7])
	if !ok {
		return Version{}, false
	}
	v.Locale, v.LocaleBuild = m[6], &localeBuild
	return v, true
}

// MustParse is like Parse but panics on malformed input. Intended for
// constants and tests.
func MustParse(s string) Version {
	v, ok := Parse(s)
	if !ok {
		panic("editor: malformed version " + strconv.Quote(s))
	}
	return v
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// IsRelease reports whether v carries the full {major, minor, patch, flag,
// build} prefix. Only release versions identify an installable editor.
func (v Version) IsRelease() bool {
	return v.Patch != nil && v.Flag != "" && v.Build != nil
}

// String formats v; it is the lossless inverse of Parse.
func (v Version) String() string {
	s := strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
	if v.Patch == nil {
		return s
	}
	s += "." + strconv.Itoa(*v.Patch)
	if v.Flag == "" || v.Build == nil {
		return s
	}
	s += v.Flag + strconv.Itoa(*v.Build)
	if v.Locale == "" || v.LocaleBuild == nil {
		return s
	}
	return s + v.Locale + strconv.Itoa(*v.LocaleBuild)
}

func flagRank(flag string) int {
	switch flag {
	case FlagBeta:
		return 1
	case FlagFinal:
		return 2
	default:
		return 0
	}
}

func localeRank(locale string) int {
	if locale == LocaleChina {
		return 1
	}
	return 0
}

func orZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// key returns the ordering tuple. The build number appears twice, matching
// the historical ordering of the ecosystem; it does not change the result.
func (v Version) key() [8]int {
	return [8]int{
		v.Major,
		v.Minor,
		orZero(v.Patch),
		flagRank(v.Flag),
		orZero(v.Build),
		orZero(v.Build),
		localeRank(v.Locale),
		orZero(v.LocaleBuild),
	}
}

// Compare returns -1, 0 or 1 as a sorts before, equal to or after b.
func Compare(a, b Version) int {
	ka, kb := a.key(), b.key()
	for i := range ka {
		if c := cmp.Compare(ka[i], kb[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Compare is the method form of the package-level Compare.
func (v Version) Compare(o Version) int { return Compare(v, o) }

// Package compat decides whether a package version can be used with a
// project's editor.
//
// A package declares its minimum editor in two packument fields: "unity"
// holds major.minor and "unityRelease" optionally narrows it to a patch
// release. Packages that declare nothing are compatible with every editor.
package compat

import (
	"fmt"
	"strings"

	"github.com/openupm/openupm-cli/pkg/core/editor"
	"github.com/openupm/openupm-cli/pkg/core/upm"
	errs "github.com/openupm/openupm-cli/pkg/errors"
)

// TargetEditorVersion extracts the minimum editor version a package version
// declares. It returns (nil, nil) when there is no declaration and a
// MALFORMED_PACKUMENT error when the declaration does not parse.
func TargetEditorVersion(pv upm.PackumentVersion) (*editor.Version, error) {
	unity := strings.TrimSpace(pv.Unity)
	if unity == "" {
		return nil, nil
	}
	raw := unity
	if release := strings.TrimSpace(pv.UnityRelease); release != "" {
		raw = unity + "." + release
	}
	v, ok := editor.Parse(raw)
	if !ok {
		return nil, errs.New(errs.ErrCodeMalformedPackument,
			"%s@%s declares an unparsable editor version %q", pv.Name, pv.Version, raw)
	}
	return &v, nil
}

// Outcome is the result category of a compatibility check.
type Outcome int

const (
	// Compatible means the project editor meets the declared minimum, or
	// nothing is declared.
	Compatible Outcome = iota
	// Incompatible means the project editor is older than Target.
	Incompatible
	// CheckFailed means the declaration could not be parsed.
	CheckFailed
	// Unknown means the project editor version is not known, so no check
	// was made.
	Unknown
)

func (o Outcome) String() string {
	switch o {
	case Compatible:
		return "compatible"
	case Incompatible:
		return "incompatible"
	case CheckFailed:
		return "check failed"
	case Unknown:
		return "unknown"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result is the outcome of Check with its supporting detail.
type Result struct {
	Outcome Outcome
	Target  *editor.Version // declared minimum, when one parsed
	Err     error           // set for CheckFailed
}

// Check compares a package version's declared minimum editor against the
// project's editor. projectEditor is nil when the project's version string
// did not parse.
func Check(pv upm.PackumentVersion, projectEditor *editor.Version) Result {
	if projectEditor == nil {
		return Result{Outcome: Unknown}
	}
	target, err := TargetEditorVersion(pv)
	if err != nil {
		return Result{Outcome: CheckFailed, Err: err}
	}
	if target == nil {
		return Result{Outcome: Compatible}
	}
	if editor.Compare(*projectEditor, *target) >= 0 {
		return Result{Outcome: Compatible, Target: target}
	}
	return Result{Outcome: Incompatible, Target: target}
}

// Error converts a fatal result into an error; Compatible and Unknown
// results return nil.
func (r Result) Error(pv upm.PackumentVersion, projectEditor *editor.Version) error {
	switch r.Outcome {
	case Incompatible:
		return errs.New(errs.ErrCodeIncompatible,
			"%s@%s requires editor %s or newer, project uses %s",
			pv.Name, pv.Version, r.Target, projectEditor)
	case CheckFailed:
		return errs.Wrap(errs.ErrCodeCompatCheckFailed, r.Err,
			"could not check editor compatibility of %s@%s", pv.Name, pv.Version)
	}
	return nil
}

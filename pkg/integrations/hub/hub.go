// Package hub finds packages bundled with locally installed editors.
//
// Editors installed through the Hub live under a per-platform root, one
// directory per version. Each ships its built-in packages as directories
// under PackageManager/BuiltInPackages.
package hub

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/openupm/openupm-cli/pkg/core/editor"
	"github.com/openupm/openupm-cli/pkg/core/upm"
	errs "github.com/openupm/openupm-cli/pkg/errors"
)

// Lister lists built-in packages by scanning installed editors. It
// implements deps.BuiltInLister.
type Lister struct {
	editorsDir string
	goos       string
}

// New creates a Lister. An empty editorsDir selects the Hub's default
// install location for the current platform.
func New(editorsDir string) *Lister {
	return &Lister{editorsDir: editorsDir, goos: runtime.GOOS}
}

// EditorsDir returns the directory holding one subdirectory per installed
// editor version.
func (l *Lister) EditorsDir() (string, error) {
	if l.editorsDir != "" {
		return l.editorsDir, nil
	}
	switch l.goos {
	case "windows":
		pf := os.Getenv("ProgramFiles")
		if pf == "" {
			pf = `C:\Program Files`
		}
		return filepath.Join(pf, "Unity", "Hub", "Editor"), nil
	case "darwin":
		return "/Applications/Unity/Hub/Editor", nil
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errs.Wrap(errs.ErrCodeInternal, err, "locate home directory")
		}
		return filepath.Join(home, "Unity", "Hub", "Editor"), nil
	}
	return "", errs.New(errs.ErrCodeUnsupported, "built-in packages cannot be listed on %s", l.goos)
}

// BuiltInDir returns the built-in package directory of an editor version.
func (l *Lister) BuiltInDir(v editor.Version) (string, error) {
	root, err := l.EditorsDir()
	if err != nil {
		return "", err
	}
	install := filepath.Join(root, v.String())
	if l.goos == "darwin" {
		return filepath.Join(install, "Unity.app", "Contents", "Resources", "PackageManager", "BuiltInPackages"), nil
	}
	return filepath.Join(install, "Editor", "Data", "Resources", "PackageManager", "BuiltInPackages"), nil
}

// ListBuiltInPackages returns the sorted names of the packages bundled with
// editor v. It fails with EDITOR_NOT_INSTALLED when v is not installed.
func (l *Lister) ListBuiltInPackages(ctx context.Context, v editor.Version) ([]upm.DomainName, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := l.BuiltInDir(v)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, errs.New(errs.ErrCodeEditorNotInstalled, "editor %s is not installed (looked in %s)", v, dir)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "read %s", dir)
	}

	var names []upm.DomainName
	for _, e := range entries {
		if e.IsDir() && upm.IsDomainName(e.Name()) {
			names = append(names, upm.DomainName(e.Name()))
		}
	}
	slices.Sort(names)
	return names, nil
}

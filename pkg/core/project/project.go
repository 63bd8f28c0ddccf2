// Package project reads project-level settings that are not part of the
// package manifest.
package project

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openupm/openupm-cli/pkg/core/editor"
	errs "github.com/openupm/openupm-cli/pkg/errors"
)

// VersionFile is the project-relative path of the editor version file.
const VersionFile = "ProjectSettings/ProjectVersion.txt"

// EditorVersion is the editor a project was last opened with.
type EditorVersion struct {
	// Raw is the version string exactly as written in the project.
	Raw string
	// Parsed is nil when Raw is not a recognizable editor version. Such
	// projects skip compatibility checks.
	Parsed *editor.Version
}

// String returns the raw version.
func (v EditorVersion) String() string { return v.Raw }

type versionFile struct {
	EditorVersion string `yaml:"m_EditorVersion"`
}

// LoadEditorVersion reads the editor version of the project rooted at dir.
func LoadEditorVersion(dir string) (EditorVersion, error) {
	path := filepath.Join(dir, filepath.FromSlash(VersionFile))
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return EditorVersion{}, errs.New(errs.ErrCodeInvalidInput, "%s not found; is %s a project directory?", VersionFile, dir)
	}
	if err != nil {
		return EditorVersion{}, errs.Wrap(errs.ErrCodeInternal, err, "read %s", path)
	}
	return ParseEditorVersion(data)
}

// ParseEditorVersion decodes the contents of ProjectVersion.txt.
func ParseEditorVersion(data []byte) (EditorVersion, error) {
	var f versionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return EditorVersion{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "malformed %s", VersionFile)
	}
	raw := strings.TrimSpace(f.EditorVersion)
	if raw == "" {
		return EditorVersion{}, errs.New(errs.ErrCodeInvalidInput, "%s has no m_EditorVersion", VersionFile)
	}
	ev := EditorVersion{Raw: raw}
	if v, ok := editor.Parse(raw); ok {
		ev.Parsed = &v
	}
	return ev, nil
}

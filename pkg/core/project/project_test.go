package project

import (
	"os"
	"path/filepath"
	"testing"

	errs "github.com/openupm/openupm-cli/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEditorVersion(t *testing.T) {
	v, err := ParseEditorVersion([]byte("m_EditorVersion: 2022.2.1f2\nm_EditorVersionWithRevision: 2022.2.1f2 (a1b2c3)\n"))
	require.NoError(t, err)
	assert.Equal(t, "2022.2.1f2", v.Raw)
	require.NotNil(t, v.Parsed)
	assert.True(t, v.Parsed.IsRelease())

	v, err = ParseEditorVersion([]byte("m_EditorVersion: 2023.3.0-custom\n"))
	require.NoError(t, err)
	assert.Equal(t, "2023.3.0-custom", v.String())
	assert.Nil(t, v.Parsed, "unrecognized versions are kept raw")
}

func TestParseEditorVersionErrors(t *testing.T) {
	for _, bad := range []string{"", "m_Other: 1\n", "m_EditorVersion: [unterminated\n"} {
		_, err := ParseEditorVersion([]byte(bad))
		assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput), "%q: %v", bad, err)
	}
}

func TestLoadEditorVersion(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadEditorVersion(dir)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ProjectSettings"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, VersionFile), []byte("m_EditorVersion: 2019.4.40f1\n"), 0o644))

	v, err := LoadEditorVersion(dir)
	require.NoError(t, err)
	assert.Equal(t, "2019.4.40f1", v.Raw)
	require.NotNil(t, v.Parsed)
}

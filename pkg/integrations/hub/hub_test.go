package hub

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/openupm/openupm-cli/pkg/core/editor"
	"github.com/openupm/openupm-cli/pkg/core/upm"
	errs "github.com/openupm/openupm-cli/pkg/errors"
)

func TestListBuiltInPackages(t *testing.T) {
	root := t.TempDir()
	l := &Lister{editorsDir: root, goos: "linux"}
	v := editor.MustParse("2022.2.1f2")

	dir, err := l.BuiltInDir(v)
	if err != nil {
		t.Fatalf("BuiltInDir: %v", err)
	}
	want := filepath.Join(root, "2022.2.1f2", "Editor", "Data", "Resources", "PackageManager", "BuiltInPackages")
	if dir != want {
		t.Errorf("BuiltInDir = %q, want %q", dir, want)
	}

	for _, name := range []string{"com.unity.ugui", "com.unity.modules.audio", "Not A Package"} {
		if err := os.MkdirAll(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "com.unity.file"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	names, err := l.ListBuiltInPackages(context.Background(), v)
	if err != nil {
		t.Fatalf("ListBuiltInPackages: %v", err)
	}
	if wantNames := []upm.DomainName{"com.unity.modules.audio", "com.unity.ugui"}; !slices.Equal(names, wantNames) {
		t.Errorf("names = %v, want %v", names, wantNames)
	}
}

func TestListBuiltInPackagesNotInstalled(t *testing.T) {
	l := &Lister{editorsDir: t.TempDir(), goos: "linux"}
	_, err := l.ListBuiltInPackages(context.Background(), editor.MustParse("2019.4.40f1"))
	if !errs.Is(err, errs.ErrCodeEditorNotInstalled) {
		t.Errorf("err = %v, want EDITOR_NOT_INSTALLED", err)
	}
}

func TestBuiltInDir(t *testing.T) {
	tests := []struct {
		goos string
		root string
		want []string
	}{
		{"darwin", "/Applications/Unity/Hub/Editor", []string{"2021.3.0f1", "Unity.app", "Contents", "Resources", "PackageManager", "BuiltInPackages"}},
		{"windows", `C:\Program Files\Unity\Hub\Editor`, []string{"2021.3.0f1", "Editor", "Data", "Resources", "PackageManager", "BuiltInPackages"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			l := &Lister{editorsDir: tt.root, goos: tt.goos}
			dir, err := l.BuiltInDir(editor.MustParse("2021.3.0f1"))
			if err != nil {
				t.Fatalf("BuiltInDir: %v", err)
			}
			if want := filepath.Join(append([]string{tt.root}, tt.want...)...); dir != want {
				t.Errorf("BuiltInDir = %q, want %q", dir, want)
			}
		})
	}
}

func TestUnsupportedPlatform(t *testing.T) {
	l := &Lister{goos: "plan9"}
	_, err := l.ListBuiltInPackages(context.Background(), editor.MustParse("2021.3.0f1"))
	if !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("err = %v, want UNSUPPORTED", err)
	}
}

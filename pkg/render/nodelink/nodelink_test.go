package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/openupm/openupm-cli/pkg/core/deps"
	"github.com/openupm/openupm-cli/pkg/core/upm"
	errs "github.com/openupm/openupm-cli/pkg/errors"
)

const registry = "https://package.openupm.com"

func key(name, version string) deps.Key {
	return deps.Key{Name: upm.DomainName(name), Version: upm.SemanticVersion(version)}
}

// diamond builds root -> {a, b}, a -> c, b -> c, b -> missing, plus a
// built-in and a URL pin on root.
func diamond() *deps.Graph {
	g := deps.NewGraph(key("root", "1.0.0"))
	g.AddResolved(key("root", "1.0.0"), registry, map[upm.DomainName]string{
		"a":              "1.0.0",
		"b":              "2.0.0",
		"com.unity.ugui": "1.0.0",
		"local":          "file:../local",
	})
	g.AddResolved(key("a", "1.0.0"), registry, map[upm.DomainName]string{"c": "1.0.0"})
	g.AddResolved(key("b", "2.0.0"), registry, map[upm.DomainName]string{"c": "1.0.0", "missing": "0.1.0"})
	g.AddResolved(key("com.unity.ugui", "1.0.0"), deps.BuiltIn, nil)
	g.AddResolved(key("c", "1.0.0"), registry, nil)
	g.AddFailed(key("missing", "0.1.0"), map[string]error{
		registry: errs.New(errs.ErrCodePackageNotFound, "missing not found"),
	})
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(diamond(), Options{})

	for _, want := range []string{
		"digraph G {",
		`"root@1.0.0" [label="root@1.0.0"];`,
		`"com.unity.ugui@1.0.0" [label="com.unity.ugui@1.0.0", fillcolor=lightgrey];`,
		`"missing@0.1.0" [label="missing@0.1.0", style="rounded,filled,dashed", color=red, fillcolor=mistyrose];`,
		`"root@1.0.0" -> "a@1.0.0";`,
		`"a@1.0.0" -> "c@1.0.0";`,
		`"b@2.0.0" -> "c@1.0.0";`,
		`"b@2.0.0" -> "missing@0.1.0";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "local") {
		t.Error("URL-pinned dependency should not be drawn")
	}
	if n := strings.Count(dot, `"c@1.0.0" [`); n != 1 {
		t.Errorf("c declared %d times, want 1", n)
	}
	if dot != ToDOT(diamond(), Options{}) {
		t.Error("ToDOT output is not stable")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(diamond(), Options{Detailed: true})
	if !strings.Contains(dot, `label="root@1.0.0\nhttps://package.openupm.com"`) {
		t.Errorf("detailed label should carry the source:\n%s", dot)
	}
	if !strings.Contains(dot, `missing@0.1.0\nhttps://package.openupm.com: missing not found`) {
		t.Errorf("detailed label should carry failure reasons:\n%s", dot)
	}
}

func TestToTree(t *testing.T) {
	got := ToTree(diamond(), Options{})
	want := `root@1.0.0
├── a@1.0.0
│   └── c@1.0.0
├── b@2.0.0
│   ├── c@1.0.0
│   └── missing@0.1.0 [not found]
└── com.unity.ugui@1.0.0
`
	if got != want {
		t.Errorf("ToTree =\n%s\nwant\n%s", got, want)
	}
}

func TestToTreeShallow(t *testing.T) {
	g := deps.NewGraph(key("root", "1.0.0"))
	g.AddResolved(key("root", "1.0.0"), registry, map[upm.DomainName]string{"a": "1.0.0"})
	g.AddUnresolved(key("a", "1.0.0"))

	got := ToTree(g, Options{Detailed: true})
	want := "root@1.0.0 [https://package.openupm.com]\n└── a@1.0.0 [not resolved]\n"
	if got != want {
		t.Errorf("ToTree =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(diamond(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(svg)), "<") || !strings.Contains(string(svg), `viewBox="0 0 `) {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00"><g/></svg>`)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20"><g/></svg>`
	if got := string(normalizeViewBox(in)); got != want {
		t.Errorf("normalizeViewBox = %s, want %s", got, want)
	}
	if got := string(normalizeViewBox([]byte("<svg/>"))); got != "<svg/>" {
		t.Errorf("normalizeViewBox without viewBox = %s", got)
	}
}

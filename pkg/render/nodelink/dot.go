package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/openupm/openupm-cli/pkg/core/deps"
	"github.com/openupm/openupm-cli/pkg/core/upm"
	errs "github.com/openupm/openupm-cli/pkg/errors"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed adds the resolution source, or the failure reason for each
	// registry, to node labels. When false only name@version is shown.
	Detailed bool
}

// ToDOT converts a dependency graph to Graphviz DOT format. Nodes appear in
// graph insertion order so the output is stable for a given graph.
func ToDOT(g *deps.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	nodes := g.Nodes()
	for _, n := range nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Key.String(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		for _, dep := range edges(g, n) {
			fmt.Fprintf(&buf, "  %q -> %q;\n", n.Key.String(), dep.String())
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// edges returns the dependency keys of n present in g, by name.
func edges(g *deps.Graph, n *deps.Node) []deps.Key {
	var out []deps.Key
	for name, v := range n.Dependencies {
		key := deps.Key{Name: name, Version: upm.SemanticVersion(v)}
		if g.Has(key) {
			out = append(out, key)
		}
	}
	slices.SortFunc(out, func(a, b deps.Key) int { return strings.Compare(string(a.Name), string(b.Name)) })
	return out
}

func fmtLabel(n *deps.Node, detailed bool) string {
	label := n.Key.String()
	if !detailed {
		return label
	}
	switch n.Kind {
	case deps.KindResolved:
		return label + "\n" + n.Source
	case deps.KindFailed:
		return label + "\n" + strings.Join(failureLines(n), "\n")
	case deps.KindUnresolved:
		return label + "\n(not resolved)"
	}
	return label
}

// failureLines formats one "registry: reason" line per registry tried,
// ordered by registry URL.
func failureLines(n *deps.Node) []string {
	urls := make([]string, 0, len(n.Errors))
	for url := range n.Errors {
		urls = append(urls, url)
	}
	slices.Sort(urls)
	lines := make([]string, len(urls))
	for i, url := range urls {
		lines[i] = fmt.Sprintf("%s: %s", url, errs.UserMessage(n.Errors[url]))
	}
	return lines
}

func fmtAttrs(n *deps.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.Kind == deps.KindFailed:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "color=red", "fillcolor=mistyrose")
	case n.Kind == deps.KindUnresolved:
		attrs = append(attrs, "style=\"rounded,dotted\"")
	case n.Source == deps.BuiltIn:
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "render SVG")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales from a
// zero origin with explicit width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

package nodelink

import (
	"strings"

	"github.com/openupm/openupm-cli/pkg/core/deps"
)

// ToTree renders g as an indented tree rooted at the graph's root. A node
// reachable through several parents is expanded once; later occurrences
// are marked with "(*)".
func ToTree(g *deps.Graph, opts Options) string {
	var b strings.Builder
	expanded := map[deps.Key]bool{}

	var walk func(key deps.Key, prefix string, last, root bool)
	walk = func(key deps.Key, prefix string, last, root bool) {
		n, ok := g.Node(key)
		if !ok {
			return
		}
		branch, next := "", ""
		if !root {
			branch, next = "├── ", prefix+"│   "
			if last {
				branch, next = "└── ", prefix+"    "
			}
		}
		b.WriteString(prefix + branch + treeLabel(n, opts.Detailed))

		if expanded[key] && len(n.Dependencies) > 0 {
			b.WriteString(" (*)\n")
			return
		}
		b.WriteString("\n")
		expanded[key] = true

		if n.Kind == deps.KindFailed && opts.Detailed {
			for _, line := range failureLines(n) {
				b.WriteString(next + "  ! " + line + "\n")
			}
		}
		children := edges(g, n)
		for i, child := range children {
			walk(child, next, i == len(children)-1, false)
		}
	}
	walk(g.Root(), "", true, true)
	return b.String()
}

func treeLabel(n *deps.Node, detailed bool) string {
	label := n.Key.String()
	switch n.Kind {
	case deps.KindFailed:
		return label + " [not found]"
	case deps.KindUnresolved:
		return label + " [not resolved]"
	}
	if detailed {
		return label + " [" + n.Source + "]"
	}
	return label
}

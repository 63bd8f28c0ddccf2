// Package nodelink renders dependency graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Or print it as a text tree rooted at the requested package:
//
//	fmt.Print(nodelink.ToTree(g, nodelink.Options{Detailed: true}))
//
// # Node styles
//
// Nodes are drawn by resolution state:
//
//   - resolved from a registry: white box
//   - built-in: grey box
//   - failed: red dashed box
//   - unresolved (shallow walks): dotted box
//
// With Options.Detailed, labels also carry the resolution source or the
// per-registry failure reasons.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink

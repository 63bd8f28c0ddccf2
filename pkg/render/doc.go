// Package render turns dependency graphs into output formats.
//
// The [nodelink] subpackage draws a resolved graph as a directed node-link
// diagram (DOT or SVG) or as an indented text tree.
//
// [nodelink]: github.com/openupm/openupm-cli/pkg/render/nodelink
package render

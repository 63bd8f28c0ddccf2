package deps

import (
	"maps"

	"github.com/openupm/openupm-cli/pkg/core/upm"
)

// BuiltIn is the Source of packages supplied by the installed editor.
const BuiltIn = "built-in"

// Key identifies a node: one version of one package.
type Key struct {
	Name    upm.DomainName
	Version upm.SemanticVersion
}

// String formats the key as name@version.
func (k Key) String() string { return string(k.Name) + "@" + string(k.Version) }

// NodeKind is the resolution state of a node.
type NodeKind int

const (
	// KindResolved nodes were found in Source.
	KindResolved NodeKind = iota
	// KindFailed nodes were found nowhere; Errors says why per registry.
	KindFailed
	// KindUnresolved nodes were seen but deliberately not looked up.
	KindUnresolved
)

func (k NodeKind) String() string {
	switch k {
	case KindResolved:
		return "resolved"
	case KindFailed:
		return "failed"
	case KindUnresolved:
		return "unresolved"
	}
	return "unknown"
}

// Node is one entry of a Graph. Which fields are set depends on Kind:
// Source and Dependencies for resolved nodes, Errors for failed ones.
type Node struct {
	Key
	Kind NodeKind

	Source       string
	Dependencies map[upm.DomainName]string

	// Errors maps each registry URL that was tried to the reason it could
	// not supply the package.
	Errors map[string]error
}

// Graph maps (name, version) keys to nodes. Each key is inserted at most
// once and nodes refer to each other only by key, so a package shared by
// several dependents appears a single time.
//
// A Graph is built by one Resolve call and is not safe for concurrent
// mutation.
type Graph struct {
	root  Key
	nodes map[Key]*Node
	order []Key
}

// NewGraph creates an empty graph for the given root.
func NewGraph(root Key) *Graph {
	return &Graph{root: root, nodes: make(map[Key]*Node)}
}

// Root returns the key resolution started from.
func (g *Graph) Root() Key { return g.root }

// AddResolved records that key was found in source. It returns false and
// changes nothing if key is already present.
func (g *Graph) AddResolved(key Key, source string, deps map[upm.DomainName]string) bool {
	d := make(map[upm.DomainName]string, len(deps))
	maps.Copy(d, deps)
	return g.add(&Node{Key: key, Kind: KindResolved, Source: source, Dependencies: d})
}

// AddFailed records that key could not be found anywhere.
func (g *Graph) AddFailed(key Key, errs map[string]error) bool {
	e := make(map[string]error, len(errs))
	maps.Copy(e, errs)
	return g.add(&Node{Key: key, Kind: KindFailed, Errors: e})
}

// AddUnresolved records key without looking it up.
func (g *Graph) AddUnresolved(key Key) bool {
	return g.add(&Node{Key: key, Kind: KindUnresolved})
}

func (g *Graph) add(n *Node) bool {
	if _, ok := g.nodes[n.Key]; ok {
		return false
	}
	g.nodes[n.Key] = n
	g.order = append(g.order, n.Key)
	return true
}

// Has reports whether key is in the graph.
func (g *Graph) Has(key Key) bool {
	_, ok := g.nodes[key]
	return ok
}

// Node returns the node for key.
func (g *Graph) Node(key Key) (*Node, bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, k := range g.order {
		out[i] = g.nodes[k]
	}
	return out
}

// Resolved returns resolved nodes in insertion order.
func (g *Graph) Resolved() []*Node { return g.filter(KindResolved) }

// Failed returns failed nodes in insertion order.
func (g *Graph) Failed() []*Node { return g.filter(KindFailed) }

func (g *Graph) filter(kind NodeKind) []*Node {
	var out []*Node
	for _, k := range g.order {
		if n := g.nodes[k]; n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

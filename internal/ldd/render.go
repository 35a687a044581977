package ldd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// RenderFlat writes the deduplicated transitive dependency closure of
// root, sorted ascending, one tab-indented name per line. Names
// without a registry entry are still listed — they are declared
// dependencies even if they were never inspected — the walk just
// doesn't descend through them.
func RenderFlat(out io.Writer, root *Node, registry map[string]*Node) {
	closure := make(map[string]struct{})
	collect(root, registry, closure)

	names := maps.Keys(closure)
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "\t%s\n", name)
	}
}

func collect(node *Node, registry map[string]*Node, closure map[string]struct{}) {
	for _, dep := range node.Deps {
		if _, seen := closure[dep]; seen {
			continue
		}
		closure[dep] = struct{}{}
		if child, present := registry[dep]; present {
			collect(child, registry, closure)
		}
	}
}

// RenderTree writes the dependency tree of root in pre-order, each
// name indented by one tab per edge from the root (the root itself is
// not printed). Unlike the flat view it mirrors the declared
// structure, so a library needed from several places is printed at
// every one of them; it only stops repeating where a dependency cycle
// would otherwise make the tree infinite.
func RenderTree(out io.Writer, root *Node, registry map[string]*Node) {
	onPath := map[string]bool{root.Name: true}
	renderSubtree(out, root, registry, 1, onPath)
}

func renderSubtree(out io.Writer, node *Node, registry map[string]*Node, depth int, onPath map[string]bool) {
	for _, dep := range node.Deps {
		fmt.Fprintf(out, "%s%s\n", strings.Repeat("\t", depth), dep)
		if onPath[dep] {
			continue
		}
		child, present := registry[dep]
		if !present || !child.Resolved {
			// Placeholders and unresolved names are leaves.
			continue
		}
		onPath[dep] = true
		renderSubtree(out, child, registry, depth+1, onPath)
		delete(onPath, dep)
	}
}

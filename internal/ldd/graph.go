package ldd

import (
	"debug/elf"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/xpldd/xpldd/internal/config"
	"github.com/xpldd/xpldd/pkg/log"
)

// Node is one binary in the dependency graph. Its name is canonical:
// the resolved absolute path, or the raw dependency name if resolution
// failed. Deps holds the canonical names of the binaries it declares
// as needed, in declaration order.
type Node struct {
	Name     string
	Deps     []string
	RunPaths []string
	// Resolved is false for placeholder nodes, i.e. dependencies that
	// were registered without being inspected because recursion was
	// disabled.
	Resolved bool
}

// Walker builds the dependency graph of one run. The registry maps
// canonical names to their nodes and is what bounds the traversal: a
// node is registered before its dependencies are processed, so cyclic
// dependency graphs terminate with each binary visited exactly once.
type Walker struct {
	Registry map[string]*Node
	session  *config.Session
}

func NewWalker(session *config.Session) *Walker {
	return &Walker{
		Registry: make(map[string]*Node),
		session:  session,
	}
}

// Process inspects the binary at name, records it in the registry and
// descends into its resolved dependencies unless recursion is
// disabled. It reports whether the whole subtree was extracted
// cleanly; failures are logged and never abort the run, and a file
// whose metadata is partially readable still contributes the entries
// that could be read.
func (w *Walker) Process(name string) bool {
	file, err := os.Open(name)
	if err != nil {
		log.Error(errors.WithStack(err))
		return false
	}
	defer file.Close()

	elfFile, err := elf.NewFile(file)
	if err != nil {
		log.Error(errors.Wrapf(err, "%s", name))
		return false
	}

	ok := true
	info, err := ExtractDynamic(elfFile)
	if err != nil {
		log.Error(errors.Wrapf(err, "%s", name))
		ok = false
	}

	node := &Node{
		Name:     name,
		RunPaths: info.RunPaths,
		Resolved: true,
	}
	// Registered before recursing, otherwise a dependency cycle
	// (including a self-dependency) would recurse forever.
	w.Registry[name] = node

	// The session's search paths take priority over the rpath entries
	// the binary declares for itself.
	searchPaths := make([]string, 0, len(w.session.SearchPaths)+len(info.RunPaths))
	searchPaths = append(searchPaths, w.session.SearchPaths...)
	searchPaths = append(searchPaths, info.RunPaths...)

	for _, raw := range info.Needed {
		resolved := Resolve(raw, searchPaths, w.session.Prefix)
		node.Deps = append(node.Deps, resolved)

		if w.session.NoRecurse {
			if _, present := w.Registry[resolved]; !present {
				w.Registry[resolved] = &Node{Name: resolved}
			}
			continue
		}
		if !strings.HasPrefix(resolved, "/") {
			// Unresolved, nothing more to do with it. It still shows
			// up in the output as a leaf.
			continue
		}
		if _, present := w.Registry[resolved]; present {
			continue
		}
		if !w.Process(resolved) {
			ok = false
		}
	}
	return ok
}

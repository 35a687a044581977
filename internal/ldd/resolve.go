package ldd

import (
	"path/filepath"
	"strings"

	"github.com/xpldd/xpldd/pkg/log"
	"github.com/xpldd/xpldd/util/fileutil"
)

// Resolve maps a dependency name to a concrete file path by checking
// prefix+dir/name for each search path in order; the first existing
// match wins, which makes the order of searchPaths significant.
// Names that are already absolute are returned unchanged, as is the
// name itself when no candidate exists — callers detect resolution
// failure by the result not being absolute.
//
// Absoluteness is always "/"-rooted: the names come out of ELF
// metadata and follow ELF path semantics regardless of the host.
func Resolve(name string, searchPaths []string, prefix string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	for _, dir := range searchPaths {
		candidate := filepath.Join(prefix+dir, name)
		if fileutil.Exists(candidate) {
			log.Debugf("resolved %s -> %s", name, candidate)
			return candidate
		}
	}
	log.Debugf("could not resolve %s in %d search paths", name, len(searchPaths))
	return name
}

package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Session holds the settings of one xpldd run. It is parsed once from
// flags/environment and read-only afterwards.
type Session struct {
	// Global library search paths, searched before any rpath entries
	// declared by the inspected binaries themselves.
	SearchPaths []string `mapstructure:"rpath"`
	// Prefix is prepended to every search path before the existence
	// check, so that binaries inside a chroot/sysroot tree resolve
	// against that tree instead of the host's.
	Prefix    string `mapstructure:"prefix"`
	NoRecurse bool   `mapstructure:"no-recurse"`
	Tree      bool   `mapstructure:"tree"`
	LdConf    string `mapstructure:"ld-conf"`
}

func (s *Session) Validate() error {
	if s.LdConf != "" {
		dirs, err := ParseLdConf(s.LdConf, s.Prefix)
		if err != nil {
			return err
		}
		// Explicit -R entries keep priority over configured dirs.
		s.SearchPaths = append(s.SearchPaths, dirs...)
	}
	return nil
}

// ParseLdConf reads an ld.so.conf style file and returns the search
// path entries it declares, in file order. "include" directives are
// followed; absolute include patterns are resolved underneath prefix
// (they refer to paths inside the inspected tree), relative ones
// against the directory of the including file.
func ParseLdConf(path string, prefix string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer file.Close()

	var dirs []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if pattern, ok := strings.CutPrefix(line, "include "); ok {
			pattern = strings.TrimSpace(pattern)
			if filepath.IsAbs(pattern) {
				pattern = prefix + pattern
			} else {
				pattern = filepath.Join(filepath.Dir(path), pattern)
			}
			matches, err := filepath.Glob(pattern)
			if err != nil {
				return dirs, errors.Wrapf(err, "invalid include pattern in %s", path)
			}
			for _, match := range matches {
				included, err := ParseLdConf(match, prefix)
				if err != nil {
					return dirs, err
				}
				dirs = append(dirs, included...)
			}
			continue
		}

		// Other directives (hwcap etc.) are irrelevant for pure path
		// resolution.
		if strings.Contains(line, "=") {
			continue
		}

		dirs = append(dirs, line)
	}
	if err := scanner.Err(); err != nil {
		return dirs, errors.Wrapf(err, "failed to read %s", path)
	}
	return dirs, nil
}

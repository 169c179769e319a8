// Package ignore loads .gitignore-style patterns and matches them against
// directory names and root-relative paths.
package ignore

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// RuleSet is an ordered collection of shell-glob ignore patterns loaded from
// a project root. It is immutable after load.
//
// A single pattern set is interpreted two ways: MatchName tests bare
// directory names for pruning, MatchPath tests root-relative file paths for
// exclusion. The two passes are intentionally distinct; unifying them would
// change pruning semantics.
type RuleSet struct {
	patterns []string
}

// New builds a RuleSet from literal pattern lines. Blank lines and comment
// lines are skipped.
func New(lines ...string) *RuleSet {
	rs := &RuleSet{}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		rs.patterns = append(rs.patterns, trimmed)
	}
	return rs
}

// Load reads <root>/.gitignore and returns the resulting RuleSet. A missing
// ignore file yields an empty set, not an error; an error is returned only
// when the file exists but cannot be read.
func Load(root string) (*RuleSet, error) {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return &RuleSet{}, nil
		}
		return &RuleSet{}, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return &RuleSet{}, err
	}
	return New(lines...), nil
}

// Len returns the number of loaded patterns.
func (rs *RuleSet) Len() int {
	return len(rs.patterns)
}

// MatchName reports whether a bare directory name matches any pattern.
// Matching a directory name prunes the whole subtree.
func (rs *RuleSet) MatchName(name string) bool {
	for _, pattern := range rs.patterns {
		p := strings.TrimSuffix(pattern, "/")
		if matched, _ := path.Match(p, name); matched {
			return true
		}
	}
	return false
}

// MatchPath reports whether a root-relative, forward-slash path matches any
// pattern. A pattern matches against the full relative path, against the
// base name, or as a cleaned directory prefix so that "build/" excludes
// "build/out.txt".
func (rs *RuleSet) MatchPath(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	base := path.Base(relPath)
	for _, pattern := range rs.patterns {
		if matched, _ := path.Match(pattern, relPath); matched {
			return true
		}
		if matched, _ := path.Match(pattern, base); matched {
			return true
		}
		clean := strings.Trim(path.Clean("/"+pattern), "/")
		if clean != "" && clean != "." {
			if relPath == clean || strings.HasPrefix(relPath, clean+"/") {
				return true
			}
		}
	}
	return false
}

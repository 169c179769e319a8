// Package scan walks a project root, filters it through ignore rules and the
// text classifier, and materializes the surviving files into an immutable
// scan result.
package scan

import (
	"bytes"
	"sort"
	"strings"
	"time"

	"github.com/jacobmentalconstruct/codehub/internal/config"
	"github.com/jacobmentalconstruct/codehub/internal/fs"
	"github.com/jacobmentalconstruct/codehub/internal/ignore"
	"go.uber.org/zap"
)

// nulProbeBytes is how much of a file is checked for NUL bytes before its
// text is kept.
const nulProbeBytes = 4096

// IndexFileName is the monolithic export destination under the root. The
// walker skips it so repeated runs never index their own output.
const IndexFileName = "index.html"

// LogDirName holds generated reports under the root and is likewise never
// indexed.
const LogDirName = "_logs"

// FileRecord represents one discovered file. Text is nil for files whose
// content was omitted (read failure, NUL bytes, or binary classification
// upstream); an empty text file keeps a non-nil empty string.
type FileRecord struct {
	Path string  `json:"path"`
	Size int64   `json:"size"`
	Mime string  `json:"mime"`
	Text *string `json:"text,omitempty"`
}

// Meta summarizes a scan for the interactive metadata document.
type Meta struct {
	Root        string `json:"root"`
	GeneratedAt string `json:"generated_at"`
	FileCount   int    `json:"file_count"`
	TotalBytes  int64  `json:"total_bytes"`
}

// Result is the immutable output of one full scan. A refresh produces a new
// Result; nothing is cached between scans.
type Result struct {
	Root        string
	GeneratedAt time.Time
	TotalBytes  int64
	Files       []FileRecord
}

// Meta returns the metadata document for this result.
func (r *Result) Meta() Meta {
	return Meta{
		Root:        r.Root,
		GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
		FileCount:   len(r.Files),
		TotalBytes:  r.TotalBytes,
	}
}

// Scanner traverses a root-scoped filesystem and produces scan results.
type Scanner struct {
	fsys   fs.FileSystem
	root   string
	rules  *ignore.RuleSet
	cfg    *config.Config
	logger *zap.Logger
}

// New creates a Scanner over the given root. The rule set and deny-list are
// fixed for the scanner's lifetime; every Scan call re-walks the tree from
// scratch.
func New(root string, rules *ignore.RuleSet, cfg *config.Config, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		fsys:   fs.NewLocalFS(root),
		root:   root,
		rules:  rules,
		cfg:    cfg,
		logger: logger,
	}
}

// Scan walks the tree and returns a fresh Result with records sorted by
// path. Per-entry failures are logged and skipped; only an unreadable root
// is an error.
func (s *Scanner) Scan() (*Result, error) {
	paths, err := s.Candidates()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Root:        s.root,
		GeneratedAt: time.Now(),
	}
	for _, rel := range paths {
		rec, ok := s.Materialize(rel)
		if !ok {
			continue
		}
		result.Files = append(result.Files, rec)
		result.TotalBytes += rec.Size
	}
	return result, nil
}

// Candidates walks the tree and returns the relative paths of files that
// pass directory pruning, ignore-pattern filtering, and text classification,
// sorted lexicographically.
func (s *Scanner) Candidates() ([]string, error) {
	var paths []string
	if err := s.walk("", &paths, true); err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// walk descends top-down so a pruned directory is never entered. rootErr is
// true only for the first level: an unreadable root fails the scan, any
// deeper failure is logged and skipped.
func (s *Scanner) walk(rel string, paths *[]string, rootErr bool) error {
	entries, err := s.fsys.ReadDir(rel)
	if err != nil {
		if rootErr {
			return err
		}
		s.logger.Warn("skipping unreadable directory", zap.String("path", rel), zap.Error(err))
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	for _, entry := range entries {
		childRel := entry.Name
		if rel != "" {
			childRel = rel + "/" + entry.Name
		}

		if entry.IsDir {
			if s.cfg.IsDeniedDir(entry.Name) || s.rules.MatchName(entry.Name) {
				continue
			}
			if rel == "" && entry.Name == LogDirName {
				continue
			}
			if err := s.walk(childRel, paths, false); err != nil {
				return err
			}
			continue
		}

		// The export destination lives at the root; indexing it would
		// fold previous output into the next run.
		if childRel == IndexFileName {
			continue
		}
		if !IsTextFile(entry.Name) {
			continue
		}
		if s.rules.MatchPath(childRel) {
			continue
		}
		*paths = append(*paths, childRel)
	}
	return nil
}

// Materialize builds the FileRecord for one candidate path. A read failure
// produces a record without text rather than aborting the batch; only a
// failed stat drops the record entirely.
func (s *Scanner) Materialize(rel string) (FileRecord, bool) {
	info, err := s.fsys.Stat(rel)
	if err != nil {
		s.logger.Warn("skipping unstattable file", zap.String("path", rel), zap.Error(err))
		return FileRecord{}, false
	}

	rec := FileRecord{
		Path: rel,
		Size: info.Size,
		Mime: MimeType(rel),
	}

	data, err := s.fsys.ReadFile(rel)
	if err != nil {
		s.logger.Warn("could not read file, omitting text", zap.String("path", rel), zap.Error(err))
		return rec, true
	}

	probe := data
	if len(probe) > nulProbeBytes {
		probe = probe[:nulProbeBytes]
	}
	if bytes.IndexByte(probe, 0) >= 0 {
		return rec, true
	}

	max := s.cfg.MaxTextBytes
	if max <= 0 {
		max = config.DefaultMaxTextBytes
	}
	if len(data) > max {
		data = data[:max]
	}
	text := strings.ToValidUTF8(string(data), "�")
	rec.Text = &text
	return rec, true
}

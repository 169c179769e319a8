// Package export renders scan output: the monolithic self-contained HTML
// index and the plain-text AI report.
package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jacobmentalconstruct/codehub/internal/config"
	"github.com/jacobmentalconstruct/codehub/internal/fs"
	"github.com/jacobmentalconstruct/codehub/internal/ignore"
	"github.com/jacobmentalconstruct/codehub/internal/scan"
	"go.uber.org/zap"
)

// htmlEscaper converts exactly &, < and > to their entity forms. Quotes are
// left alone: under-escaping permits markup injection from file contents,
// over-escaping corrupts legitimate characters.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML escapes interpolated content and paths for the monolithic page.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Progress reports the fraction of files written so far. It is a side effect
// only and never affects output content or ordering.
type Progress func(done, total int)

const monolithicStyle = `
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; line-height: 1.6; margin: 0; background-color: #f8f9fa; }
.container { max-width: 1200px; margin: 0 auto; padding: 2em; }
.header { background-color: #343a40; color: white; padding: 2em; text-align: center; border-radius: 8px; margin-bottom: 2em; }
.toc { background-color: #fff; border: 1px solid #dee2e6; border-radius: 8px; padding: 1.5em; margin-bottom: 2em; }
.toc ul { padding-left: 20px; columns: 3; }
.file-section { background-color: #fff; border: 1px solid #dee2e6; border-radius: 8px; margin-bottom: 1em; }
.file-title { font-size: 1.2em; font-weight: 600; padding: 0.8em 1.2em; background-color: #f1f3f5; border-bottom: 1px solid #dee2e6; cursor: pointer; }
.file-content { display: none; padding: 1.5em; max-height: 500px; overflow: auto; }
.file-content pre { margin: 0; background-color: #e9ecef; padding: 1em; border-radius: 5px; white-space: pre-wrap; word-wrap: break-word; }
.active .file-content { display: block; }
</style>`

const monolithicScript = `
<script>
document.querySelectorAll('.file-title').forEach(title => {
  title.addEventListener('click', () => {
    title.parentElement.classList.toggle('active');
  });
});
</script>`

// WriteMonolithic walks and materializes the root in one pass and writes a
// single self-contained HTML document to <root>/index.html with an
// anchor-linked table of contents and escaped file contents, both in sorted
// path order. The destination is flushed and closed before the path is
// returned, so callers may serve it immediately. Returns the destination
// path and the number of files written.
func WriteMonolithic(root string, rules *ignore.RuleSet, cfg *config.Config, logger *zap.Logger, progress Progress) (string, int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	scanner := scan.New(root, rules, cfg, logger)
	paths, err := scanner.Candidates()
	if err != nil {
		return "", 0, fmt.Errorf("failed to collect files: %w", err)
	}

	dest := filepath.Join(root, scan.IndexFileName)
	f, err := os.Create(dest)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create %s: %w", dest, err)
	}

	fsys := fs.NewLocalFS(root)
	w := bufio.NewWriter(f)
	projectName := EscapeHTML(filepath.Base(root))

	fmt.Fprintf(w, "<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"UTF-8\">\n")
	fmt.Fprintf(w, "<title>Consolidated Index of %s</title>\n", projectName)
	w.WriteString(monolithicStyle)
	w.WriteString("</head><body>\n<div class='container'>\n")
	fmt.Fprintf(w, "<div class='header'><h1>Consolidated Files for Project: %s</h1></div>\n", projectName)

	w.WriteString("<div class='toc'><h2>Table of Contents</h2><ul>\n")
	for _, rel := range paths {
		esc := EscapeHTML(rel)
		fmt.Fprintf(w, "<li><a href='#%s'>%s</a></li>\n", esc, esc)
	}
	w.WriteString("</ul></div>\n")

	written := 0
	for _, rel := range paths {
		esc := EscapeHTML(rel)
		fmt.Fprintf(w, "<div class='file-section' id='%s'>\n", esc)
		fmt.Fprintf(w, "<h2 class='file-title'>%s</h2>\n", esc)
		w.WriteString("<div class='file-content'><pre><code>")

		data, err := fsys.ReadFile(rel)
		if err != nil {
			// Per-file failure is a placeholder, never fatal
			fmt.Fprintf(w, "Could not read file. Error: %v", err)
			logger.Warn("could not read file for export", zap.String("path", rel), zap.Error(err))
		} else {
			w.WriteString(EscapeHTML(strings.ToValidUTF8(string(data), "�")))
		}

		w.WriteString("</code></pre></div>\n</div>\n")
		written++
		if progress != nil {
			progress(written, len(paths))
		}
	}

	w.WriteString(monolithicScript)
	w.WriteString("</div></body></html>")

	if err := w.Flush(); err != nil {
		f.Close()
		return "", 0, fmt.Errorf("failed to flush %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close %s: %w", dest, err)
	}
	return dest, written, nil
}

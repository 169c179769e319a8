package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/jacobmentalconstruct/codehub/internal/scan"
)

// BinaryPlaceholder replaces omitted file contents in the AI report.
const BinaryPlaceholder = "[binary or omitted]"

// ReportDir is the directory under the root that holds generated reports.
// It lives under the walker's log directory so reports never index
// themselves.
var ReportDir = filepath.Join(scan.LogDirName, "codehub")

// ReportPath returns the AI report destination for a root.
func ReportPath(root string) string {
	return filepath.Join(root, ReportDir, "ai_report.txt")
}

// RenderReport formats a scan result as the plain-text AI report: a JSON
// metadata header, then per file a fixed-width separator, a FILE marker,
// another separator, and the raw (unescaped) text or a binary placeholder.
func RenderReport(res *scan.Result) (string, error) {
	meta, err := json.Marshal(res.Meta())
	if err != nil {
		return "", err
	}

	lines := []string{string(meta)}
	for _, f := range res.Files {
		body := BinaryPlaceholder
		if f.Text != nil {
			body = *f.Text
		}
		lines = append(lines,
			"\n"+strings.Repeat("=", 80),
			"FILE: "+f.Path,
			strings.Repeat("-", 80),
			body,
		)
	}
	return strings.Join(lines, "\n"), nil
}

// WriteReport renders the AI report and writes it under the root, creating
// the report directory if needed.
func WriteReport(root string, res *scan.Result) (string, error) {
	content, err := RenderReport(res)
	if err != nil {
		return "", err
	}
	dest := ReportPath(root)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(dest, []byte(content), 0644); err != nil {
		return "", err
	}
	return dest, nil
}

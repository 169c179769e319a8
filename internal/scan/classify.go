package scan

import (
	"path"
	"strings"
)

// textExtensions is the fixed allow-list of extensions treated as text.
// Classification is extension-based only; no content sniffing. A text file
// with an unrecognized extension is treated as binary, and vice versa.
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".rst": true,
	".py": true, ".js": true, ".ts": true, ".html": true, ".css": true,
	".scss": true, ".json": true, ".xml": true, ".yaml": true, ".yml": true,
	".ini": true, ".toml": true, ".cfg": true, ".env": true,
	".sh": true, ".bat": true, ".ps1": true, ".sql": true,
	".java": true, ".c": true, ".cpp": true, ".h": true, ".hpp": true,
	".cs": true, ".go": true, ".rb": true, ".php": true, ".rs": true,
	".swift": true, ".kt": true, ".kts": true, ".scala": true,
	".pl": true, ".pm": true, ".t": true, ".r": true, ".dockerfile": true,
}

// mimeTypes maps known text extensions to a MIME label. Unknown extensions
// fall back to application/octet-stream. The table is fixed so labels stay
// stable across platforms.
var mimeTypes = map[string]string{
	".txt":        "text/plain",
	".md":         "text/markdown",
	".markdown":   "text/markdown",
	".rst":        "text/x-rst",
	".py":         "text/x-python",
	".js":         "text/javascript",
	".ts":         "text/x-typescript",
	".html":       "text/html",
	".css":        "text/css",
	".scss":       "text/x-scss",
	".json":       "application/json",
	".xml":        "application/xml",
	".yaml":       "application/yaml",
	".yml":        "application/yaml",
	".ini":        "text/plain",
	".toml":       "application/toml",
	".cfg":        "text/plain",
	".env":        "text/plain",
	".sh":         "application/x-sh",
	".bat":        "text/plain",
	".ps1":        "text/plain",
	".sql":        "application/sql",
	".java":       "text/x-java-source",
	".c":          "text/x-c",
	".cpp":        "text/x-c++",
	".h":          "text/x-c",
	".hpp":        "text/x-c++",
	".cs":         "text/x-csharp",
	".go":         "text/x-go",
	".rb":         "text/x-ruby",
	".php":        "text/x-php",
	".rs":         "text/x-rust",
	".swift":      "text/x-swift",
	".kt":         "text/x-kotlin",
	".kts":        "text/x-kotlin",
	".scala":      "text/x-scala",
	".pl":         "text/x-perl",
	".pm":         "text/x-perl",
	".t":          "text/x-perl",
	".r":          "text/x-r",
	".dockerfile": "text/plain",
}

// DefaultMime is the label for files with an unrecognized extension.
const DefaultMime = "application/octet-stream"

// IsTextFile reports whether a file name classifies as text. A dotfile with
// no further suffix (".gitignore", ".env") is never text; otherwise the
// lowercase extension is tested against the allow-list.
func IsTextFile(name string) bool {
	base := path.Base(name)
	if strings.HasPrefix(base, ".") && !strings.Contains(base[1:], ".") {
		return false
	}
	return textExtensions[strings.ToLower(path.Ext(base))]
}

// MimeType returns the MIME label for a file name, derived from its
// lowercase extension.
func MimeType(name string) string {
	if m, ok := mimeTypes[strings.ToLower(path.Ext(path.Base(name)))]; ok {
		return m
	}
	return DefaultMime
}

package visualflow

import (
	"fmt"
	"path"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/visualflow/napkin"
)

// mimeTypes maps output formats to MIME types.
var mimeTypes = map[napkin.Format]string{
	napkin.FormatSVG: "image/svg+xml",
	napkin.FormatPNG: "image/png",
	napkin.FormatPPT: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// ContentTypeFor returns the MIME type for an output format, or
// application/octet-stream when the format is unknown.
func ContentTypeFor(format napkin.Format) string {
	if mt, ok := mimeTypes[format]; ok {
		return mt
	}
	return "application/octet-stream"
}

// contentTypeForURL infers a MIME type from a download URL's extension.
func contentTypeForURL(url string) string {
	switch strings.ToLower(path.Ext(stripQuery(url))) {
	case ".svg":
		return mimeTypes[napkin.FormatSVG]
	case ".png":
		return mimeTypes[napkin.FormatPNG]
	case ".ppt", ".pptx":
		return mimeTypes[napkin.FormatPPT]
	default:
		return "application/octet-stream"
	}
}

func stripQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}

// sanitizeFilename strips path separators and traversal sequences from a
// caller-supplied filename before it reaches a storage backend.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(path.Clean("/" + name))
	if name == "/" || name == "." {
		return ""
	}
	return name
}

// buildFilename derives the stored filename for file index i of total.
// An explicit name is sanitized and, when several files are saved,
// suffixed with a 1-based index before the extension. Without an
// explicit name a unique visual-<id> name is generated.
func buildFilename(explicit string, format napkin.Format, i, total int) (string, error) {
	ext := string(format)
	if ext == "" {
		ext = "bin"
	}

	if explicit != "" {
		name := sanitizeFilename(explicit)
		if name == "" {
			return "", fmt.Errorf("visualflow: invalid filename %q", explicit)
		}
		base := strings.TrimSuffix(name, path.Ext(name))
		suffix := path.Ext(name)
		if suffix == "" {
			suffix = "." + ext
		}
		if total > 1 {
			return fmt.Sprintf("%s-%d%s", base, i+1, suffix), nil
		}
		return base + suffix, nil
	}

	id, err := nanoid.New()
	if err != nil {
		return "", fmt.Errorf("visualflow: generate filename: %w", err)
	}
	return fmt.Sprintf("visual-%s.%s", id, ext), nil
}

package ingest

import (
	"bytes"
	"image"
	_ "image/gif"  // Register GIF for format sniffing
	_ "image/jpeg" // Register JPEG for format sniffing
	_ "image/png"  // Register PNG for format sniffing
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"  // Register BMP for format sniffing
	_ "golang.org/x/image/tiff" // Register TIFF for format sniffing
	_ "golang.org/x/image/webp" // Register WebP for format sniffing
)

const (
	defaultImageExt = ".png"
	defaultDataExt  = ".bin"
)

// utiExtensions maps Uniform Type Identifiers seen on drag pasteboards.
var utiExtensions = map[string]string{
	"public.png":                ".png",
	"public.jpeg":               ".jpg",
	"public.tiff":               ".tiff",
	"public.heic":               ".heic",
	"com.compuserve.gif":        ".gif",
	"com.microsoft.bmp":         ".bmp",
	"org.webmproject.webp":      ".webp",
	"com.adobe.pdf":             ".pdf",
	"public.plain-text":         ".txt",
	"public.utf8-plain-text":    ".txt",
	"public.html":               ".html",
	"public.rtf":                ".rtf",
	"public.mpeg-4":             ".mp4",
	"com.apple.quicktime-movie": ".mov",
	"public.zip-archive":        ".zip",
}

// mimeExtensions picks the conventional extension where package mime
// would return a less common one first.
var mimeExtensions = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/tiff":      ".tiff",
	"image/bmp":       ".bmp",
	"image/webp":      ".webp",
	"image/heic":      ".heic",
	"application/pdf": ".pdf",
	"text/plain":      ".txt",
	"text/html":       ".html",
	"video/mp4":       ".mp4",
	"application/zip": ".zip",
}

var formatExtensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
	"bmp":  ".bmp",
	"tiff": ".tiff",
	"webp": ".webp",
}

// SynthesizeName returns a unique filename for dropped raw content, e.g.
// "DroppedImage-<uuid>.png".
func SynthesizeName(typeHint string, data []byte) string {
	ext := ExtensionFor(typeHint, data)
	prefix := "DroppedFile"
	if isImage(typeHint, ext) {
		prefix = "DroppedImage"
	}
	return prefix + "-" + uuid.NewString() + ext
}

// ExtensionFor infers a filename extension from the type hint, then from
// the content, and falls back to a default.
func ExtensionFor(typeHint string, data []byte) string {
	hint := strings.ToLower(strings.TrimSpace(typeHint))
	if base, _, err := mime.ParseMediaType(hint); err == nil {
		hint = base
	}
	if ext, ok := utiExtensions[hint]; ok {
		return ext
	}
	if ext, ok := mimeExtensions[hint]; ok {
		return ext
	}
	if strings.Contains(hint, "/") && !strings.HasSuffix(hint, "/*") {
		if exts, err := mime.ExtensionsByType(hint); err == nil && len(exts) > 0 {
			return exts[0]
		}
	}
	if ext := sniffExtension(data); ext != "" {
		return ext
	}
	if isImageHint(hint) {
		return defaultImageExt
	}
	return defaultDataExt
}

func sniffExtension(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if ext, ok := formatExtensions[format]; ok {
			return ext
		}
	}
	ct := http.DetectContentType(data)
	if base, _, err := mime.ParseMediaType(ct); err == nil {
		ct = base
	}
	if ext, ok := mimeExtensions[ct]; ok {
		return ext
	}
	return ""
}

func isImageHint(hint string) bool {
	return strings.HasPrefix(hint, "image/") || hint == "public.image" ||
		strings.HasSuffix(hint, ".png") || strings.HasSuffix(hint, ".jpeg") ||
		strings.HasSuffix(hint, ".tiff") || strings.HasSuffix(hint, ".heic") ||
		strings.HasSuffix(hint, ".gif") || strings.HasSuffix(hint, ".bmp") ||
		strings.HasSuffix(hint, ".webp")
}

func isImage(typeHint, ext string) bool {
	if isImageHint(strings.ToLower(typeHint)) {
		return true
	}
	switch ext {
	case ".png", ".jpg", ".gif", ".bmp", ".tiff", ".webp", ".heic":
		return true
	}
	return false
}

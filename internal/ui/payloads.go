package ui

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"

	"github.com/justyntemme/dropshelf/internal/ingest"
	"github.com/justyntemme/dropshelf/internal/platform"
)

// MIME types the drop targets accept, most specific first.
const (
	MIMEURIList = "text/uri-list"
	MIMEText    = "text/plain"
)

// AcceptedTypes lists every type a drop target registers for.
var AcceptedTypes = []string{
	MIMEURIList,
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/tiff",
	"image/webp",
	MIMEText,
}

// PayloadsFromPaths turns natively dropped file paths into references.
func PayloadsFromPaths(paths []string) []ingest.Payload {
	out := make([]ingest.Payload, 0, len(paths))
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, ingest.DirectReference{Path: p})
		}
	}
	return out
}

// PayloadsFromDrop converts native drop items. An item offering more than
// one representation becomes Alternatives tried in the order given.
func PayloadsFromDrop(items []platform.DropItem) []ingest.Payload {
	out := make([]ingest.Payload, 0, len(items))
	for _, item := range items {
		var reps ingest.Alternatives
		if p := strings.TrimSpace(item.Path); p != "" {
			reps = append(reps, ingest.DirectReference{Path: p})
		}
		if item.Promise != nil {
			reps = append(reps, ingest.DeferredPromise{Resolver: item.Promise})
		}
		if len(item.Data) > 0 {
			reps = append(reps, ingest.RawContent{TypeHint: item.DataType, Data: item.Data})
		}
		switch len(reps) {
		case 0:
		case 1:
			out = append(out, reps[0])
		default:
			out = append(out, reps)
		}
	}
	return out
}

// PayloadsFromData converts one transfer offer into payloads. URI lists and
// text made only of paths become references; anything else is raw content
// written to the temp area.
func PayloadsFromData(mime string, data []byte) []ingest.Payload {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	switch {
	case mime == MIMEURIList:
		return PayloadsFromPaths(uriLines(data))
	case mime == MIMEText:
		lines := nonBlankLines(data)
		if allPaths(lines) {
			return PayloadsFromPaths(lines)
		}
		return []ingest.Payload{ingest.RawContent{TypeHint: "public.utf8-plain-text", Data: data}}
	default:
		return []ingest.Payload{ingest.RawContent{TypeHint: mime, Data: data}}
	}
}

// uriLines parses text/uri-list (RFC 2483): one URI per line, # comments.
func uriLines(data []byte) []string {
	var out []string
	for _, l := range nonBlankLines(data) {
		if !strings.HasPrefix(l, "#") {
			out = append(out, l)
		}
	}
	return out
}

func nonBlankLines(data []byte) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func allPaths(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "file://") && !filepath.IsAbs(l) {
			return false
		}
	}
	return true
}

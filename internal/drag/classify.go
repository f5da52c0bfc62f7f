// Package drag decides whether a file drag from another application is in
// progress, and keeps the application's own outgoing drags out of that
// decision.
package drag

import "github.com/justyntemme/dropshelf/internal/platform"

// Pasteboard descriptor tags recognized by the classifier.
const (
	TypeFilePromiseMetadata = "com.apple.NSFilePromiseItemMetaData"
	TypeFilePromiseReceiver = "NSFilePromiseReceiver"
	TypeFileURL             = "public.file-url"
	TypeFilenames           = "NSFilenamesPboardType"
	TypeURIList             = "text/uri-list"
	TypePromisedFileURL     = "com.apple.pasteboard.promised-file-url"
)

// Match names the classification rule that accepted a drag.
type Match int

const (
	MatchNone Match = iota
	MatchFileReference
	MatchPromise
	MatchFileURLType
	MatchPromisedFileURL
	MatchAnyContent
)

func (m Match) String() string {
	switch m {
	case MatchFileReference:
		return "file-reference"
	case MatchPromise:
		return "promise"
	case MatchFileURLType:
		return "file-url-type"
	case MatchPromisedFileURL:
		return "promised-file-url"
	case MatchAnyContent:
		return "any-content"
	default:
		return "none"
	}
}

var (
	promiseTypes = []string{TypeFilePromiseMetadata, TypeFilePromiseReceiver}
	fileURLTypes = []string{TypeFileURL, TypeFilenames, TypeURIList}
)

// Classify inspects the drag pasteboard and returns the first rule that
// matches. Some source applications only advertise partial or nonstandard
// descriptors, so any non-empty descriptor set is accepted as a last resort.
func Classify(pb platform.Pasteboard) Match {
	if len(pb.FileURLs()) > 0 {
		return MatchFileReference
	}
	types := pb.Types()
	if len(types) == 0 {
		return MatchNone
	}
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	switch {
	case hasAny(set, promiseTypes):
		return MatchPromise
	case hasAny(set, fileURLTypes):
		return MatchFileURLType
	case hasAny(set, []string{TypePromisedFileURL}):
		return MatchPromisedFileURL
	default:
		return MatchAnyContent
	}
}

func hasAny(set map[string]struct{}, want []string) bool {
	for _, w := range want {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}

package drag

import "testing"

type fakePasteboard struct {
	types []string
	files []string
}

func (p *fakePasteboard) Types() []string    { return p.types }
func (p *fakePasteboard) FileURLs() []string { return p.files }

func TestClassifyOrder(t *testing.T) {
	testCases := []struct {
		name     string
		pb       fakePasteboard
		expected Match
	}{
		{"empty", fakePasteboard{}, MatchNone},
		{"file references win", fakePasteboard{
			types: []string{TypeFilePromiseMetadata, TypeFileURL},
			files: []string{"/tmp/a.txt"},
		}, MatchFileReference},
		{"promise metadata", fakePasteboard{types: []string{TypeFilePromiseMetadata, TypeFileURL}}, MatchPromise},
		{"promise receiver", fakePasteboard{types: []string{TypeFilePromiseReceiver}}, MatchPromise},
		{"public file url", fakePasteboard{types: []string{"public.utf8-plain-text", TypeFileURL}}, MatchFileURLType},
		{"uri list", fakePasteboard{types: []string{TypeURIList}}, MatchFileURLType},
		{"filenames", fakePasteboard{types: []string{TypeFilenames}}, MatchFileURLType},
		{"promised file url beats fallback only", fakePasteboard{types: []string{"x", TypePromisedFileURL}}, MatchPromisedFileURL},
		{"file url beats promised file url", fakePasteboard{types: []string{TypePromisedFileURL, TypeFileURL}}, MatchFileURLType},
		{"unknown tag falls back", fakePasteboard{types: []string{"com.example.private"}}, MatchAnyContent},
	}

	for _, tc := range testCases {
		pb := tc.pb
		if got := Classify(&pb); got != tc.expected {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.expected, got)
		}
	}
}

func TestMatchString(t *testing.T) {
	if MatchAnyContent.String() != "any-content" {
		t.Errorf("unexpected %q", MatchAnyContent.String())
	}
	if Match(99).String() != "none" {
		t.Errorf("unknown match should print none, got %q", Match(99).String())
	}
}

package ingest

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}

func TestExtensionFor(t *testing.T) {
	binary := []byte{0x00, 0x01, 0x02, 0x03, 0xfe}
	testCases := []struct {
		name     string
		hint     string
		data     []byte
		expected string
	}{
		{"uti png", "public.png", nil, ".png"},
		{"uti jpeg", "public.jpeg", nil, ".jpg"},
		{"uti gif", "com.compuserve.gif", nil, ".gif"},
		{"uti is case insensitive", "Public.PNG", nil, ".png"},
		{"mime jpeg", "image/jpeg", nil, ".jpg"},
		{"mime with params", "text/plain; charset=utf-8", nil, ".txt"},
		{"mime from table", "image/svg+xml", nil, ".svg"},
		{"generic image sniffs png", "public.image", nil, ".png"},
		{"generic image sniffs gif", "public.image", gifBytes(t), ".gif"},
		{"no hint sniffs png", "", pngBytes(t), ".png"},
		{"no hint sniffs text", "", []byte("hello shelf"), ".txt"},
		{"image wildcard defaults png", "image/*", binary, ".png"},
		{"unknown defaults bin", "com.example.blob", binary, ".bin"},
	}

	for _, tc := range testCases {
		if got := ExtensionFor(tc.hint, tc.data); got != tc.expected {
			t.Errorf("%s: ExtensionFor(%q): expected %q, got %q", tc.name, tc.hint, tc.expected, got)
		}
	}
}

func TestSynthesizeName(t *testing.T) {
	name := SynthesizeName("public.png", nil)
	if !strings.HasPrefix(name, "DroppedImage-") || !strings.HasSuffix(name, ".png") {
		t.Fatalf("unexpected name %q", name)
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, "DroppedImage-"), ".png")
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("name %q does not embed a uuid: %v", name, err)
	}

	if other := SynthesizeName("public.png", nil); other == name {
		t.Error("synthesized names must be unique")
	}

	if doc := SynthesizeName("com.adobe.pdf", nil); !strings.HasPrefix(doc, "DroppedFile-") {
		t.Errorf("non-image content should be DroppedFile, got %q", doc)
	}
}

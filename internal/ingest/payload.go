// Package ingest resolves the items of a drop into concrete files on disk.
// Items may already name a file, may promise a file that another process
// has to write, or may carry raw bytes that are written to a temp area.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFileURL is returned for references that are URLs but not file URLs.
	ErrNotFileURL = errors.New("not a file URL")
	// ErrEmptyContent is returned for raw content without bytes.
	ErrEmptyContent = errors.New("empty content")
	// ErrNoRepresentation is returned when an item offers nothing resolvable.
	ErrNoRepresentation = errors.New("no resolvable representation")
	// ErrStale marks a completion that arrived after the shelf was cleared.
	ErrStale = errors.New("completion arrived after clear")
)

// Kind identifies a payload variant, in resolution priority order.
type Kind int

const (
	KindReference Kind = iota
	KindPromise
	KindRaw
	KindAlternatives
)

func (k Kind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindPromise:
		return "promise"
	case KindRaw:
		return "raw"
	case KindAlternatives:
		return "alternatives"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Payload is one item of a drop. The variants are DirectReference,
// DeferredPromise, RawContent and Alternatives.
type Payload interface {
	Kind() Kind
}

// DirectReference names an existing file by path or file:// URI.
type DirectReference struct {
	Path string
}

func (DirectReference) Kind() Kind { return KindReference }

// Resolver materializes a promised file into destDir and returns its path.
// Resolve may block; the pipeline always calls it off the coordinating
// goroutine.
type Resolver interface {
	Resolve(ctx context.Context, destDir string) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, destDir string) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, destDir string) (string, error) {
	return f(ctx, destDir)
}

// DeferredPromise is a file that does not exist yet.
type DeferredPromise struct {
	Resolver Resolver
}

func (DeferredPromise) Kind() Kind { return KindPromise }

// RawContent is dropped data with a type hint, either a UTI such as
// "public.png" or a MIME type such as "image/png".
type RawContent struct {
	TypeHint string
	Data     []byte
}

func (RawContent) Kind() Kind { return KindRaw }

// Alternatives are several representations of the same dropped item.
// They are tried in Kind order and the first success wins.
type Alternatives []Payload

func (Alternatives) Kind() Kind { return KindAlternatives }

// ReferencePath turns a path or file:// URI into a cleaned absolute path
// and checks that it exists.
func ReferencePath(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrNoRepresentation
	}
	p := ref
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("parse reference: %w", err)
		}
		if u.Scheme != "file" {
			return "", fmt.Errorf("%w: %s", ErrNotFileURL, ref)
		}
		p = filepath.FromSlash(u.Path)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("reference unreadable: %w", err)
	}
	return abs, nil
}

// flatten expands nested Alternatives and orders the representations by
// resolution priority, keeping the source order within a kind.
func flatten(p Payload) []Payload {
	alts, ok := p.(Alternatives)
	if !ok {
		if p == nil {
			return nil
		}
		return []Payload{p}
	}
	var out []Payload
	for _, a := range alts {
		out = append(out, flatten(a)...)
	}
	ordered := make([]Payload, 0, len(out))
	for k := KindReference; k <= KindRaw; k++ {
		for _, a := range out {
			if a.Kind() == k {
				ordered = append(ordered, a)
			}
		}
	}
	return ordered
}

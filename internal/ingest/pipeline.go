package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/justyntemme/dropshelf/internal/debug"
	"github.com/justyntemme/dropshelf/internal/notify"
)

// Dispatcher runs fn on the coordinating goroutine. Post reports false when
// the coordinator is gone and fn will never run.
type Dispatcher interface {
	Post(fn func()) bool
}

// Result describes the outcome of one payload.
type Result struct {
	Index    int     // position in the Ingest batch
	Payload  Payload // the payload as submitted
	Strategy Kind    // representation that produced Path
	Path     string
	Err      error
}

// Pipeline resolves drop payloads and hands the resulting paths to a sink.
//
// Ingest and the sink run on the coordinating goroutine. Direct references
// are accepted synchronously in submission order; promises and raw content
// resolve on their own goroutines and their completions are posted back
// through the Dispatcher, so they reach the sink in completion order.
// A failing payload never affects its siblings.
type Pipeline struct {
	ctx      context.Context
	tmp      *TempDir
	dispatch Dispatcher
	sink     func(path string)

	gen     atomic.Uint64
	wg      sync.WaitGroup
	pending atomic.Int64
	results notify.List[Result]
}

// NewPipeline returns a pipeline. ctx is passed to promise resolvers; it is
// not used to cancel work in flight.
func NewPipeline(ctx context.Context, tmp *TempDir, d Dispatcher, sink func(path string)) *Pipeline {
	return &Pipeline{ctx: ctx, tmp: tmp, dispatch: d, sink: sink}
}

// OnResult registers fn for per-payload outcomes, delivered on the
// coordinating goroutine.
func (p *Pipeline) OnResult(fn func(Result)) (unregister func()) {
	return p.results.Register(fn)
}

// TempDir returns the temp area used for promised and synthesized files.
func (p *Pipeline) TempDir() *TempDir { return p.tmp }

// Pending returns the number of payloads still resolving.
func (p *Pipeline) Pending() int { return int(p.pending.Load()) }

// Invalidate makes every completion that is still in flight stale. It is
// called when the shelf is cleared so late files do not reappear.
func (p *Pipeline) Invalidate() {
	gen := p.gen.Add(1)
	debug.Log(debug.INGEST, "Pipeline generation now %d (pending %d)", gen, p.Pending())
}

// Wait blocks until every resolving payload has posted its completion.
func (p *Pipeline) Wait() { p.wg.Wait() }

// Ingest processes a batch of payloads and returns how many were accepted
// synchronously.
func (p *Pipeline) Ingest(payloads []Payload) int {
	accepted := 0
	for i, pl := range payloads {
		reps := flatten(pl)
		if len(reps) == 0 {
			p.finish(Result{Index: i, Payload: pl, Err: ErrNoRepresentation})
			continue
		}

		var (
			refErr error
			async  []Payload
			done   bool
		)
		for _, r := range reps {
			ref, ok := r.(DirectReference)
			if !ok {
				async = append(async, r)
				continue
			}
			if done {
				continue
			}
			path, err := ReferencePath(ref.Path)
			if err != nil {
				refErr = err
				continue
			}
			p.sink(path)
			p.finish(Result{Index: i, Payload: pl, Strategy: KindReference, Path: path})
			accepted++
			done = true
		}
		if done {
			continue
		}
		if len(async) == 0 {
			p.finish(Result{Index: i, Payload: pl, Strategy: KindReference, Err: refErr})
			continue
		}
		p.resolveAsync(i, pl, async)
	}
	return accepted
}

func (p *Pipeline) resolveAsync(index int, pl Payload, reps []Payload) {
	gen := p.gen.Load()
	p.wg.Add(1)
	p.pending.Add(1)
	go func() {
		defer p.wg.Done()
		res := Result{Index: index, Payload: pl}
		res.Strategy, res.Path, res.Err = p.resolve(reps)

		ok := p.dispatch.Post(func() {
			p.pending.Add(-1)
			if res.Err == nil && p.gen.Load() != gen {
				res.Err = ErrStale
			}
			if res.Err == nil {
				p.sink(res.Path)
			}
			p.finish(res)
		})
		if !ok {
			p.pending.Add(-1)
			debug.Log(debug.INGEST, "Dropped completion for payload %d: coordinator stopped", index)
		}
	}()
}

// resolve tries each representation in order; it runs off the
// coordinating goroutine.
func (p *Pipeline) resolve(reps []Payload) (Kind, string, error) {
	var errs []error
	for _, r := range reps {
		path, err := p.resolveOne(r)
		if err == nil {
			return r.Kind(), path, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", r.Kind(), err))
	}
	return reps[len(reps)-1].Kind(), "", errors.Join(errs...)
}

func (p *Pipeline) resolveOne(r Payload) (string, error) {
	switch v := r.(type) {
	case DeferredPromise:
		if v.Resolver == nil {
			return "", ErrNoRepresentation
		}
		dest, err := p.tmp.Ensure()
		if err != nil {
			return "", err
		}
		path, err := v.Resolver.Resolve(p.ctx, dest)
		if err != nil {
			return "", err
		}
		if path == "" {
			return "", errors.New("resolver returned no path")
		}
		return path, nil
	case RawContent:
		if len(v.Data) == 0 {
			return "", ErrEmptyContent
		}
		return p.tmp.Write(SynthesizeName(v.TypeHint, v.Data), v.Data)
	case DirectReference:
		return ReferencePath(v.Path)
	default:
		return "", ErrNoRepresentation
	}
}

func (p *Pipeline) finish(res Result) {
	switch {
	case res.Err == nil:
		debug.Log(debug.INGEST, "Payload %d resolved via %s: %s", res.Index, res.Strategy, res.Path)
	case errors.Is(res.Err, ErrStale):
		debug.Log(debug.INGEST, "Payload %d discarded: %v", res.Index, res.Err)
	default:
		log.Printf("Ingest: payload %d not added: %v", res.Index, res.Err)
	}
	p.results.Emit(res)
}

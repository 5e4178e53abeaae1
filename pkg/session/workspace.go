// Package session owns the two lives of a layer sequence: the draft an editor
// mutates freely and the frozen snapshot generators read. Commit is the only
// path from one to the other.
package session

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-netgen/pkg/codegen"
	"github.com/goliatone/go-netgen/pkg/generator"
	"github.com/goliatone/go-netgen/pkg/layer"
	"github.com/goliatone/go-netgen/pkg/topology"
)

// ErrNoSnapshot is returned when generation is requested before the first
// successful commit.
var ErrNoSnapshot = errors.New("session: no committed snapshot")

// Option customises a Workspace.
type Option func(*Workspace)

// WithFacade injects the generator facade used by Generate.
func WithFacade(facade *generator.Facade) Option {
	return func(w *Workspace) {
		w.facade = facade
	}
}

// WithDraft seeds the draft with a copy of layers.
func WithDraft(layers []layer.Layer) Option {
	return func(w *Workspace) {
		w.draft = layer.Clone(layers)
	}
}

// Snapshot is an immutable, validated copy of a draft.
type Snapshot struct {
	family  layer.Family
	layers  layer.Sequence
	version int
}

// Family reports the family the snapshot was validated against.
func (s *Snapshot) Family() layer.Family { return s.family }

// Version counts successful commits, starting at 1.
func (s *Snapshot) Version() int { return s.version }

// Layers returns a copy of the frozen sequence.
func (s *Snapshot) Layers() layer.Sequence {
	return layer.Clone(s.layers)
}

// Config builds a generator config over a copy of the frozen sequence.
func (s *Snapshot) Config(mode codegen.Mode) codegen.Config {
	return codegen.Config{Layers: s.Layers(), Mode: mode}
}

// Workspace pairs a draft with the most recent committed snapshot.
type Workspace struct {
	family layer.Family
	facade *generator.Facade

	mu    sync.Mutex
	draft layer.Sequence

	snapshot atomic.Pointer[Snapshot]
}

// New creates a workspace for family with an empty draft unless WithDraft is
// supplied. The default facade registers keras and pytorch.
func New(family layer.Family, options ...Option) *Workspace {
	w := &Workspace{family: family}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	if w.facade == nil {
		w.facade = generator.New(family)
	}
	return w
}

// Family reports the workspace family.
func (w *Workspace) Family() layer.Family { return w.family }

// Facade exposes the generator facade.
func (w *Workspace) Facade() *generator.Facade { return w.facade }

// Draft returns a copy of the current draft.
func (w *Workspace) Draft() layer.Sequence {
	w.mu.Lock()
	defer w.mu.Unlock()
	return layer.Clone(w.draft)
}

// SetDraft replaces the draft with a copy of layers.
func (w *Workspace) SetDraft(layers []layer.Layer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft = layer.Clone(layers)
}

// Edit applies fn to the draft in place and keeps its result as the new
// draft. The committed snapshot is never visible to fn.
func (w *Workspace) Edit(fn func(layer.Sequence) layer.Sequence) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft = fn(w.draft)
}

// Commit validates the draft. On success a deep copy replaces the snapshot
// and is returned; on failure the *topology.ViolationError is returned and
// both the draft and the previous snapshot are left untouched.
func (w *Workspace) Commit() (*Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := topology.Validate(w.family, w.draft).Err(); err != nil {
		return nil, err
	}

	version := 1
	if prev := w.snapshot.Load(); prev != nil {
		version = prev.version + 1
	}
	next := &Snapshot{
		family:  w.family,
		layers:  layer.Clone(w.draft),
		version: version,
	}
	w.snapshot.Store(next)
	return next, nil
}

// Snapshot returns the latest committed snapshot or nil.
func (w *Workspace) Snapshot() *Snapshot {
	return w.snapshot.Load()
}

// Generate renders the latest snapshot with framework in mode.
func (w *Workspace) Generate(framework string, mode codegen.Mode) (string, error) {
	snap := w.snapshot.Load()
	if snap == nil {
		return "", ErrNoSnapshot
	}
	return w.facade.Generate(framework, snap.Config(mode))
}

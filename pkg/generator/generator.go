// Package generator is the per-family entry point for code generation. A
// Facade maps framework names to generators and assembles the imports, model
// and training sections into one document.
package generator

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-netgen/pkg/codegen"
	"github.com/goliatone/go-netgen/pkg/codegen/keras"
	"github.com/goliatone/go-netgen/pkg/codegen/pytorch"
	"github.com/goliatone/go-netgen/pkg/layer"
)

// Option customises a Facade.
type Option func(*Facade)

// WithRegistry injects a generator registry. The default keras and pytorch
// generators are not added to an injected registry.
func WithRegistry(registry *codegen.Registry) Option {
	return func(f *Facade) {
		f.registry = registry
	}
}

// WithGenerators registers additional generators next to the defaults.
func WithGenerators(generators ...codegen.Generator) Option {
	return func(f *Facade) {
		if len(generators) == 0 {
			return
		}
		f.extra = append(f.extra, generators...)
	}
}

// Facade dispatches generation requests for one topology family.
type Facade struct {
	family        layer.Family
	registry      *codegen.Registry
	extra         []codegen.Generator
	initialiseErr error
}

// New constructs a Facade for family. Construction never fails; wiring errors
// are reported by Generate.
func New(family layer.Family, options ...Option) *Facade {
	f := &Facade{family: family}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	f.applyDefaults()
	return f
}

// NewFCN constructs the fully-connected facade.
func NewFCN(options ...Option) *Facade {
	return New(layer.FCN, options...)
}

// NewCNN constructs the convolutional facade.
func NewCNN(options ...Option) *Facade {
	return New(layer.CNN, options...)
}

func (f *Facade) applyDefaults() {
	if f.registry == nil {
		f.registry = codegen.NewRegistry()
		f.registerDefaults()
	}
	for _, gen := range f.extra {
		if err := f.registry.Register(gen); err != nil {
			f.initialiseErr = errors.Join(f.initialiseErr, fmt.Errorf("generator: %w", err))
		}
	}
}

func (f *Facade) registerDefaults() {
	kerasGen, err := keras.New(f.family)
	if err != nil {
		f.initialiseErr = errors.Join(f.initialiseErr, fmt.Errorf("generator: default keras generator: %w", err))
	} else {
		f.registry.MustRegister(kerasGen)
	}

	torchGen, err := pytorch.New(f.family)
	if err != nil {
		f.initialiseErr = errors.Join(f.initialiseErr, fmt.Errorf("generator: default pytorch generator: %w", err))
	} else {
		f.registry.MustRegister(torchGen)
	}
}

// Family reports the topology family the facade serves.
func (f *Facade) Family() layer.Family { return f.family }

// Registry exposes the underlying generator registry.
func (f *Facade) Registry() *codegen.Registry { return f.registry }

// Generate looks up framework case-insensitively and returns the assembled
// document. An unknown framework yields *codegen.UnsupportedFrameworkError.
// The config is expected to have passed validation already.
func (f *Facade) Generate(framework string, cfg codegen.Config) (string, error) {
	if err := f.initialiseErr; err != nil {
		return "", err
	}
	gen, err := f.registry.Get(framework)
	if err != nil {
		return "", err
	}
	return codegen.Document(gen, cfg), nil
}

// Frameworks lists the registered framework names, sorted.
func (f *Facade) Frameworks() []string {
	return f.registry.List()
}

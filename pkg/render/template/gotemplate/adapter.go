package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-netgen/pkg/render/template"
)

const templateExt = ".tpl"

// pongo2 keeps filters in a process-wide table.
var filtersMu sync.Mutex

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	name       string
	templates  fs.FS
	preload    []string
	filters    map[string]pongo2.FilterFunction
	globalData pongo2.Context
}

// WithName labels the underlying template set so errors say which engine
// failed.
func WithName(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.name = trimmed
		}
	}
}

// WithFS loads ".tpl" templates from files, typically an embed.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithPreload parses the named templates during New so that a broken
// template fails construction instead of the first render.
func WithPreload(names ...string) Option {
	return func(cfg *config) {
		cfg.preload = append(cfg.preload, names...)
	}
}

// WithFilters makes filters available to templates. A name that is already
// registered keeps its first definition.
func WithFilters(filters map[string]pongo2.FilterFunction) Option {
	return func(cfg *config) {
		if cfg.filters == nil {
			cfg.filters = make(map[string]pongo2.FilterFunction, len(filters))
		}
		for name, fn := range filters {
			if name = strings.TrimSpace(name); name != "" && fn != nil {
				cfg.filters[name] = fn
			}
		}
	}
}

// WithGlobalData sets values every render sees. Per-render data wins on
// conflicting keys.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if cfg.globalData == nil {
			cfg.globalData = make(pongo2.Context, len(data))
		}
		for key, value := range data {
			if key = strings.TrimSpace(key); key != "" {
				cfg.globalData[key] = value
			}
		}
	}
}

// PythonFilters returns the filters used by the Python code templates.
func PythonFilters() map[string]pongo2.FilterFunction {
	return map[string]pongo2.FilterFunction{
		"pytuple": filterPyTuple,
	}
}

// Engine satisfies template.TemplateRenderer using a pongo2 template set.
type Engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine. A template source is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{name: "netgen"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	if cfg.templates == nil {
		return nil, errors.New("gotemplate: template fs is required")
	}

	if err := registerFilters(cfg.filters); err != nil {
		return nil, err
	}

	set := pongo2.NewSet(cfg.name, pongo2.NewFSLoader(cfg.templates))
	if len(cfg.globalData) > 0 {
		set.Globals = cfg.globalData
	}
	engine := &Engine{
		set:       set,
		templates: make(map[string]*pongo2.Template),
	}
	for _, name := range cfg.preload {
		if _, err := engine.lookup(name); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

// RenderTemplate renders the named template. Output is returned and copied
// to every writer in out.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: convert data for %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("gotemplate: execute %q: %w", name, err)
	}
	rendered := buf.String()
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	path := name
	if !strings.HasSuffix(path, templateExt) {
		path += templateExt
	}

	e.mu.RLock()
	tmpl, ok := e.templates[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load template %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}

func registerFilters(filters map[string]pongo2.FilterFunction) error {
	filtersMu.Lock()
	defer filtersMu.Unlock()
	for name, fn := range filters {
		if pongo2.FilterExists(name) {
			continue
		}
		if err := pongo2.RegisterFilter(name, fn); err != nil {
			return fmt.Errorf("gotemplate: register filter %q: %w", name, err)
		}
	}
	return nil
}

// toContext accepts maps as they are and routes any other value through
// JSON, so struct fields arrive under their json names.
func toContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		return pongo2.Context(v), nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	out := pongo2.Context{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func filterPyTuple(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(PyTuple(in.Interface())), nil
}

// PyTuple renders a slice or array as a Python tuple literal: [3, 32] becomes
// "(3, 32)" and a single element keeps its trailing comma. Scalars are
// treated as one-element tuples.
func PyTuple(value any) string {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return "()"
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Sprintf("(%v,)", value)
	}
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = fmt.Sprint(rv.Index(i).Interface())
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

package codegen

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-netgen/pkg/layer"
)

// Mode selects the code shape of a multi-mode generator.
type Mode string

const (
	ModeSequential  Mode = "Sequential"
	ModeFunctional  Mode = "Functional"
	ModeSubclassing Mode = "Subclassing"
)

// Modes lists the supported code shapes, default first.
func Modes() []Mode {
	return []Mode{ModeSequential, ModeFunctional, ModeSubclassing}
}

// ParseMode resolves a mode name case-insensitively. Empty and unknown names
// resolve to ModeSequential.
func ParseMode(name string) Mode {
	trimmed := strings.TrimSpace(name)
	for _, mode := range Modes() {
		if strings.EqualFold(string(mode), trimmed) {
			return mode
		}
	}
	return ModeSequential
}

// Config is the input of a generator: a validated layer sequence plus the
// requested code shape.
type Config struct {
	Layers layer.Sequence `json:"layers"`
	Mode   Mode           `json:"mode,omitempty"`
}

// ResolvedMode returns the mode generators should honour.
func (c Config) ResolvedMode() Mode {
	return ParseMode(string(c.Mode))
}

// Generator lowers a Config into framework source text. None of the methods
// may fail for a config that passed validation.
type Generator interface {
	// Name is the framework identifier the registry keys on.
	Name() string
	// Imports returns the static import block.
	Imports() string
	// Model returns the layer-by-layer model construction code.
	Model(cfg Config) string
	// Training returns a template training routine.
	Training(cfg Config) string
}

// Document joins the three generator sections with blank lines.
func Document(gen Generator, cfg Config) string {
	return gen.Imports() + "\n\n" + gen.Model(cfg) + "\n\n" + gen.Training(cfg)
}

// FormatFloat renders a float the way Python literals read: 0.2 stays 0.2
// and 1 stays 1.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FinalOutput returns the Output layer closing the sequence, if any.
func FinalOutput(layers []layer.Layer) (layer.Output, bool) {
	if len(layers) == 0 {
		return layer.Output{}, false
	}
	out, ok := layers[len(layers)-1].(layer.Output)
	return out, ok
}

// LeadingInput returns the Input layer opening the sequence, if any.
func LeadingInput(layers []layer.Layer) (layer.Input, bool) {
	if len(layers) == 0 {
		return layer.Input{}, false
	}
	in, ok := layers[0].(layer.Input)
	return in, ok
}

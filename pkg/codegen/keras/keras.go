// Package keras generates Keras model code in three shapes: a Sequential
// stack, a Functional call chain and a Subclassing model class.
package keras

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-netgen/pkg/codegen"
	"github.com/goliatone/go-netgen/pkg/layer"
	"github.com/goliatone/go-netgen/pkg/render/template/gotemplate"
)

// Name is the framework identifier the generator registers under.
const Name = "keras"

const trainingTemplate = "training"

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// Generator implements codegen.Generator for one topology family.
type Generator struct {
	family layer.Family
	engine *gotemplate.Engine
}

var _ codegen.Generator = (*Generator)(nil)

// New builds a Keras generator for family. It fails only when the embedded
// templates cannot be parsed.
func New(family layer.Family) (*Generator, error) {
	templates, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("keras: templates: %w", err)
	}
	g := &Generator{family: family}
	g.engine, err = gotemplate.New(
		gotemplate.WithName(Name),
		gotemplate.WithFS(templates),
		gotemplate.WithFilters(gotemplate.PythonFilters()),
		gotemplate.WithGlobalData(map[string]any{
			"family":      string(family),
			"model_class": g.className(),
		}),
		gotemplate.WithPreload(trainingTemplate),
	)
	if err != nil {
		return nil, fmt.Errorf("keras: %w", err)
	}
	return g, nil
}

// Name implements codegen.Generator.
func (g *Generator) Name() string { return Name }

// Family reports the topology family the generator targets.
func (g *Generator) Family() layer.Family { return g.family }

// Imports implements codegen.Generator. CNN code keeps the channels-first
// shapes of the layer records, so the data format is switched up front.
func (g *Generator) Imports() string {
	imports := "import keras\nfrom keras import layers"
	if g.family == layer.CNN {
		imports += "\n\nkeras.config.set_image_data_format(\"channels_first\")"
	}
	return imports
}

// Model implements codegen.Generator, dispatching on the configured mode.
func (g *Generator) Model(cfg codegen.Config) string {
	switch cfg.ResolvedMode() {
	case codegen.ModeFunctional:
		return g.functional(cfg.Layers)
	case codegen.ModeSubclassing:
		return g.subclassing(cfg.Layers)
	default:
		return g.sequential(cfg.Layers)
	}
}

// Training implements codegen.Generator.
func (g *Generator) Training(cfg codegen.Config) string {
	data := map[string]any{
		"subclassing": cfg.ResolvedMode() == codegen.ModeSubclassing,
		"input_shape": []int{},
		"output_size": 0,
	}
	if in, ok := codegen.LeadingInput(cfg.Layers); ok {
		data["input_shape"] = in.Shape
	}
	if out, ok := codegen.FinalOutput(cfg.Layers); ok {
		data["output_size"] = out.Size
	}

	out, err := g.engine.RenderTemplate(trainingTemplate, data)
	if err != nil {
		// the template is embedded and parsed in New
		panic(fmt.Sprintf("keras: render training routine: %v", err))
	}
	return out
}

func (g *Generator) className() string {
	return string(g.family) + "Model"
}

func (g *Generator) sequential(layers layer.Sequence) string {
	var b strings.Builder
	b.WriteString("model = keras.Sequential()")
	for _, l := range layers {
		if in, ok := l.(layer.Input); ok {
			fmt.Fprintf(&b, "\nmodel.add(%s)", inputExpr(in))
			continue
		}
		if expr, ok := layerExpr(l); ok {
			fmt.Fprintf(&b, "\nmodel.add(%s)", expr)
		}
	}
	return b.String()
}

func (g *Generator) functional(layers layer.Sequence) string {
	var b strings.Builder
	prev := "inputs"
	for _, l := range layers {
		if in, ok := l.(layer.Input); ok {
			fmt.Fprintf(&b, "inputs = %s\n", inputExpr(in))
			continue
		}
		if expr, ok := layerExpr(l); ok {
			fmt.Fprintf(&b, "x = %s(%s)\n", expr, prev)
			prev = "x"
		}
	}
	fmt.Fprintf(&b, "\nmodel = keras.Model(inputs=inputs, outputs=%s)", prev)
	return b.String()
}

func (g *Generator) subclassing(layers layer.Sequence) string {
	var init, call strings.Builder
	for i, l := range layers {
		expr, ok := layerExpr(l)
		if !ok {
			continue
		}
		field := fmt.Sprintf("%s%d", fieldPrefix(l), i)
		fmt.Fprintf(&init, "        self.%s = %s\n", field, expr)
		fmt.Fprintf(&call, "        x = self.%s(x)\n", field)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "class %s(keras.Model):\n", g.className())
	b.WriteString("    def __init__(self):\n")
	b.WriteString("        super().__init__()\n")
	b.WriteString(init.String())
	b.WriteString("\n    def call(self, inputs):\n")
	b.WriteString("        x = inputs\n")
	b.WriteString(call.String())
	b.WriteString("        return x")
	return b.String()
}

func inputExpr(in layer.Input) string {
	return fmt.Sprintf("layers.Input(shape=%s)", gotemplate.PyTuple(in.Shape))
}

// layerExpr returns the constructor expression of every stateful layer.
// Input has none and reports false.
func layerExpr(l layer.Layer) (string, bool) {
	switch v := l.(type) {
	case layer.Conv:
		return fmt.Sprintf("layers.Conv2D(%d, %s)", v.Size, gotemplate.PyTuple(v.Kernel)), true
	case layer.Pool:
		return fmt.Sprintf("layers.MaxPooling2D(pool_size=%s, strides=%s)",
			gotemplate.PyTuple(v.Kernel), gotemplate.PyTuple(v.Stride)), true
	case layer.Padding:
		return fmt.Sprintf("layers.ZeroPadding2D(padding=%s)", gotemplate.PyTuple(v.Padding)), true
	case layer.Flatten:
		return "layers.Flatten()", true
	case layer.Dense:
		return denseExpr(v.Size, v.Activation), true
	case layer.Dropout:
		return fmt.Sprintf("layers.Dropout(%s)", codegen.FormatFloat(v.Rate)), true
	case layer.Output:
		return denseExpr(v.Size, v.Activation), true
	default:
		return "", false
	}
}

func denseExpr(size int, activation layer.Activation) string {
	return fmt.Sprintf("layers.Dense(%d, activation='%s')", size, strings.ToLower(string(activation)))
}

func fieldPrefix(l layer.Layer) string {
	if l.Kind() == layer.KindOutput {
		return "dense"
	}
	return strings.ToLower(string(l.Kind()))
}

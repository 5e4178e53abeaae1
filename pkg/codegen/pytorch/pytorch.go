// Package pytorch generates a single nn.Sequential model plus a plain
// training loop. It ignores the requested mode.
package pytorch

import (
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/goliatone/go-netgen/pkg/codegen"
	"github.com/goliatone/go-netgen/pkg/layer"
	"github.com/goliatone/go-netgen/pkg/render/template/gotemplate"
)

// Name is the framework identifier the generator registers under.
const Name = "pytorch"

const (
	trainingTemplate = "training"
	indent           = "    "
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// Generator implements codegen.Generator for one topology family.
type Generator struct {
	family layer.Family
	engine *gotemplate.Engine
}

var _ codegen.Generator = (*Generator)(nil)

// New builds a PyTorch generator for family.
func New(family layer.Family) (*Generator, error) {
	templates, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("pytorch: templates: %w", err)
	}
	engine, err := gotemplate.New(
		gotemplate.WithName(Name),
		gotemplate.WithFS(templates),
		gotemplate.WithPreload(trainingTemplate),
	)
	if err != nil {
		return nil, fmt.Errorf("pytorch: %w", err)
	}
	return &Generator{family: family, engine: engine}, nil
}

// Name implements codegen.Generator.
func (g *Generator) Name() string { return Name }

// Family reports the topology family the generator targets.
func (g *Generator) Family() layer.Family { return g.family }

// Imports implements codegen.Generator.
func (g *Generator) Imports() string {
	return "import torch\nimport torch.nn as nn\nimport torch.optim as optim"
}

// Model implements codegen.Generator.
func (g *Generator) Model(cfg codegen.Config) string {
	var b strings.Builder
	b.WriteString("model = nn.Sequential(\n")
	for _, entry := range lower(cfg.Layers) {
		b.WriteString(indent)
		b.WriteString(entry)
		if !strings.HasPrefix(entry, "#") {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String()
}

// Training implements codegen.Generator.
func (g *Generator) Training(cfg codegen.Config) string {
	data := map[string]any{
		"input_dims":  "",
		"output_size": 0,
		"lazy":        usesLazy(cfg.Layers),
	}
	if in, ok := codegen.LeadingInput(cfg.Layers); ok {
		data["input_dims"] = joinInts(in.Shape)
	}
	if out, ok := codegen.FinalOutput(cfg.Layers); ok {
		data["output_size"] = out.Size
	}

	out, err := g.engine.RenderTemplate(trainingTemplate, data)
	if err != nil {
		// the template is embedded and parsed in New
		panic(fmt.Sprintf("pytorch: render training routine: %v", err))
	}
	return out
}

// shapeState follows what is statically known about the tensor flowing
// between entries. features is zero when the flattened width is unknown.
type shapeState struct {
	channels int
	features int
}

// lower turns layers into nn.Sequential entries. Input becomes a comment and
// Dense/Output may expand to a linear module plus an activation module.
func lower(layers layer.Sequence) []string {
	var (
		state   shapeState
		entries []string
	)
	for _, l := range layers {
		switch v := l.(type) {
		case layer.Input:
			entries = append(entries, "# input shape: "+gotemplate.PyTuple(v.Shape))
			switch len(v.Shape) {
			case 1:
				state.features = v.Shape[0]
			case 0:
			default:
				state.channels = v.Shape[0]
			}
		case layer.Conv:
			entries = append(entries, fmt.Sprintf("nn.Conv2d(%d, %d, kernel_size=%s)",
				state.channels, v.Size, gotemplate.PyTuple(v.Kernel)))
			state.channels = v.Size
			state.features = 0
		case layer.Pool:
			entries = append(entries, fmt.Sprintf("nn.MaxPool2d(kernel_size=%s, stride=%s)",
				gotemplate.PyTuple(v.Kernel), gotemplate.PyTuple(v.Stride)))
			state.features = 0
		case layer.Padding:
			// ZeroPad2d takes (left, right, top, bottom)
			entries = append(entries, fmt.Sprintf("nn.ZeroPad2d((%d, %d, %d, %d))",
				v.Padding[1], v.Padding[1], v.Padding[0], v.Padding[0]))
			state.features = 0
		case layer.Flatten:
			entries = append(entries, "nn.Flatten()")
			state.features = 0
		case layer.Dense:
			entries = append(entries, linear(&state, v.Size, v.Activation)...)
		case layer.Dropout:
			entries = append(entries, fmt.Sprintf("nn.Dropout(p=%s)", codegen.FormatFloat(v.Rate)))
		case layer.Output:
			entries = append(entries, linear(&state, v.Size, v.Activation)...)
		}
	}
	return entries
}

func linear(state *shapeState, size int, activation layer.Activation) []string {
	var entries []string
	if state.features > 0 {
		entries = append(entries, fmt.Sprintf("nn.Linear(%d, %d)", state.features, size))
	} else {
		entries = append(entries, fmt.Sprintf("nn.LazyLinear(%d)", size))
	}
	state.features = size
	if module, ok := activationModule(activation); ok {
		entries = append(entries, module)
	}
	return entries
}

// activationModule maps an activation to its torch.nn module. Linear has no
// module; unknown names pass through as nn.<Name>().
func activationModule(activation layer.Activation) (string, bool) {
	switch strings.ToLower(string(activation)) {
	case "", "linear":
		return "", false
	case "relu":
		return "nn.ReLU()", true
	case "sigmoid":
		return "nn.Sigmoid()", true
	case "tanh":
		return "nn.Tanh()", true
	case "softmax":
		return "nn.Softmax(dim=1)", true
	default:
		return "nn." + string(activation) + "()", true
	}
}

func usesLazy(layers layer.Sequence) bool {
	for _, entry := range lower(layers) {
		if strings.HasPrefix(entry, "nn.LazyLinear(") {
			return true
		}
	}
	return false
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

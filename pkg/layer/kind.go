package layer

import (
	"fmt"
	"strings"
)

// Kind discriminates the layer variants. The string value doubles as the
// "type" field of the wire format.
type Kind string

const (
	KindInput   Kind = "Input"
	KindConv    Kind = "Conv"
	KindPool    Kind = "Pool"
	KindPadding Kind = "Padding"
	KindFlatten Kind = "Flatten"
	KindDense   Kind = "Dense"
	KindDropout Kind = "Dropout"
	KindOutput  Kind = "Output"
)

var allKinds = []Kind{
	KindInput, KindConv, KindPool, KindPadding,
	KindFlatten, KindDense, KindDropout, KindOutput,
}

// Kinds returns every layer kind in declaration order.
func Kinds() []Kind {
	return append([]Kind(nil), allKinds...)
}

// ParseKind resolves a kind name case-insensitively.
func ParseKind(name string) (Kind, error) {
	trimmed := strings.TrimSpace(name)
	for _, kind := range allKinds {
		if strings.EqualFold(string(kind), trimmed) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("layer: unknown layer type %q", name)
}

// Activation selects the activation function of Dense and Output layers.
// Generators render the value as given; they do not check it.
type Activation string

const (
	ReLU    Activation = "ReLU"
	Sigmoid Activation = "Sigmoid"
	Tanh    Activation = "Tanh"
	Softmax Activation = "Softmax"
	Linear  Activation = "Linear"
)

// Activations lists the selectable activation functions.
func Activations() []Activation {
	return []Activation{ReLU, Sigmoid, Tanh, Softmax, Linear}
}

// ParseActivation resolves an activation name case-insensitively.
func ParseActivation(name string) (Activation, error) {
	trimmed := strings.TrimSpace(name)
	for _, activation := range Activations() {
		if strings.EqualFold(string(activation), trimmed) {
			return activation, nil
		}
	}
	return "", fmt.Errorf("layer: unknown activation %q", name)
}

// Family is one of the supported network shapes.
type Family string

const (
	FCN Family = "FCN"
	CNN Family = "CNN"
)

// ParseFamily resolves a family name case-insensitively.
func ParseFamily(name string) (Family, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case string(FCN):
		return FCN, nil
	case string(CNN):
		return CNN, nil
	default:
		return "", fmt.Errorf("layer: unknown topology family %q", name)
	}
}

// Kinds lists the layer kinds a family accepts, in editor order.
func (f Family) Kinds() []Kind {
	if f == CNN {
		return Kinds()
	}
	return []Kind{KindInput, KindDense, KindDropout, KindOutput}
}

// Accepts reports whether kind belongs to the family.
func (f Family) Accepts(kind Kind) bool {
	for _, k := range f.Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// InputRank is the length of the Input shape vector for the family.
func (f Family) InputRank() int {
	if f == CNN {
		return 3
	}
	return 1
}

// Empty returns a default-valued layer of kind shaped for the family.
func (f Family) Empty(kind Kind) Layer {
	if kind == KindInput {
		shape := make([]int, f.InputRank())
		for i := range shape {
			shape[i] = 1
		}
		return Input{Shape: shape}
	}
	return Empty(kind)
}

// Limits returns the family's bounds table.
func (f Family) Limits() Limits {
	if f == CNN {
		return CNNLimits
	}
	return FCNLimits
}

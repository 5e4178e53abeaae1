package layer

// Layer is one entry of a topology. The interface is sealed: only the
// variants declared in this package implement it.
type Layer interface {
	Kind() Kind
	clone() Layer
}

// Input carries the shape vector: channels, height and width for CNN, the
// feature count for FCN.
type Input struct {
	Shape []int
}

// Conv is a 2D convolution producing Size output channels.
type Conv struct {
	Size   int
	Kernel [2]int
}

// Pool is a 2D max pooling window.
type Pool struct {
	Stride [2]int
	Kernel [2]int
}

// Padding zero-pads both spatial dimensions.
type Padding struct {
	Padding [2]int
}

// Flatten collapses the spatial dimensions. It has no parameters.
type Flatten struct{}

// Dense is a fully-connected layer.
type Dense struct {
	Size       int
	Activation Activation
}

// Dropout zeroes a Rate fraction of its inputs during training.
type Dropout struct {
	Rate float64
}

// Output is the final fully-connected layer of the network.
type Output struct {
	Size       int
	Activation Activation
}

func (Input) Kind() Kind   { return KindInput }
func (Conv) Kind() Kind    { return KindConv }
func (Pool) Kind() Kind    { return KindPool }
func (Padding) Kind() Kind { return KindPadding }
func (Flatten) Kind() Kind { return KindFlatten }
func (Dense) Kind() Kind   { return KindDense }
func (Dropout) Kind() Kind { return KindDropout }
func (Output) Kind() Kind  { return KindOutput }

func (l Input) clone() Layer {
	return Input{Shape: append([]int(nil), l.Shape...)}
}

func (l Conv) clone() Layer    { return l }
func (l Pool) clone() Layer    { return l }
func (l Padding) clone() Layer { return l }
func (l Flatten) clone() Layer { return l }
func (l Dense) clone() Layer   { return l }
func (l Dropout) clone() Layer { return l }
func (l Output) clone() Layer  { return l }

// Sequence is an ordered list of layers, input first.
type Sequence []Layer

// Kinds returns the discriminators of the sequence in order.
func (s Sequence) Kinds() []Kind {
	out := make([]Kind, len(s))
	for i, l := range s {
		out[i] = l.Kind()
	}
	return out
}

// Clone returns a full structural copy of layers. The result shares no
// slices with the argument, so either side can be mutated freely.
func Clone(layers []Layer) Sequence {
	if layers == nil {
		return nil
	}
	out := make(Sequence, len(layers))
	for i, l := range layers {
		if l == nil {
			continue
		}
		out[i] = l.clone()
	}
	return out
}

// Empty returns a freshly allocated default-valued layer of kind. Input
// defaults to the CNN shape; use Family.Empty for a family-shaped input.
// Unknown kinds yield Flatten, the only parameterless variant.
func Empty(kind Kind) Layer {
	switch kind {
	case KindInput:
		return Input{Shape: []int{1, 1, 1}}
	case KindConv:
		return Conv{Size: 1, Kernel: [2]int{1, 1}}
	case KindPool:
		return Pool{Stride: [2]int{1, 1}, Kernel: [2]int{1, 1}}
	case KindPadding:
		return Padding{Padding: [2]int{1, 1}}
	case KindDense:
		return Dense{Size: 1, Activation: ReLU}
	case KindDropout:
		return Dropout{Rate: 0.01}
	case KindOutput:
		return Output{Size: 1, Activation: ReLU}
	default:
		return Flatten{}
	}
}

// Package topology decides whether an ordered layer sequence describes a
// legal network for its family. Validation is structural only: it checks the
// order and multiplicity of layer kinds and never looks at numeric values.
package topology

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-netgen/pkg/layer"
)

// Diagnostic messages, one per rule. The first violated rule wins.
const (
	MsgFirstNotInput       = "First layer must be an input layer"
	MsgInputNotFirst       = "Input layer must be the first layer"
	MsgLastNotOutput       = "Last layer must be an output layer"
	MsgOutputNotLast       = "Output layer must be the last layer"
	MsgDropoutAfterDense   = "Dropout layers must be preceded by a dense layer"
	MsgSingleFlatten       = "Only one flatten layer is allowed"
	MsgDenseAfterFlatten   = "Dense layers must come after a flatten layer"
	msgBeforeFlattenFormat = "%s layers must come before flatten layer"
)

// ErrViolation is matched by every ViolationError.
var ErrViolation = errors.New("topology: structural violation")

// ViolationError reports the first rule a sequence breaks.
type ViolationError struct {
	Family layer.Family
	Reason string
}

func (e *ViolationError) Error() string {
	return e.Reason
}

// Is lets errors.Is match ErrViolation.
func (e *ViolationError) Is(target error) bool {
	return target == ErrViolation
}

// Verdict is the outcome of a validation pass. Reason is empty when OK.
type Verdict struct {
	OK     bool
	Reason string
	Family layer.Family
}

// Err converts a failing verdict into a *ViolationError.
func (v Verdict) Err() error {
	if v.OK {
		return nil
	}
	return &ViolationError{Family: v.Family, Reason: v.Reason}
}

func pass(family layer.Family) Verdict {
	return Verdict{OK: true, Family: family}
}

func fail(family layer.Family, reason string) Verdict {
	return Verdict{Family: family, Reason: reason}
}

// Validate dispatches to the validator of family.
func Validate(family layer.Family, layers []layer.Layer) Verdict {
	if family == layer.CNN {
		return ValidateCNN(layers)
	}
	return ValidateFCN(layers)
}

// ValidateFCN checks a fully-connected sequence against
// Input, (Dense | Dense Dropout)*, Output.
func ValidateFCN(layers []layer.Layer) Verdict {
	if !kindAt(layers, 0, layer.KindInput) {
		return fail(layer.FCN, MsgFirstNotInput)
	}
	for i := 1; i < len(layers); i++ {
		if kindAt(layers, i, layer.KindInput) {
			return fail(layer.FCN, MsgInputNotFirst)
		}
	}
	if !kindAt(layers, len(layers)-1, layer.KindOutput) {
		return fail(layer.FCN, MsgLastNotOutput)
	}
	for i := 1; i < len(layers)-1; i++ {
		if kindAt(layers, i, layer.KindOutput) {
			return fail(layer.FCN, MsgOutputNotLast)
		}
	}
	// index 0 is an Input here, so i-1 is always in range
	for i := 1; i < len(layers); i++ {
		if kindAt(layers, i, layer.KindDropout) && !kindAt(layers, i-1, layer.KindDense) {
			return fail(layer.FCN, MsgDropoutAfterDense)
		}
	}
	return pass(layer.FCN)
}

// ValidateCNN checks a convolutional sequence against
// Input, (Conv | Pool | Padding)*, Flatten?, (Dense | Dense Dropout)*, Output
// in a single pass over the middle layers.
func ValidateCNN(layers []layer.Layer) Verdict {
	if !kindAt(layers, 0, layer.KindInput) {
		return fail(layer.CNN, MsgFirstNotInput)
	}
	if !kindAt(layers, len(layers)-1, layer.KindOutput) {
		return fail(layer.CNN, MsgLastNotOutput)
	}

	flattenSeen := false
	for i := 1; i < len(layers)-1; i++ {
		switch l := layers[i].(type) {
		case layer.Input:
			return fail(layer.CNN, MsgInputNotFirst)
		case layer.Flatten:
			if flattenSeen {
				return fail(layer.CNN, MsgSingleFlatten)
			}
			flattenSeen = true
		case layer.Dropout:
			if !kindAt(layers, i-1, layer.KindDense) {
				return fail(layer.CNN, MsgDropoutAfterDense)
			}
		case layer.Dense:
			if !flattenSeen {
				return fail(layer.CNN, MsgDenseAfterFlatten)
			}
		case layer.Output:
			return fail(layer.CNN, MsgOutputNotLast)
		case layer.Conv, layer.Pool, layer.Padding:
			if flattenSeen {
				return fail(layer.CNN, fmt.Sprintf(msgBeforeFlattenFormat, l.Kind()))
			}
		default:
		}
	}
	return pass(layer.CNN)
}

func kindAt(layers []layer.Layer, i int, kind layer.Kind) bool {
	if i < 0 || i >= len(layers) || layers[i] == nil {
		return false
	}
	return layers[i].Kind() == kind
}

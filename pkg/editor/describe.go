package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-netgen/pkg/layer"
)

// Describe renders a one-line summary of l.
func Describe(l layer.Layer) string {
	switch v := l.(type) {
	case layer.Input:
		dims := make([]string, len(v.Shape))
		for i, d := range v.Shape {
			dims[i] = strconv.Itoa(d)
		}
		return "Input " + strings.Join(dims, "x")
	case layer.Conv:
		return fmt.Sprintf("Conv %d filters, kernel %dx%d", v.Size, v.Kernel[0], v.Kernel[1])
	case layer.Pool:
		return fmt.Sprintf("Pool kernel %dx%d, stride %dx%d", v.Kernel[0], v.Kernel[1], v.Stride[0], v.Stride[1])
	case layer.Padding:
		return fmt.Sprintf("Padding %dx%d", v.Padding[0], v.Padding[1])
	case layer.Flatten:
		return "Flatten"
	case layer.Dense:
		return fmt.Sprintf("Dense %d units, %s", v.Size, v.Activation)
	case layer.Dropout:
		return "Dropout " + strconv.FormatFloat(v.Rate, 'f', -1, 64)
	case layer.Output:
		return fmt.Sprintf("Output %d classes, %s", v.Size, v.Activation)
	case nil:
		return "<nil>"
	default:
		return string(l.Kind())
	}
}

// Summary lists the layers one per line, prefixed with their index.
func Summary(layers []layer.Layer) string {
	if len(layers) == 0 {
		return "(no layers)"
	}
	lines := make([]string, len(layers))
	for i, l := range layers {
		lines[i] = fmt.Sprintf("%2d  %s", i, Describe(l))
	}
	return strings.Join(lines, "\n")
}

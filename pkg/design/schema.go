package design

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-netgen/pkg/layer"
)

// Schemas holds the per-kind object schemas generated from a family's bounds
// table. Channels bounds the first Input dimension of a CNN and is nil for
// families without channels.
type Schemas struct {
	Family   layer.Family                    `json:"family"`
	Layers   map[layer.Kind]*openapi3.Schema `json:"layers"`
	Channels *openapi3.Schema                `json:"channels,omitempty"`
}

// Schema builds the layer schemas for family.
func Schema(family layer.Family) *Schemas {
	limits := family.Limits()
	out := &Schemas{
		Family: family,
		Layers: make(map[layer.Kind]*openapi3.Schema, len(family.Kinds())),
	}

	for _, kind := range family.Kinds() {
		schema := kindObject(kind)
		switch kind {
		case layer.KindInput:
			rank := int64(family.InputRank())
			schema.WithProperty("size", openapi3.NewArraySchema().
				WithItems(intRange(limits.Input.Size)).
				WithMinItems(rank).
				WithMaxItems(rank))
		case layer.KindConv:
			schema.WithProperty("size", intRange(limits.Conv.Size))
			schema.WithProperty("kernel", pair(limits.Conv.Kernel))
		case layer.KindPool:
			schema.WithProperty("stride", pair(limits.Pool.Stride))
			schema.WithProperty("kernel", pair(limits.Pool.Kernel))
		case layer.KindPadding:
			schema.WithProperty("padding", pair(limits.Padding.Pad))
		case layer.KindDense:
			schema.WithProperty("size", intRange(limits.Dense.Size))
			schema.WithProperty("activation", activationEnum())
		case layer.KindDropout:
			schema.WithProperty("rate", openapi3.NewFloat64Schema().
				WithMin(limits.Dropout.Rate.Min).
				WithMax(limits.Dropout.Rate.Max))
		case layer.KindOutput:
			schema.WithProperty("size", intRange(limits.Output.Size))
			schema.WithProperty("activation", activationEnum())
		}
		out.Layers[kind] = schema
	}

	if !limits.Input.Channels.IsZero() && family.InputRank() == 3 {
		out.Channels = intRange(limits.Input.Channels)
	}
	return out
}

// For returns the schema of kind, or nil when the family does not accept it.
func (s *Schemas) For(kind layer.Kind) *openapi3.Schema {
	if s == nil {
		return nil
	}
	return s.Layers[kind]
}

func kindObject(kind layer.Kind) *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("type", openapi3.NewStringSchema().WithEnum(string(kind)))
	schema.Required = []string{"type"}
	return schema
}

func intRange(r layer.Range) *openapi3.Schema {
	return openapi3.NewIntegerSchema().WithMin(r.Min).WithMax(r.Max)
}

func pair(r layer.Range) *openapi3.Schema {
	return openapi3.NewArraySchema().
		WithItems(intRange(r)).
		WithMinItems(2).
		WithMaxItems(2)
}

func activationEnum() *openapi3.Schema {
	values := make([]any, 0, len(layer.Activations()))
	for _, activation := range layer.Activations() {
		values = append(values, string(activation))
	}
	return openapi3.NewStringSchema().WithEnum(values...)
}

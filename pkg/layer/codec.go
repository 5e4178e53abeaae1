package layer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// wireLayer is the flat JSON shape shared by every variant. Only the fields
// relevant to Type are populated; missing fields fall back to Empty.
type wireLayer struct {
	Type       string          `json:"type"`
	Size       json.RawMessage `json:"size,omitempty"`
	Kernel     *[2]int         `json:"kernel,omitempty"`
	Stride     *[2]int         `json:"stride,omitempty"`
	Padding    *[2]int         `json:"padding,omitempty"`
	Activation Activation      `json:"activation,omitempty"`
	Rate       *float64        `json:"rate,omitempty"`
}

// Encode flattens a layer into its wire map. A one-dimensional Input shape
// is written as a scalar.
func Encode(l Layer) map[string]any {
	out := map[string]any{"type": string(l.Kind())}
	switch v := l.(type) {
	case Input:
		if len(v.Shape) == 1 {
			out["size"] = v.Shape[0]
		} else {
			out["size"] = append([]int(nil), v.Shape...)
		}
	case Conv:
		out["size"] = v.Size
		out["kernel"] = v.Kernel[:]
	case Pool:
		out["stride"] = v.Stride[:]
		out["kernel"] = v.Kernel[:]
	case Padding:
		out["padding"] = v.Padding[:]
	case Flatten:
	case Dense:
		out["size"] = v.Size
		out["activation"] = string(v.Activation)
	case Dropout:
		out["rate"] = v.Rate
	case Output:
		out["size"] = v.Size
		out["activation"] = string(v.Activation)
	}
	return out
}

// Decode builds a layer from a wire map such as one produced by Encode or by
// a generic JSON/YAML decoder.
func Decode(raw map[string]any) (Layer, error) {
	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("layer: encode wire map: %w", err)
	}
	var w wireLayer
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("layer: decode wire map: %w", err)
	}
	return w.layer()
}

// MarshalJSON encodes the sequence as an array of wire objects.
func (s Sequence) MarshalJSON() ([]byte, error) {
	out := make([]map[string]any, 0, len(s))
	for i, l := range s {
		if l == nil {
			return nil, fmt.Errorf("layer: nil layer at index %d", i)
		}
		out = append(out, Encode(l))
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an array of wire objects.
func (s *Sequence) UnmarshalJSON(data []byte) error {
	var wire []wireLayer
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("layer: decode sequence: %w", err)
	}
	out := make(Sequence, 0, len(wire))
	for i, w := range wire {
		l, err := w.layer()
		if err != nil {
			return fmt.Errorf("layer: index %d: %w", i, err)
		}
		out = append(out, l)
	}
	*s = out
	return nil
}

func (w wireLayer) layer() (Layer, error) {
	kind, err := ParseKind(w.Type)
	if err != nil {
		return nil, err
	}

	switch base := Empty(kind).(type) {
	case Input:
		if len(w.Size) > 0 {
			shape, err := decodeShape(w.Size)
			if err != nil {
				return nil, err
			}
			base.Shape = shape
		}
		return base, nil
	case Conv:
		if err := decodeScalar(w.Size, &base.Size); err != nil {
			return nil, err
		}
		if w.Kernel != nil {
			base.Kernel = *w.Kernel
		}
		return base, nil
	case Pool:
		if w.Stride != nil {
			base.Stride = *w.Stride
		}
		if w.Kernel != nil {
			base.Kernel = *w.Kernel
		}
		return base, nil
	case Padding:
		if w.Padding != nil {
			base.Padding = *w.Padding
		}
		return base, nil
	case Dense:
		if err := decodeScalar(w.Size, &base.Size); err != nil {
			return nil, err
		}
		if w.Activation != "" {
			base.Activation = w.Activation
		}
		return base, nil
	case Dropout:
		if w.Rate != nil {
			base.Rate = *w.Rate
		}
		return base, nil
	case Output:
		if err := decodeScalar(w.Size, &base.Size); err != nil {
			return nil, err
		}
		if w.Activation != "" {
			base.Activation = w.Activation
		}
		return base, nil
	default:
		return base, nil
	}
}

func decodeShape(raw json.RawMessage) ([]int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var shape []int
		if err := json.Unmarshal(trimmed, &shape); err != nil {
			return nil, fmt.Errorf("layer: input size: %w", err)
		}
		return shape, nil
	}
	var n int
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return nil, fmt.Errorf("layer: input size: %w", err)
	}
	return []int{n}, nil
}

func decodeScalar(raw json.RawMessage, dst *int) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("layer: size: %w", err)
	}
	return nil
}

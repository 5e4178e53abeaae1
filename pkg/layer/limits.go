package layer

import "math"

// Range is an inclusive numeric bound.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Clamp pins v to the range.
func (r Range) Clamp(v float64) float64 {
	return math.Min(math.Max(v, r.Min), r.Max)
}

// ClampInt pins v to the range, rounding the bounds inwards.
func (r Range) ClampInt(v int) int {
	lo, hi := int(math.Ceil(r.Min)), int(math.Floor(r.Max))
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsZero reports whether the range is unset, which marks a field the family
// does not use.
func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// InputLimits bounds the Input shape. Channels applies to the first CNN
// dimension only; Size applies to every other dimension.
type InputLimits struct {
	Channels Range `json:"channels"`
	Size     Range `json:"size"`
}

type ConvLimits struct {
	Size   Range `json:"size"`
	Kernel Range `json:"kernel"`
}

type PoolLimits struct {
	Stride Range `json:"stride"`
	Kernel Range `json:"kernel"`
}

type PaddingLimits struct {
	Pad Range `json:"pad"`
}

type SizeLimits struct {
	Size Range `json:"size"`
}

type RateLimits struct {
	Rate Range `json:"rate"`
}

// Limits is the bounds table of one family. It is plain data consumed by the
// editing layer; the validator never reads it.
type Limits struct {
	Input   InputLimits   `json:"input"`
	Conv    ConvLimits    `json:"conv"`
	Pool    PoolLimits    `json:"pool"`
	Padding PaddingLimits `json:"padding"`
	Dense   SizeLimits    `json:"dense"`
	Dropout RateLimits    `json:"dropout"`
	Output  SizeLimits    `json:"output"`
}

// CNNLimits bounds the convolutional family.
var CNNLimits = Limits{
	Input: InputLimits{
		Channels: Range{Min: 1, Max: 512},
		Size:     Range{Min: 1, Max: 2048},
	},
	Conv: ConvLimits{
		Size:   Range{Min: 1, Max: 2048},
		Kernel: Range{Min: 1, Max: 13},
	},
	Pool: PoolLimits{
		Stride: Range{Min: 1, Max: 7},
		Kernel: Range{Min: 1, Max: 7},
	},
	Padding: PaddingLimits{Pad: Range{Min: 1, Max: 12}},
	Dense:   SizeLimits{Size: Range{Min: 1, Max: 2048}},
	Dropout: RateLimits{Rate: Range{Min: 0.01, Max: 1}},
	Output:  SizeLimits{Size: Range{Min: 1, Max: 1024}},
}

// FCNLimits bounds the fully-connected family. Convolution fields are unset.
var FCNLimits = Limits{
	Input:   InputLimits{Size: Range{Min: 1, Max: 2048}},
	Dense:   SizeLimits{Size: Range{Min: 1, Max: 2048}},
	Dropout: RateLimits{Rate: Range{Min: 0.01, Max: 1}},
	Output:  SizeLimits{Size: Range{Min: 1, Max: 1024}},
}

// InputDim returns the bound of the i-th Input dimension for a shape of the
// given rank.
func (l Limits) InputDim(rank, i int) Range {
	if rank == 3 && i == 0 && !l.Input.Channels.IsZero() {
		return l.Input.Channels
	}
	return l.Input.Size
}

// Clamp returns a copy of lay with every numeric field pinned to the table.
// Fields whose range is unset are left alone.
func (l Limits) Clamp(lay Layer) Layer {
	switch v := lay.(type) {
	case Input:
		shape := append([]int(nil), v.Shape...)
		for i := range shape {
			if r := l.InputDim(len(shape), i); !r.IsZero() {
				shape[i] = r.ClampInt(shape[i])
			}
		}
		return Input{Shape: shape}
	case Conv:
		v.Size = clampInt(l.Conv.Size, v.Size)
		v.Kernel = clampPair(l.Conv.Kernel, v.Kernel)
		return v
	case Pool:
		v.Stride = clampPair(l.Pool.Stride, v.Stride)
		v.Kernel = clampPair(l.Pool.Kernel, v.Kernel)
		return v
	case Padding:
		v.Padding = clampPair(l.Padding.Pad, v.Padding)
		return v
	case Dense:
		v.Size = clampInt(l.Dense.Size, v.Size)
		return v
	case Dropout:
		if !l.Dropout.Rate.IsZero() {
			v.Rate = l.Dropout.Rate.Clamp(v.Rate)
		}
		return v
	case Output:
		v.Size = clampInt(l.Output.Size, v.Size)
		return v
	default:
		return lay
	}
}

func clampInt(r Range, v int) int {
	if r.IsZero() {
		return v
	}
	return r.ClampInt(v)
}

func clampPair(r Range, v [2]int) [2]int {
	return [2]int{clampInt(r, v[0]), clampInt(r, v[1])}
}

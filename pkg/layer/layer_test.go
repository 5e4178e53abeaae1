package layer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-netgen/pkg/layer"
)

func TestEmpty_Defaults(t *testing.T) {
	cases := map[layer.Kind]layer.Layer{
		layer.KindInput:   layer.Input{Shape: []int{1, 1, 1}},
		layer.KindConv:    layer.Conv{Size: 1, Kernel: [2]int{1, 1}},
		layer.KindPool:    layer.Pool{Stride: [2]int{1, 1}, Kernel: [2]int{1, 1}},
		layer.KindPadding: layer.Padding{Padding: [2]int{1, 1}},
		layer.KindFlatten: layer.Flatten{},
		layer.KindDense:   layer.Dense{Size: 1, Activation: layer.ReLU},
		layer.KindDropout: layer.Dropout{Rate: 0.01},
		layer.KindOutput:  layer.Output{Size: 1, Activation: layer.ReLU},
	}

	for kind, want := range cases {
		got := layer.Empty(kind)
		if got.Kind() != kind {
			t.Fatalf("Empty(%s) kind = %s", kind, got.Kind())
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("Empty(%s) mismatch (-want +got):\n%s", kind, diff)
		}
	}
}

func TestFamilyEmpty_InputShape(t *testing.T) {
	if diff := cmp.Diff(layer.Input{Shape: []int{1}}, layer.FCN.Empty(layer.KindInput)); diff != "" {
		t.Fatalf("fcn input mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(layer.Input{Shape: []int{1, 1, 1}}, layer.CNN.Empty(layer.KindInput)); diff != "" {
		t.Fatalf("cnn input mismatch (-want +got):\n%s", diff)
	}
}

func TestEmpty_FreshAllocation(t *testing.T) {
	first := layer.Empty(layer.KindInput).(layer.Input)
	first.Shape[0] = 64

	second := layer.Empty(layer.KindInput).(layer.Input)
	if second.Shape[0] != 1 {
		t.Fatalf("expected independent default shape, got %v", second.Shape)
	}
}

func TestClone_DoesNotShareShapes(t *testing.T) {
	draft := layer.Sequence{
		layer.Input{Shape: []int{3, 32, 32}},
		layer.Conv{Size: 16, Kernel: [2]int{3, 3}},
		layer.Flatten{},
		layer.Output{Size: 10, Activation: layer.Softmax},
	}

	snapshot := layer.Clone(draft)
	if diff := cmp.Diff(draft, snapshot); diff != "" {
		t.Fatalf("clone mismatch (-want +got):\n%s", diff)
	}

	draft[0].(layer.Input).Shape[0] = 1
	draft[1] = layer.Dense{Size: 4, Activation: layer.Tanh}

	if got := snapshot[0].(layer.Input).Shape[0]; got != 3 {
		t.Fatalf("snapshot input channels changed to %d", got)
	}
	if snapshot[1].Kind() != layer.KindConv {
		t.Fatalf("snapshot layer replaced: %s", snapshot[1].Kind())
	}
}

func TestClone_Nil(t *testing.T) {
	if got := layer.Clone(nil); got != nil {
		t.Fatalf("expected nil clone, got %v", got)
	}
}

func TestFamily_Kinds(t *testing.T) {
	want := []layer.Kind{layer.KindInput, layer.KindDense, layer.KindDropout, layer.KindOutput}
	if diff := cmp.Diff(want, layer.FCN.Kinds()); diff != "" {
		t.Fatalf("fcn kinds mismatch (-want +got):\n%s", diff)
	}
	if len(layer.CNN.Kinds()) != 8 {
		t.Fatalf("expected 8 cnn kinds, got %d", len(layer.CNN.Kinds()))
	}
	if layer.FCN.Accepts(layer.KindConv) {
		t.Fatalf("fcn should not accept conv")
	}
	if !layer.CNN.Accepts(layer.KindPadding) {
		t.Fatalf("cnn should accept padding")
	}
}

func TestParseKindAndFamily(t *testing.T) {
	kind, err := layer.ParseKind(" dropout ")
	if err != nil || kind != layer.KindDropout {
		t.Fatalf("ParseKind = %q, %v", kind, err)
	}
	if _, err := layer.ParseKind("LSTM"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}

	family, err := layer.ParseFamily("cnn")
	if err != nil || family != layer.CNN {
		t.Fatalf("ParseFamily = %q, %v", family, err)
	}
	if _, err := layer.ParseFamily("rnn"); err == nil {
		t.Fatalf("expected error for unknown family")
	}
}

func TestParseActivation(t *testing.T) {
	activation, err := layer.ParseActivation("softmax")
	if err != nil || activation != layer.Softmax {
		t.Fatalf("ParseActivation = %q, %v", activation, err)
	}
	if _, err := layer.ParseActivation("swish"); err == nil {
		t.Fatalf("expected error for unknown activation")
	}
}

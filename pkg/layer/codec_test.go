package layer_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-netgen/pkg/layer"
)

func TestSequence_UnmarshalJSON(t *testing.T) {
	payload := `[
		{"type": "Input", "size": [3, 32, 32]},
		{"type": "conv", "size": 16, "kernel": [3, 3]},
		{"type": "Pool", "stride": [2, 2], "kernel": [2, 2]},
		{"type": "Padding", "padding": [1, 2]},
		{"type": "Flatten"},
		{"type": "Dense", "size": 64, "activation": "ReLU"},
		{"type": "Dropout", "rate": 0.25},
		{"type": "Output", "size": 10, "activation": "Softmax"}
	]`

	var got layer.Sequence
	if err := json.Unmarshal([]byte(payload), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := layer.Sequence{
		layer.Input{Shape: []int{3, 32, 32}},
		layer.Conv{Size: 16, Kernel: [2]int{3, 3}},
		layer.Pool{Stride: [2]int{2, 2}, Kernel: [2]int{2, 2}},
		layer.Padding{Padding: [2]int{1, 2}},
		layer.Flatten{},
		layer.Dense{Size: 64, Activation: layer.ReLU},
		layer.Dropout{Rate: 0.25},
		layer.Output{Size: 10, Activation: layer.Softmax},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestSequence_MissingFieldsUseDefaults(t *testing.T) {
	var got layer.Sequence
	if err := json.Unmarshal([]byte(`[{"type":"Conv","size":8},{"type":"Dense"}]`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := layer.Sequence{
		layer.Conv{Size: 8, Kernel: [2]int{1, 1}},
		layer.Dense{Size: 1, Activation: layer.ReLU},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestSequence_ScalarInput(t *testing.T) {
	seq := layer.Sequence{layer.Input{Shape: []int{4}}, layer.Output{Size: 2, Activation: layer.Sigmoid}}

	data, err := json.Marshal(seq)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"size":4,"type":"Input"},{"activation":"Sigmoid","size":2,"type":"Output"}]`
	if string(data) != want {
		t.Fatalf("marshal mismatch\nwant: %s\n got: %s", want, data)
	}

	var back layer.Sequence
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(seq, back); diff != "" {
		t.Fatalf("scalar input mismatch (-want +got):\n%s", diff)
	}
}

func TestSequence_UnknownType(t *testing.T) {
	var got layer.Sequence
	err := json.Unmarshal([]byte(`[{"type":"Input","size":4},{"type":"LSTM"}]`), &got)
	if err == nil {
		t.Fatalf("expected error for unknown layer type")
	}
	if !strings.Contains(err.Error(), "index 1") || !strings.Contains(err.Error(), `"LSTM"`) {
		t.Fatalf("error should name index and type, got %v", err)
	}
}

func TestSequence_MarshalNilLayer(t *testing.T) {
	if _, err := json.Marshal(layer.Sequence{nil}); err == nil {
		t.Fatalf("expected error for nil layer")
	}
}

func TestDecode_GenericMap(t *testing.T) {
	got, err := layer.Decode(map[string]any{
		"type":   "Pool",
		"stride": []any{2.0, 2.0},
		"kernel": []any{3, 3},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := layer.Pool{Stride: [2]int{2, 2}, Kernel: [2]int{3, 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
}

package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-netgen/pkg/layer"
)

// MustLoadSequence reads a JSON layer sequence fixture.
func MustLoadSequence(t *testing.T, path string) layer.Sequence {
	t.Helper()

	seq, err := LoadSequence(path)
	if err != nil {
		t.Fatalf("load sequence: %v", err)
	}
	return seq
}

// LoadSequence reads a JSON layer sequence fixture, returning an error for
// callers managing setup outside of *testing.T.
func LoadSequence(path string) (layer.Sequence, error) {
	if path == "" {
		return nil, errors.New("testsupport: sequence path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read sequence: %w", err)
	}
	var out layer.Sequence
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal sequence: %w", err)
	}
	return out, nil
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// AssertGolden compares got with the golden file at path, rewriting the file
// instead when UPDATE_GOLDENS is set.
func AssertGolden(t *testing.T, path, got string) {
	t.Helper()
	if WriteMaybeGolden(t, path, []byte(got)) {
		return
	}
	want := MustReadGoldenString(t, path)
	if diff := CompareGolden(want, got); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", filepath.Base(path), diff)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

// FCNExample is the canonical accepted fully-connected sequence:
// Input(4), Dense(8, ReLU), Dropout(0.2), Output(2, Softmax).
func FCNExample() layer.Sequence {
	return layer.Sequence{
		layer.Input{Shape: []int{4}},
		layer.Dense{Size: 8, Activation: layer.ReLU},
		layer.Dropout{Rate: 0.2},
		layer.Output{Size: 2, Activation: layer.Softmax},
	}
}

// CNNExample is the canonical accepted convolutional sequence:
// Input(3x32x32), Conv(16, 3x3), Pool(2x2, 2x2), Flatten, Dense(64, ReLU),
// Output(10, Softmax).
func CNNExample() layer.Sequence {
	return layer.Sequence{
		layer.Input{Shape: []int{3, 32, 32}},
		layer.Conv{Size: 16, Kernel: [2]int{3, 3}},
		layer.Pool{Stride: [2]int{2, 2}, Kernel: [2]int{2, 2}},
		layer.Flatten{},
		layer.Dense{Size: 64, Activation: layer.ReLU},
		layer.Output{Size: 10, Activation: layer.Softmax},
	}
}

package design_test

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-netgen/pkg/codegen"
	"github.com/goliatone/go-netgen/pkg/design"
	"github.com/goliatone/go-netgen/pkg/layer"
	"github.com/goliatone/go-netgen/pkg/testsupport"
)

func TestLoadFile_YAML(t *testing.T) {
	doc, err := design.LoadFile(filepath.Join("testdata", "cnn.yaml"))
	require.NoError(t, err)

	assert.Equal(t, layer.CNN, doc.Family)
	assert.Equal(t, codegen.ModeFunctional, doc.Mode)
	assert.Equal(t, "Small image classifier", doc.Title)
	assert.Equal(t, testsupport.CNNExample(), doc.Layers)
}

func TestLoadFile_JSON(t *testing.T) {
	doc, err := design.LoadFile(filepath.Join("testdata", "fcn.json"))
	require.NoError(t, err)

	assert.Equal(t, layer.FCN, doc.Family)
	assert.Equal(t, codegen.Mode(""), doc.Mode)
	assert.Equal(t, testsupport.FCNExample(), doc.Layers)
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"designs/tiny.yml": {Data: []byte("family: fcn\nlayers:\n  - {type: input, size: 2}\n  - {type: output, size: 1, activation: sigmoid}\n")},
	}

	doc, err := design.LoadFS(fsys, "designs/tiny.yml")
	require.NoError(t, err)
	assert.Equal(t, layer.Sequence{
		layer.Input{Shape: []int{2}},
		layer.Output{Size: 1, Activation: layer.Sigmoid},
	}, doc.Layers)

	_, err = design.LoadFS(fsys, "designs/missing.yml")
	assert.Error(t, err)
	_, err = design.LoadFS(nil, "designs/tiny.yml")
	assert.Error(t, err)
}

func TestParse_MissingFieldsUseFamilyDefaults(t *testing.T) {
	doc, err := design.Parse([]byte(`{"family":"fcn","layers":[{"type":"Input"},{"type":"Dense"},{"type":"Output"}]}`), "inline")
	require.NoError(t, err)
	assert.Equal(t, layer.Sequence{
		layer.Input{Shape: []int{1}},
		layer.Dense{Size: 1, Activation: layer.ReLU},
		layer.Output{Size: 1, Activation: layer.ReLU},
	}, doc.Layers)
}

func TestParse_BoundsIssues(t *testing.T) {
	data := []byte(`
family: CNN
layers:
  - type: Input
    size: [600, 32, 32]
  - type: Conv
    size: 16
    kernel: [3, 20]
  - type: Dropout
    rate: 1.5
  - type: Dense
    size: 2.5
  - type: Output
    size: 10
    activation: Softmax
`)

	_, err := design.Parse(data, "bounds.yaml")
	require.Error(t, err)

	var issueErr *design.IssueError
	require.True(t, errors.As(err, &issueErr))
	assert.Equal(t, "bounds.yaml", issueErr.Source)

	located := issueLocations(issueErr.Issues)
	assert.Contains(t, located, "0:/size/0")
	assert.Contains(t, located, "1:/kernel/1")
	assert.Contains(t, located, "2:/rate")
	assert.Contains(t, located, "3:/size")
	assert.NotContains(t, located, "4:/size")
	assert.Contains(t, err.Error(), "design: bounds.yaml: layer 0 /size/0")
}

func TestParse_KindOutsideFamily(t *testing.T) {
	data := []byte(`{"family":"FCN","layers":[{"type":"Input","size":4},{"type":"Conv","size":3,"kernel":[3,3]},{"type":"Output","size":1}]}`)

	_, err := design.Parse(data, "fcn.json")
	var issueErr *design.IssueError
	require.True(t, errors.As(err, &issueErr))
	require.Len(t, issueErr.Issues, 1)
	assert.Equal(t, design.Issue{Index: 1, Path: "/type", Message: "Conv layers are not available for FCN networks"}, issueErr.Issues[0])
}

func TestParse_UnknownKindAndActivation(t *testing.T) {
	data := []byte(`{"family":"FCN","layers":[{"type":"LSTM"},{"type":"Dense","size":3,"activation":"swish"}]}`)

	_, err := design.Parse(data, "inline")
	var issueErr *design.IssueError
	require.True(t, errors.As(err, &issueErr))

	located := issueLocations(issueErr.Issues)
	assert.Contains(t, located, "0:/type")
	assert.Contains(t, located, "1:/activation")
}

func TestParse_DocumentErrors(t *testing.T) {
	_, err := design.Parse([]byte("  \n"), "empty.yaml")
	assert.ErrorContains(t, err, "is empty")

	_, err = design.Parse([]byte("layers: [unclosed"), "broken.yaml")
	assert.ErrorContains(t, err, "invalid JSON or YAML")

	_, err = design.Parse([]byte(`{"family":"rnn","layers":[]}`), "family.json")
	var issueErr *design.IssueError
	require.True(t, errors.As(err, &issueErr))
	assert.Equal(t, -1, issueErr.Issues[0].Index)
	assert.Equal(t, "/family", issueErr.Issues[0].Path)
}

func TestParse_LeavesStructureToValidator(t *testing.T) {
	// bounds are fine, order is not
	doc, err := design.Parse([]byte(`{"family":"CNN","layers":[{"type":"Output","size":2},{"type":"Input","size":[1,8,8]}]}`), "inline")
	require.NoError(t, err)
	assert.Len(t, doc.Layers, 2)
}

func TestEncode_RoundTrip(t *testing.T) {
	docs := []design.Document{
		{Family: layer.CNN, Mode: codegen.ModeSubclassing, Title: "cnn", Description: "demo", Layers: testsupport.CNNExample()},
		{Family: layer.FCN, Layers: testsupport.FCNExample()},
	}

	for _, doc := range docs {
		for _, format := range []design.Format{design.FormatYAML, design.FormatJSON} {
			data, err := design.Encode(doc, format)
			require.NoError(t, err)

			got, err := design.Parse(data, "roundtrip."+string(format))
			require.NoError(t, err, string(data))
			assert.Equal(t, doc, got)
		}
	}
}

func TestEncode_Errors(t *testing.T) {
	_, err := design.Encode(design.Document{Family: layer.FCN}, design.Format("toml"))
	assert.Error(t, err)

	_, err = design.Encode(design.Document{Family: layer.FCN, Layers: layer.Sequence{nil}}, design.FormatJSON)
	assert.Error(t, err)
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	doc := design.Document{Family: layer.FCN, Title: "saved", Layers: testsupport.FCNExample()}

	for _, name := range []string{"design.json", "design.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, design.SaveFile(path, doc))

		loaded, err := design.LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, doc, loaded)
	}
	assert.Equal(t, design.FormatJSON, design.FormatFromPath("a/B.JSON"))
	assert.Equal(t, design.FormatYAML, design.FormatFromPath("a/b.yml"))
}

func TestSchema(t *testing.T) {
	fcn := design.Schema(layer.FCN)
	assert.Len(t, fcn.Layers, 4)
	assert.Nil(t, fcn.Channels)
	assert.Nil(t, fcn.For(layer.KindConv))

	cnn := design.Schema(layer.CNN)
	assert.Len(t, cnn.Layers, 8)
	require.NotNil(t, cnn.Channels)
	require.NotNil(t, cnn.For(layer.KindConv))

	payload, err := json.Marshal(cnn)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"maximum":13`)
	assert.Contains(t, string(payload), `"maximum":512`)
}

func issueLocations(issues []design.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, strconv.Itoa(issue.Index)+":"+issue.Path)
	}
	return out
}

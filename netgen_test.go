package netgen_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-netgen"
	"github.com/goliatone/go-netgen/pkg/codegen"
	"github.com/goliatone/go-netgen/pkg/layer"
	"github.com/goliatone/go-netgen/pkg/testsupport"
	"github.com/goliatone/go-netgen/pkg/topology"
)

func TestValidate(t *testing.T) {
	assert.True(t, netgen.Validate(layer.FCN, testsupport.FCNExample()).OK)

	verdict := netgen.Validate(layer.CNN, layer.Sequence{layer.Flatten{}})
	assert.False(t, verdict.OK)
	assert.Equal(t, topology.MsgFirstNotInput, verdict.Reason)
}

func TestGenerateCode(t *testing.T) {
	code, err := netgen.GenerateCode(layer.FCN, "Keras", netgen.Config{
		Layers: testsupport.FCNExample(),
		Mode:   codegen.ModeFunctional,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "import keras\n"), code)
	assert.Contains(t, code, "\n\n")
}

func TestGenerateCode_RejectsInvalidLayers(t *testing.T) {
	_, err := netgen.GenerateCode(layer.FCN, "keras", netgen.Config{
		Layers: layer.Sequence{layer.Input{Shape: []int{4}}},
	})
	assert.ErrorIs(t, err, topology.ErrViolation)

	var violation *topology.ViolationError
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, topology.MsgLastNotOutput, violation.Reason)
}

func TestGenerateCode_UnsupportedFramework(t *testing.T) {
	_, err := netgen.GenerateCode(layer.CNN, "caffe", netgen.Config{Layers: testsupport.CNNExample()})
	assert.ErrorIs(t, err, codegen.ErrUnsupportedFramework)
}

func TestWorkspaceRoundTrip(t *testing.T) {
	ws := netgen.NewWorkspace(layer.FCN)
	ws.SetDraft(testsupport.FCNExample())
	_, err := ws.Commit()
	require.NoError(t, err)

	fromWorkspace, err := ws.Generate("pytorch", codegen.ModeSequential)
	require.NoError(t, err)
	direct, err := netgen.NewGenerator(layer.FCN).Generate("pytorch", netgen.Config{Layers: testsupport.FCNExample()})
	require.NoError(t, err)
	assert.Equal(t, direct, fromWorkspace)
}

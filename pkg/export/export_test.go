package export_test

import (
	"bytes"
	"errors"
	"testing"

	theme "github.com/goliatone/go-theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-netgen/pkg/export"
	"github.com/goliatone/go-netgen/pkg/layer"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "cnn_keras.py", export.FileName(layer.CNN, "keras"))
	assert.Equal(t, "fcn_pytorch.py", export.FileName(layer.FCN, " PyTorch "))
	assert.Equal(t, "fcn_tf_lite.py", export.FileName(layer.FCN, "tf/lite"))
	assert.Equal(t, "fcn_model.py", export.FileName(layer.FCN, "///"))
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteText(&buf, "import torch\n\n\n"))
	assert.Equal(t, "import torch\n", buf.String())

	buf.Reset()
	require.NoError(t, export.WriteText(&buf, "x = 1"))
	assert.Equal(t, "x = 1\n", buf.String())

	assert.Error(t, export.WriteText(nil, "x"))
}

func TestHTML_EscapesCode(t *testing.T) {
	out, err := export.HTML("x = a < b and c > d\n", export.Page{
		Title:     "Iris",
		Family:    layer.FCN,
		Framework: "keras",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "<title>Iris</title>")
	assert.Contains(t, out, `<code class="language-python">x = a &lt; b and c &gt; d</code></pre>`)
	assert.Contains(t, out, `<p class="meta">FCN / keras</p>`)
	assert.NotContains(t, out, ":root {")
}

func TestHTML_SanitisesTitleAndDescription(t *testing.T) {
	out, err := export.HTML("pass", export.Page{
		Title:       `<b>Digits</b><script>alert(1)</script>`,
		Description: `Trained on <em>MNIST</em><script>alert(2)</script>`,
		Family:      layer.CNN,
		Framework:   "pytorch",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Digits</h1>")
	assert.Contains(t, out, "Trained on <em>MNIST</em>")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "alert(2)")
}

func TestHTML_DefaultTitle(t *testing.T) {
	out, err := export.HTML("pass", export.Page{Family: layer.CNN, Framework: "keras"})
	require.NoError(t, err)
	assert.Contains(t, out, "<title>CNN keras model</title>")
}

func TestHTML_ThemeVariantOverridesTokens(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"surface":   "#ffffff",
			"text":      "#111111",
			"bad token": "red",
			"inject":    "red;} body{display:none",
		},
		Variants: map[string]theme.Variant{
			"dark": {Tokens: map[string]string{"surface": "#000000"}},
		},
	}

	out, err := export.HTML("pass", export.Page{
		Family:    layer.FCN,
		Framework: "keras",
		Theme:     manifest,
		Variant:   "dark",
	})
	require.NoError(t, err)
	assert.Contains(t, out, ":root {\n--surface: #000000;\n--text: #111111;\n}")
	assert.Contains(t, out, `<p class="meta">FCN / keras / dark</p>`)
	assert.NotContains(t, out, "display:none")
}

func TestCSSVars(t *testing.T) {
	assert.Nil(t, export.CSSVars(nil, ""))

	vars := export.CSSVars(&theme.Manifest{Tokens: map[string]string{"brand": " #123456 "}}, "missing")
	assert.Equal(t, map[string]string{"--brand": "#123456"}, vars)
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	names     []string
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.names = append(s.names, name+"/"+variant)
	return s.selection, s.err
}

func TestResolveTheme(t *testing.T) {
	manifest := &theme.Manifest{Name: "acme", Tokens: map[string]string{"brand": "#123456"}}
	selector := &stubThemeSelector{selection: &theme.Selection{
		Theme:    "acme",
		Variant:  "dark",
		Manifest: manifest,
	}}

	got, variant, err := export.ResolveTheme(selector, "acme", "")
	require.NoError(t, err)
	assert.Same(t, manifest, got)
	assert.Equal(t, "dark", variant)
	assert.Equal(t, []string{"acme/"}, selector.names)
}

func TestResolveTheme_Errors(t *testing.T) {
	_, _, err := export.ResolveTheme(nil, "acme", "")
	assert.Error(t, err)

	boom := errors.New("boom")
	_, _, err = export.ResolveTheme(&stubThemeSelector{err: boom}, "acme", "")
	assert.ErrorIs(t, err, boom)

	_, _, err = export.ResolveTheme(&stubThemeSelector{selection: &theme.Selection{Theme: "acme"}}, "acme", "")
	assert.ErrorContains(t, err, "has no manifest")
}

// Package export writes generated model code to files: plain Python source
// or a standalone HTML page styled from a go-theme manifest.
package export

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-netgen/pkg/layer"
	"github.com/goliatone/go-netgen/pkg/render/template"
	"github.com/goliatone/go-netgen/pkg/render/template/gotemplate"
)

const pageTemplate = "page"

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

var (
	fileNameUnsafe = regexp.MustCompile(`[^a-z0-9]+`)
	tokenKeySafe   = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// FileName returns the conventional file name for generated code, such as
// "cnn_keras.py".
func FileName(family layer.Family, framework string) string {
	name := fileNameUnsafe.ReplaceAllString(strings.ToLower(strings.TrimSpace(framework)), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "model"
	}
	return strings.ToLower(string(family)) + "_" + name + ".py"
}

// WriteText writes code followed by exactly one trailing newline.
func WriteText(w io.Writer, code string) error {
	if w == nil {
		return errors.New("export: writer is required")
	}
	if _, err := io.WriteString(w, strings.TrimRight(code, "\n")+"\n"); err != nil {
		return fmt.Errorf("export: write text: %w", err)
	}
	return nil
}

// Page describes the HTML wrapper around generated code. Description may hold
// light markup; anything outside bluemonday's UGC policy is stripped.
type Page struct {
	Title       string
	Description string
	Family      layer.Family
	Framework   string
	Theme       *theme.Manifest
	Variant     string
}

var (
	engineOnce sync.Once
	engine     template.TemplateRenderer
	engineErr  error

	strictPolicy = bluemonday.StrictPolicy()
	ugcPolicy    = bluemonday.UGCPolicy()
)

func pageEngine() (template.TemplateRenderer, error) {
	engineOnce.Do(func() {
		templates, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			engineErr = fmt.Errorf("export: templates: %w", err)
			return
		}
		engine, engineErr = gotemplate.New(
			gotemplate.WithName("export"),
			gotemplate.WithFS(templates),
			gotemplate.WithGlobalData(map[string]any{"language": "python"}),
			gotemplate.WithPreload(pageTemplate),
		)
	})
	return engine, engineErr
}

// HTML renders code inside a themed page. Code is HTML-escaped; title and
// description are sanitised.
func HTML(code string, page Page) (string, error) {
	eng, err := pageEngine()
	if err != nil {
		return "", err
	}

	title := strings.TrimSpace(strictPolicy.Sanitize(page.Title))
	if title == "" {
		title = strings.TrimSpace(fmt.Sprintf("%s %s model", page.Family, page.Framework))
	}

	out, err := eng.RenderTemplate(pageTemplate, map[string]any{
		"title":       title,
		"description": strings.TrimSpace(ugcPolicy.Sanitize(page.Description)),
		"family":      string(page.Family),
		"framework":   page.Framework,
		"variant":     page.Variant,
		"css_vars":    cssVarsStyle(CSSVars(page.Theme, page.Variant)),
		"code":        strings.TrimRight(code, "\n"),
	})
	if err != nil {
		return "", fmt.Errorf("export: render page: %w", err)
	}
	return out, nil
}

// CSSVars flattens the manifest tokens into CSS custom properties. Variant
// tokens override base tokens. Tokens whose key or value could escape a
// declaration are dropped.
func CSSVars(manifest *theme.Manifest, variant string) map[string]string {
	if manifest == nil {
		return nil
	}
	tokens := make(map[string]string, len(manifest.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	if v, ok := manifest.Variants[variant]; ok {
		for key, value := range v.Tokens {
			tokens[key] = value
		}
	}

	vars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		if !tokenKeySafe.MatchString(key) || strings.ContainsAny(value, "<>{};") {
			continue
		}
		vars["--"+key] = strings.TrimSpace(value)
	}
	if len(vars) == 0 {
		return nil
	}
	return vars
}

// ResolveTheme asks selector for a theme and returns its manifest and the
// resolved variant.
func ResolveTheme(selector theme.ThemeSelector, name, variant string) (*theme.Manifest, string, error) {
	if selector == nil {
		return nil, "", errors.New("export: theme selector is required")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, "", fmt.Errorf("export: select theme %q: %w", name, err)
	}
	if selection == nil || selection.Manifest == nil {
		return nil, "", fmt.Errorf("export: theme %q has no manifest", name)
	}
	return selection.Manifest, selection.Variant, nil
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

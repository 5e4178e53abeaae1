package template

import (
	"io"
)

// TemplateRenderer renders named templates with a data context. Output is
// returned and, when writers are supplied, copied to each of them.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}

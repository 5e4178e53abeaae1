package design

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Issue is one problem found in a design document. Index is the layer index
// or -1 for document-level problems; Path is a JSON pointer inside the layer.
type Issue struct {
	Index   int    `json:"index"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Index < 0 {
		return i.Message
	}
	if i.Path == "" {
		return fmt.Sprintf("layer %d: %s", i.Index, i.Message)
	}
	return fmt.Sprintf("layer %d %s: %s", i.Index, i.Path, i.Message)
}

// IssueError collects every issue of one document.
type IssueError struct {
	Source string
	Issues []Issue
}

func (e *IssueError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("design: %s: %s", e.Source, strings.Join(parts, "; "))
}

func schemaIssues(index int, prefix string, err error) []Issue {
	if err == nil {
		return nil
	}

	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []Issue
		for _, inner := range multi {
			out = append(out, schemaIssues(index, prefix, inner)...)
		}
		return out
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		path := prefix
		if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
			path += "/" + strings.Join(pointer, "/")
		}
		return []Issue{{Index: index, Path: path, Message: schemaErr.Reason}}
	}

	return []Issue{{Index: index, Path: prefix, Message: err.Error()}}
}

// Package design reads and writes layer sequences stored as JSON or YAML
// design documents. Numeric fields are checked against the family's bounds
// tables; structural legality is still left to the topology validator.
package design

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-netgen/pkg/codegen"
	"github.com/goliatone/go-netgen/pkg/layer"
)

// Document is a named layer sequence for one family.
type Document struct {
	Family      layer.Family
	Mode        codegen.Mode
	Title       string
	Description string
	Layers      layer.Sequence
}

// Format selects the encoding of a saved document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension, defaulting to YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

type documentFile struct {
	Family      string           `json:"family" yaml:"family"`
	Mode        string           `json:"mode,omitempty" yaml:"mode,omitempty"`
	Title       string           `json:"title,omitempty" yaml:"title,omitempty"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Layers      []map[string]any `json:"layers" yaml:"layers"`
}

// LoadFile parses the design document at path.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("design: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS parses the design document at path inside fsys.
func LoadFS(fsys fs.FS, path string) (Document, error) {
	if fsys == nil {
		return Document{}, errors.New("design: filesystem is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Document{}, fmt.Errorf("design: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a JSON or YAML document. Bounds problems are reported
// together as an *IssueError; source labels the document in messages.
func Parse(data []byte, source string) (Document, error) {
	raw, err := parseDocument(data, source)
	if err != nil {
		return Document{}, err
	}

	family, err := layer.ParseFamily(raw.Family)
	if err != nil {
		return Document{}, &IssueError{Source: source, Issues: []Issue{{Index: -1, Path: "/family", Message: err.Error()}}}
	}

	layers, err := normaliseLayers(raw.Layers)
	if err != nil {
		return Document{}, fmt.Errorf("design: %s: %w", source, err)
	}

	schemas := Schema(family)
	var issues []Issue
	seq := make(layer.Sequence, 0, len(layers))
	for i, entry := range layers {
		lay, layerIssues := decodeLayer(schemas, i, entry)
		if len(layerIssues) > 0 {
			issues = append(issues, layerIssues...)
			continue
		}
		seq = append(seq, lay)
	}
	if len(issues) > 0 {
		return Document{}, &IssueError{Source: source, Issues: issues}
	}

	doc := Document{
		Family:      family,
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
		Layers:      seq,
	}
	if strings.TrimSpace(raw.Mode) != "" {
		doc.Mode = codegen.ParseMode(raw.Mode)
	}
	return doc, nil
}

// Encode writes doc in the requested format.
func Encode(doc Document, format Format) ([]byte, error) {
	file := documentFile{
		Family:      string(doc.Family),
		Mode:        string(doc.Mode),
		Title:       doc.Title,
		Description: doc.Description,
		Layers:      make([]map[string]any, 0, len(doc.Layers)),
	}
	for i, l := range doc.Layers {
		if l == nil {
			return nil, fmt.Errorf("design: nil layer at index %d", i)
		}
		file.Layers = append(file.Layers, layer.Encode(l))
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(file, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("design: encode json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML, "yml", "":
		data, err := yaml.Marshal(file)
		if err != nil {
			return nil, fmt.Errorf("design: encode yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("design: unsupported format %q", format)
	}
}

// SaveFile encodes doc using the format implied by path and writes it.
func SaveFile(path string, doc Document) error {
	data, err := Encode(doc, FormatFromPath(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("design: write %s: %w", path, err)
	}
	return nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("design: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("design: parse %s: invalid JSON or YAML", source)
}

// normaliseLayers routes the decoded layers through JSON so YAML integers
// and JSON numbers reach the schemas as the same float64 values.
func normaliseLayers(in []map[string]any) ([]map[string]any, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("normalise layers: %w", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("normalise layers: %w", err)
	}
	return out, nil
}

func decodeLayer(schemas *Schemas, index int, entry map[string]any) (layer.Layer, []Issue) {
	if entry == nil {
		return nil, []Issue{{Index: index, Message: "layer must be an object"}}
	}

	typeName, _ := entry["type"].(string)
	kind, err := layer.ParseKind(typeName)
	if err != nil {
		return nil, []Issue{{Index: index, Path: "/type", Message: err.Error()}}
	}
	schema := schemas.For(kind)
	if schema == nil {
		return nil, []Issue{{Index: index, Path: "/type", Message: fmt.Sprintf("%s layers are not available for %s networks", kind, schemas.Family)}}
	}

	entry["type"] = string(kind)
	if kind == layer.KindInput {
		switch size := entry["size"].(type) {
		case float64:
			entry["size"] = []any{size}
		case nil:
			entry["size"] = defaultShape(schemas.Family)
		}
	}
	if name, ok := entry["activation"].(string); ok {
		if activation, err := layer.ParseActivation(name); err == nil {
			entry["activation"] = string(activation)
		}
	}

	issues := schemaIssues(index, "", schema.VisitJSON(entry, openapi3.MultiErrors()))
	if schemas.Channels != nil && kind == layer.KindInput {
		if shape, ok := entry["size"].([]any); ok && len(shape) > 0 {
			issues = append(issues, schemaIssues(index, "/size/0", schemas.Channels.VisitJSON(shape[0]))...)
		}
	}
	if len(issues) > 0 {
		return nil, issues
	}

	lay, err := layer.Decode(entry)
	if err != nil {
		return nil, []Issue{{Index: index, Message: err.Error()}}
	}
	return lay, nil
}

func defaultShape(family layer.Family) []any {
	in, _ := family.Empty(layer.KindInput).(layer.Input)
	out := make([]any, len(in.Shape))
	for i, dim := range in.Shape {
		out[i] = float64(dim)
	}
	return out
}

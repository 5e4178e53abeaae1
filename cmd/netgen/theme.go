package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// manifestSelector serves themes loaded from manifest files on disk.
type manifestSelector struct {
	manifests map[string]*theme.Manifest
}

var _ theme.ThemeSelector = manifestSelector{}

func (s manifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("theme %q not found", name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// loadThemeSelector reads a JSON manifest and returns a selector serving it
// together with the theme name to select. Manifests without a name are keyed
// by their file name.
func loadThemeSelector(path string) (theme.ThemeSelector, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read theme: %w", err)
	}
	var manifest theme.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, "", fmt.Errorf("parse theme %s: %w", path, err)
	}

	name := strings.TrimSpace(manifest.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return manifestSelector{manifests: map[string]*theme.Manifest{name: &manifest}}, name, nil
}

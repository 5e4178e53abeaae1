package netgen

import (
	"github.com/goliatone/go-netgen/pkg/codegen"
	"github.com/goliatone/go-netgen/pkg/generator"
	"github.com/goliatone/go-netgen/pkg/layer"
	"github.com/goliatone/go-netgen/pkg/session"
	"github.com/goliatone/go-netgen/pkg/topology"
)

// Config aliases codegen.Config so callers can build requests from the
// top-level module.
type Config = codegen.Config

// Mode aliases codegen.Mode.
type Mode = codegen.Mode

// Verdict aliases topology.Verdict.
type Verdict = topology.Verdict

// NewGenerator exposes the generator facade constructor from the top-level
// module.
func NewGenerator(family layer.Family, options ...generator.Option) *generator.Facade {
	return generator.New(family, options...)
}

// NewWorkspace exposes the draft/snapshot workspace constructor.
func NewWorkspace(family layer.Family, options ...session.Option) *session.Workspace {
	return session.New(family, options...)
}

// Validate runs the topology validator of family over layers.
func Validate(family layer.Family, layers []layer.Layer) Verdict {
	return topology.Validate(family, layers)
}

// GenerateCode validates cfg.Layers and renders them with the named
// framework. A structural violation is returned as *topology.ViolationError
// and no code is generated.
func GenerateCode(family layer.Family, framework string, cfg Config, options ...generator.Option) (string, error) {
	if err := topology.Validate(family, cfg.Layers).Err(); err != nil {
		return "", err
	}
	return generator.New(family, options...).Generate(framework, cfg)
}

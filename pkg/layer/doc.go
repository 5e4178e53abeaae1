// Package layer defines the closed set of layer kinds a topology is assembled
// from. Each kind is its own variant type implementing the sealed Layer
// interface, so consumers switch on the concrete type and a new kind surfaces
// in every switch that has to handle it. The package also carries the
// per-family bounds tables the editing layer clamps against and the default
// constructors used when a layer changes kind. Nothing here checks ordering;
// that belongs to package topology.
package layer

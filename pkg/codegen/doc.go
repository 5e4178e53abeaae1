// Package codegen defines the contract every framework backend implements and
// the registry the generator facade looks backends up in. A Generator lowers
// an already validated layer sequence into source text in three sections:
// imports, model construction and a training routine. Generators never
// re-validate their input.
package codegen

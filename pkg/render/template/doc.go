// Package template defines the template-renderer seam used by the code
// generators for their training routines and by the export package for HTML
// pages. The pongo2-backed implementation lives in the gotemplate
// subpackage.
package template

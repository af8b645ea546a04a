// Package generation runs the contract rendering pipeline: build the base
// placeholder map from the request, add commission analysis, expand the
// compact schedule into share records, then process conditionals, special
// tokens, and substitution over the template text. The pipeline is pure;
// reading templates and persisting output belongs to the pipeline stages
// around it.
package generation

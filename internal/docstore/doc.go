// Package docstore persists contract templates and delivered documents on
// the local filesystem. Templates are addressed by ID (filename without the
// configured extension) under the templates directory; finished documents
// land in the output directory under collision-free names.
package docstore

// Package textutil sanitizes user-facing text for filesystem use. Document
// filenames are derived from contract references, which can carry characters
// the filesystem rejects.
package textutil

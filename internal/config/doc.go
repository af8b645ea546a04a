// Package config loads, validates, and normalizes vellum's TOML
// configuration, providing typed access for the daemon, CLI, and workflow
// stages.
//
// Call Load to resolve the active config file (explicit path, then
// ~/.config/vellum/config.toml, then ./vellum.toml), fill in defaults, expand
// home-relative paths, and validate the result. A ready-to-edit annotated
// sample lives alongside this package and is written by CreateSample.
package config

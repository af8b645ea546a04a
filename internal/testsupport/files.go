package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vellum/internal/config"
)

// WriteTemplate stores a template file under the config's templates
// directory and returns its path.
func WriteTemplate(t testing.TB, cfg *config.Config, id, text string) string {
	t.Helper()

	extension := strings.TrimSpace(cfg.Generation.TemplateExtension)
	if extension == "" {
		extension = ".txt"
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	if err := os.MkdirAll(cfg.Paths.TemplatesDir, 0o755); err != nil {
		t.Fatalf("mkdir templates dir: %v", err)
	}
	path := filepath.Join(cfg.Paths.TemplatesDir, id+extension)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write template %s: %v", id, err)
	}
	return path
}

// WriteRequestFile drops a request JSON document into dir and returns its path.
func WriteRequestFile(t testing.TB, dir, name, payload string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write request file %s: %v", name, err)
	}
	return path
}

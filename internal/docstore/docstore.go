package docstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"vellum/internal/config"
)

// ErrTemplateNotFound reports a template ID with no backing file.
var ErrTemplateNotFound = errors.New("template not found")

// defaultExtension is used when the config leaves template_extension blank.
const defaultExtension = ".txt"

// TemplateInfo describes one stored template.
type TemplateInfo struct {
	ID       string
	Path     string
	Size     int64
	Modified time.Time
}

// Store is the persistence surface stages and the CLI render through.
type Store interface {
	// ReadTemplate returns the template text for id. Missing templates
	// report ErrTemplateNotFound.
	ReadTemplate(ctx context.Context, id string) (string, error)
	// TemplatePath resolves id to its backing file without reading it.
	TemplatePath(id string) (string, error)
	// Templates lists the stored templates sorted by ID.
	Templates(ctx context.Context) ([]TemplateInfo, error)
	// WriteDocument stores text under filename in the output directory and
	// returns the path actually written, which may carry a numeric suffix
	// when the name is already taken.
	WriteDocument(ctx context.Context, filename, text string) (string, error)
}

// Filesystem is the directory-backed Store.
type Filesystem struct {
	templatesDir string
	outputDir    string
	extension    string
}

// NewFilesystem builds a Store over the configured template and output
// directories.
func NewFilesystem(cfg *config.Config) *Filesystem {
	extension := strings.TrimSpace(cfg.Generation.TemplateExtension)
	if extension == "" {
		extension = defaultExtension
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return &Filesystem{
		templatesDir: cfg.Paths.TemplatesDir,
		outputDir:    cfg.Paths.OutputDir,
		extension:    extension,
	}
}

// TemplatePath resolves id to a file under the templates directory. IDs may
// be spelled with or without the configured extension but must not reach
// outside the directory.
func (f *Filesystem) TemplatePath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("template id is empty")
	}
	name := id
	if !strings.EqualFold(filepath.Ext(name), f.extension) {
		name += f.extension
	}
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("template id %q must name a file in the templates directory", id)
	}
	return filepath.Join(f.templatesDir, name), nil
}

func (f *Filesystem) ReadTemplate(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := f.TemplatePath(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
		}
		return "", fmt.Errorf("read template %s: %w", id, err)
	}
	return string(data), nil
}

func (f *Filesystem) Templates(ctx context.Context) ([]TemplateInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(f.templatesDir)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	templates := make([]TemplateInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), f.extension) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		templates = append(templates, TemplateInfo{
			ID:       strings.TrimSuffix(name, filepath.Ext(name)),
			Path:     filepath.Join(f.templatesDir, name),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

func (f *Filesystem) WriteDocument(ctx context.Context, filename, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", fmt.Errorf("document filename is empty")
	}
	if filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", fmt.Errorf("document filename %q must name a file in the output directory", filename)
	}
	if err := os.MkdirAll(f.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure output directory: %w", err)
	}
	target, err := f.nextDocumentPath(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(target, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return target, nil
}

// nextDocumentPath returns the first free path for filename, suffixing the
// stem with -2, -3, ... when earlier deliveries already used the name.
func (f *Filesystem) nextDocumentPath(filename string) (string, error) {
	const maxAttempts = 10000
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		name := filename
		if attempt > 1 {
			name = fmt.Sprintf("%s-%d%s", stem, attempt, ext)
		}
		candidate := filepath.Join(f.outputDir, name)
		if _, err := os.Stat(candidate); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return candidate, nil
			}
			return "", fmt.Errorf("probe output path: %w", err)
		}
	}
	return "", fmt.Errorf("exhausted output filename slots for %s", filename)
}

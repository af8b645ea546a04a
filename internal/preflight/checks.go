package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"vellum/internal/config"
	"vellum/internal/docstore"
)

// CheckNtfy verifies that the configured ntfy topic accepts requests.
func CheckNtfy(ctx context.Context, topic string) Result {
	const name = "Ntfy"

	base := strings.TrimRight(strings.TrimSpace(topic), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing topic url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/json?poll=1", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (topic requires credentials)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%d)", resp.StatusCode)}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTemplates reports how many templates are available for generation.
// The daemon can run with an empty templates directory (contracts park at
// preparation), so this check is surfaced by the CLI status command rather
// than RunAll.
func CheckTemplates(ctx context.Context, cfg *config.Config) Result {
	const name = "Templates"

	if cfg == nil || strings.TrimSpace(cfg.Paths.TemplatesDir) == "" {
		return Result{Name: name, Detail: "templates directory not configured"}
	}
	templates, err := docstore.NewFilesystem(cfg).Templates(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("listing failed: %v", err)}
	}
	if len(templates) == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("no templates in %s", cfg.Paths.TemplatesDir)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d available", len(templates))}
}

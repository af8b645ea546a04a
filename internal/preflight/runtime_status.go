package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vellum/internal/config"
)

// CheckNtfyFromConfig evaluates notification readiness from config and
// connectivity.
func CheckNtfyFromConfig(cfg *config.Config) Result {
	const name = "Ntfy"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	check := CheckNtfy(context.Background(), cfg.Notifications.NtfyTopic)
	if check.Passed {
		return Result{Name: name, Passed: true, Detail: check.Detail}
	}
	return Result{Name: name, Detail: check.Detail}
}

// InboxProbe reports the current inbox snapshot for status UIs.
type InboxProbe struct {
	Dir     string
	Pending int
}

// ProbeInbox counts the request files waiting in the inbox directory.
func ProbeInbox(dir string) InboxProbe {
	dir = strings.TrimSpace(dir)
	probe := InboxProbe{Dir: dir}
	if dir == "" {
		return probe
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return probe
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			probe.Pending++
		}
	}
	return probe
}

// Detail renders a display-friendly summary for status output.
func (p InboxProbe) Detail() string {
	if p.Pending == 0 {
		return "No pending requests"
	}
	if p.Pending == 1 {
		return fmt.Sprintf("1 request waiting in %s", p.Dir)
	}
	return fmt.Sprintf("%d requests waiting in %s", p.Pending, p.Dir)
}

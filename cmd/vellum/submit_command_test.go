package main

import (
	"context"
	"strings"
	"testing"

	"vellum/internal/queue"
	"vellum/internal/testsupport"
)

func TestSubmitCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	requestPath := testsupport.WriteRequestFile(t, env.baseDir, "alpha.json", alphaRequest)

	out, _, err := runCLI(t, []string{"submit", requestPath}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	requireContains(t, out, "Queued contract ")
	requireContains(t, out, "as item #")
	requireContains(t, out, "alpha.json")

	items, err := env.store.List(ctx)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 queued item, got %d", len(items))
	}
	if items[0].Status != queue.StatusPending {
		t.Fatalf("expected pending, got %s", items[0].Status)
	}
	if items[0].Reference == "" {
		t.Fatalf("expected a contract reference to be assigned")
	}
	if items[0].TemplateID != "standard" {
		t.Fatalf("expected template standard, got %s", items[0].TemplateID)
	}
}

func TestSubmitCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	requestPath := testsupport.WriteRequestFile(t, env.baseDir, "alpha.json", alphaRequest)

	out, _, err := runCLI(t, []string{"submit", requestPath, "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("submit --json: %v", err)
	}
	requireContains(t, out, `"id"`)
	requireContains(t, out, `"reference"`)
	requireContains(t, out, `"status"`)
}

func TestSubmitCommandInvalidRequest(t *testing.T) {
	env := setupCLITestEnv(t)

	requestPath := testsupport.WriteRequestFile(t, env.baseDir, "bad.json", `{"entity":{"name":"Alpha"}}`)

	_, _, err := runCLI(t, []string{"submit", requestPath}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "template_id") {
		t.Fatalf("expected template_id validation error, got %v", err)
	}
}

func TestSubmitCommandMissingFile(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"submit", "/does/not/exist.json"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "request file does not exist") {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

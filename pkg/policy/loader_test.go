package policy

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
}

func TestLoadFromFile_Rego(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	policyFile := filepath.Join(t.TempDir(), "test-policy.rego")
	regoContent := `# Test policy for validation
package test.policy

import rego.v1

deny contains msg if {
	input.name == "invalid"
	msg := "invalid sweep name"
}`
	writeFile(t, policyFile, regoContent)

	policy, err := loader.loadFromFile(policyFile)
	if err != nil {
		t.Fatalf("Failed to load policy: %v", err)
	}

	if policy.Name != "test-policy" {
		t.Errorf("Expected name 'test-policy', got '%s'", policy.Name)
	}
	if policy.Rego != regoContent {
		t.Error("Rego content doesn't match")
	}
	if policy.Description != "Test policy for validation" {
		t.Errorf("Unexpected description: %q", policy.Description)
	}
	if policy.Severity != SeverityWarning {
		t.Errorf("Expected default severity warning, got %s", policy.Severity)
	}
	if !policy.Enabled {
		t.Error("Policy should be enabled by default")
	}
	if policy.Metadata["source"] != policyFile {
		t.Errorf("Expected source metadata %s, got %v", policyFile, policy.Metadata["source"])
	}
}

func TestLoadFromFile_JSON(t *testing.T) {
	loader := NewLoader(zerolog.Nop())
	policyFile := filepath.Join(t.TempDir(), "test-policy.json")

	data, err := json.Marshal(map[string]any{
		"name":        "test-json-policy",
		"description": "A test policy",
		"rego":        "package test\n\nimport rego.v1\n\ndeny contains msg if { false; msg := \"x\" }",
		"tags":        []string{"test"},
	})
	if err != nil {
		t.Fatalf("Failed to marshal policy: %v", err)
	}
	writeFile(t, policyFile, string(data))

	loaded, err := loader.loadFromFile(policyFile)
	if err != nil {
		t.Fatalf("Failed to load policy: %v", err)
	}

	if loaded.Name != "test-json-policy" {
		t.Errorf("Expected name 'test-json-policy', got '%s'", loaded.Name)
	}
	if loaded.Severity != SeverityWarning {
		t.Errorf("Expected default severity warning, got %s", loaded.Severity)
	}
	if !loaded.Enabled {
		t.Error("JSON policy without enabled field should be enabled")
	}
}

func TestLoadFromFile_JSONWithoutName(t *testing.T) {
	loader := NewLoader(zerolog.Nop())
	policyFile := filepath.Join(t.TempDir(), "nameless.json")
	writeFile(t, policyFile, `{"rego": "package x"}`)

	if _, err := loader.loadFromFile(policyFile); err == nil {
		t.Error("Expected error for JSON policy without a name")
	}
}

func TestLoadFromFile_Unsupported(t *testing.T) {
	loader := NewLoader(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "policy.txt")
	writeFile(t, path, "nothing")

	if _, err := loader.loadFromFile(path); err == nil {
		t.Error("Expected error for unsupported file type")
	}
}

func TestLoadFromPaths_Directory(t *testing.T) {
	loader := NewLoader(zerolog.Nop())
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "a.rego"), "package a\n")
	writeFile(t, filepath.Join(dir, "nested", "b.rego"), "package b\n")
	writeFile(t, filepath.Join(dir, "README.md"), "# not a policy")
	writeFile(t, filepath.Join(dir, "broken.json"), "{")

	policies, err := loader.LoadFromPaths(t.Context(), []string{dir})
	if err != nil {
		t.Fatalf("Failed to load directory: %v", err)
	}

	if len(policies) != 2 {
		t.Fatalf("Expected 2 policies, got %d", len(policies))
	}
	if policies[0].Name != "a" || policies[1].Name != "b" {
		t.Errorf("Unexpected policies: %s, %s", policies[0].Name, policies[1].Name)
	}
}

func TestLoadFromPaths_Missing(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	_, err := loader.LoadFromPaths(t.Context(), []string{filepath.Join(t.TempDir(), "missing")})
	if err == nil {
		t.Error("Expected error for missing path")
	}
}

func TestLoader_Cache(t *testing.T) {
	loader := NewLoader(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "cached.rego")
	writeFile(t, path, "package one\n")

	first, err := loader.loadFromFile(path)
	if err != nil {
		t.Fatalf("Failed to load policy: %v", err)
	}

	writeFile(t, path, "package two\n")

	second, err := loader.loadFromFile(path)
	if err != nil {
		t.Fatalf("Failed to load policy: %v", err)
	}
	if second != first {
		t.Error("Expected cached policy on second load")
	}

	loader.ClearCache()

	third, err := loader.loadFromFile(path)
	if err != nil {
		t.Fatalf("Failed to load policy: %v", err)
	}
	if third.Rego != "package two\n" {
		t.Errorf("Expected reloaded content, got %q", third.Rego)
	}
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		description string
		severity    Severity
	}{
		{"no comments", "package x\n", "", SeverityWarning},
		{"multi line", "# First line.\n# Second line.\npackage x\n", "First line. Second line.", SeverityWarning},
		{"severity", "# severity: critical\n# Checks things.\npackage x\n", "Checks things.", SeverityCritical},
		{"stops at package", "package x\n# not a header\n", "", SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			description, severity := parseHeader(tt.content)
			if description != tt.description {
				t.Errorf("description = %q, want %q", description, tt.description)
			}
			if severity != tt.severity {
				t.Errorf("severity = %s, want %s", severity, tt.severity)
			}
		})
	}
}

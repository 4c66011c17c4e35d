package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
)

// TestE2ESceneExample exercises the full pipeline: script source → engine →
// workspace → surface meshes. This is the same path the CLI takes.
func TestE2ESceneExample(t *testing.T) {
	app := NewApp()

	source, err := os.ReadFile("examples/scene.vox")
	if err != nil {
		t.Fatalf("failed to read scene.vox: %v", err)
	}

	result := app.Evaluate(string(source))

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	if len(result.Volumes) != 3 {
		t.Fatalf("expected 3 volumes, got %d", len(result.Volumes))
	}
	block := result.Volumes[0]
	if block.Name != "block" || block.Capacity != 16*16*16 {
		t.Errorf("unexpected block summary %+v", block)
	}

	expected := map[string]bool{"block": false, "ball": false, "shell": false, "preview": false}
	for _, m := range result.Meshes {
		if _, ok := expected[m.Name]; !ok {
			t.Errorf("unexpected mesh name: %q", m.Name)
			continue
		}
		expected[m.Name] = true

		if len(m.Vertices) == 0 || len(m.Normals) == 0 || len(m.Indices) == 0 {
			t.Errorf("volume %q: empty geometry", m.Name)
		}
		if m.Color == "" {
			t.Errorf("volume %q: no color assigned", m.Name)
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("missing mesh for volume %q", name)
		}
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Meshes == nil || result.Errors == nil || result.Volumes == nil {
		t.Error("result slices should be non-nil")
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("(defvolume \"test\"")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

// TestE2EEmptyVolumeHasNoMesh ensures an all-zero volume is listed but not
// meshed.
func TestE2EEmptyVolumeHasNoMesh(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(defvolume "air" (volume :min [0 0 0] :max [4 4 4]))`)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Volumes) != 1 || result.Volumes[0].Name != "air" {
		t.Fatalf("unexpected volumes %+v", result.Volumes)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

func TestWriteResultIsJSON(t *testing.T) {
	result := NewApp().Evaluate(`(defvolume "dot" (volume :min [-1 -1 -1] :max [0 0 0] :fill 1))`)

	var buf bytes.Buffer
	if err := writeResult(&buf, result); err != nil {
		t.Fatalf("writeResult: %v", err)
	}

	var decoded EvalResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Volumes) != 1 || decoded.Volumes[0].Min != [3]int64{-1, -1, -1} {
		t.Errorf("unexpected volumes %+v", decoded.Volumes)
	}
	if len(decoded.Meshes) != 1 || len(decoded.Meshes[0].Indices) != 36 {
		t.Errorf("expected one cube mesh with 36 indices, got %+v", decoded.Meshes)
	}
}

package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-formdesigner/pkg/model"
)

// MustLoadDesign reads a JSON design fixture.
func MustLoadDesign(t *testing.T, path string) model.Design {
	t.Helper()

	design, err := LoadDesign(path)
	if err != nil {
		t.Fatalf("load design: %v", err)
	}
	return design
}

// LoadDesign reads a JSON design fixture without requiring testing.T.
func LoadDesign(path string) (model.Design, error) {
	if path == "" {
		return model.Design{}, errors.New("testsupport: design path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Design{}, fmt.Errorf("testsupport: read design: %w", err)
	}
	var out model.Design
	if err := json.Unmarshal(data, &out); err != nil {
		return model.Design{}, fmt.Errorf("testsupport: unmarshal design: %w", err)
	}
	return out, nil
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

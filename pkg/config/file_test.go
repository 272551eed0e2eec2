package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileMissingUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}

	if f.CanvasMaxWidth() != 800 || f.CanvasMaxHeight() != 600 {
		t.Fatalf("unexpected default canvas size %dx%d", f.CanvasMaxWidth(), f.CanvasMaxHeight())
	}
	if f.ExportSchedule() != "" {
		t.Fatalf("expected scheduled export to be disabled by default, got %q", f.ExportSchedule())
	}
	if want := filepath.Join(dir, "coordplot-state.json"); f.StateFile() != want {
		t.Fatalf("expected state file %s, got %s", want, f.StateFile())
	}
	if want := filepath.Join(dir, "coordplot-points.csv"); f.ExportPath() != want {
		t.Fatalf("expected export path %s, got %s", want, f.ExportPath())
	}
}

func TestNewFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if f.ExportFormat() != "csv" {
		t.Fatalf("expected default export format, got %q", f.ExportFormat())
	}
}

func TestNewFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := NewFile(path); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}

	f.SetCanvasMaxSize(1024, 768)
	f.SetExportSchedule("@every 1h")
	f.SetExportFormat("json")
	if err := f.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	g, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if g.CanvasMaxWidth() != 1024 || g.CanvasMaxHeight() != 768 {
		t.Fatalf("canvas size not persisted: %dx%d", g.CanvasMaxWidth(), g.CanvasMaxHeight())
	}
	if g.ExportSchedule() != "@every 1h" || g.ExportFormat() != "json" {
		t.Fatalf("export settings not persisted: %q %q", g.ExportSchedule(), g.ExportFormat())
	}
}

func TestRawFileConfigFromConfig(t *testing.T) {
	f := NewFileFromConfig(nil, "")
	raw, err := NewRawFileConfigFromConfig(f)
	if err != nil {
		t.Fatalf("NewRawFileConfigFromConfig failed: %v", err)
	}
	if *raw.CanvasMaxWidth != 800 || *raw.StateFile != "coordplot-state.json" {
		t.Fatalf("unexpected raw config %+v", raw)
	}

	if _, err := NewRawFileConfigFromConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

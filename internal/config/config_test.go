package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fedesilva/minnieml/internal/semantic"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mml.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if cfg.Mode != "binary" {
		t.Errorf("default mode %q, want binary", cfg.Mode)
	}
	if cfg.SemanticMode() != semantic.ModeBinary {
		t.Errorf("default semantic mode %v, want binary", cfg.SemanticMode())
	}
}

func TestLoadReadsValues(t *testing.T) {
	path := writeConfig(t, "module: demo\nmode: library\nnoTco: true\ndumpAst: true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Module != "demo" || cfg.Mode != "library" || !cfg.NoTCO || !cfg.DumpAst {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.SemanticMode() != semantic.ModeLibrary {
		t.Errorf("semantic mode %v, want library", cfg.SemanticMode())
	}
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	path := writeConfig(t, "mode: interpretive-dance\n")
	if _, err := Load(path); err == nil {
		t.Error("unknown mode must be an error")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "mode: [unterminated\n")
	if _, err := Load(path); err == nil {
		t.Error("malformed yaml must be an error")
	}
}

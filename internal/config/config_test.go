package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitAndLoad(t *testing.T) {
	root := t.TempDir()

	if _, err := Init(root); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !IsWorkspace(root) {
		t.Fatal("Init should create a workspace")
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %q, want default", cfg.ListenAddr)
	}
}

func TestLoadMissingConfigGivesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load without config file: %v", err)
	}
	if cfg.GrobidURL != "" || cfg.MissingRefPolicy != "" {
		t.Errorf("cfg = %+v, want zero values", cfg)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	root := t.TempDir()
	if _, err := Init(root); err != nil {
		t.Fatal(err)
	}

	want := &Config{
		GrobidURL:        "http://grobid.internal:8070",
		MissingRefPolicy: "skip",
		MaxEvidenceChars: 12000,
	}
	if err := want.Save(root); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if got.GrobidURL != want.GrobidURL || got.MissingRefPolicy != want.MissingRefPolicy ||
		got.MaxEvidenceChars != want.MaxEvidenceChars {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestEnvOverridesGrobidURL(t *testing.T) {
	root := t.TempDir()
	if _, err := Init(root); err != nil {
		t.Fatal(err)
	}
	cfg := &Config{GrobidURL: "http://from-file:8070"}
	if err := cfg.Save(root); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvGrobidURL, "http://from-env:8070")
	got, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if got.GrobidURL != "http://from-env:8070" {
		t.Errorf("GrobidURL = %q, want env override", got.GrobidURL)
	}
}

func TestFindWorkspace(t *testing.T) {
	root := t.TempDir()
	if _, err := Init(root); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	found, err := FindWorkspace(nested)
	if err != nil {
		t.Fatalf("FindWorkspace: %v", err)
	}
	// Resolve symlinks; macOS temp dirs are behind /private.
	wantResolved, _ := filepath.EvalSymlinks(root)
	gotResolved, _ := filepath.EvalSymlinks(found)
	if gotResolved != wantResolved {
		t.Errorf("FindWorkspace = %q, want %q", found, root)
	}

	if _, err := FindWorkspace(t.TempDir()); err == nil {
		t.Error("FindWorkspace outside a workspace should fail")
	}
}

func TestStorePath(t *testing.T) {
	root := "/ws"
	cfg := &Config{}
	if got := cfg.StorePath(root); got != filepath.Join(root, CitecheckDir, StoreDir) {
		t.Errorf("default StorePath = %q", got)
	}
	cfg.StoreRoot = "corpus"
	if got := cfg.StorePath(root); got != filepath.Join(root, "corpus") {
		t.Errorf("relative StorePath = %q", got)
	}
	cfg.StoreRoot = "/abs/corpus"
	if got := cfg.StorePath(root); got != "/abs/corpus" {
		t.Errorf("absolute StorePath = %q", got)
	}
}

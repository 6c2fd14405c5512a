package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Corpus != "" || cfg.Db != "" {
		t.Errorf("expected empty paths, got %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Annotators, []string{"GOLD", "SILVER", "BRONZE"}) {
		t.Errorf("expected default annotators, got %v", cfg.Annotators)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disco.yaml")
	content := "corpus: /data/stac\ndb: /data/stac.db\nannotators:\n  - GOLD\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Corpus != "/data/stac" {
		t.Errorf("unexpected corpus %q", cfg.Corpus)
	}
	if cfg.Db != "/data/stac.db" {
		t.Errorf("unexpected db %q", cfg.Db)
	}
	if !reflect.DeepEqual(cfg.Annotators, []string{"GOLD"}) {
		t.Errorf("unexpected annotators %v", cfg.Annotators)
	}
}

func TestLoadInvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disco.yaml")
	if err := os.WriteFile(path, []byte("corpus: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := &Config{Corpus: "/data/stac", Db: "/data/stac.db", Annotators: []string{"GOLD", "SILVER"}}

	if err := Save(path, want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestLoadDefaultEnvOverride(t *testing.T) {
	t.Setenv("DISCO_CORPUS", "/env/corpus")
	t.Setenv("DISCO_DB", "/env/stac.db")

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Corpus != "/env/corpus" {
		t.Errorf("expected env corpus, got %q", cfg.Corpus)
	}
	if cfg.Db != "/env/stac.db" {
		t.Errorf("expected env db, got %q", cfg.Db)
	}
}

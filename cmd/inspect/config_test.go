package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wippyai/inlinedst/errors"
)

const profileTOML = `
[defaults]
word-size = 4
ops = ["append:a"]

[profiles.tiny]
kind = "slice"
storage = "array"
words = 11
word-size = 1
elem = "u8"
ops = ["push:97", "push:98"]

[profiles.wasm]
storage = "linear"
max = 16384
`

func writeProfile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.toml")
	if err := os.WriteFile(path, []byte(profileTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeProfile(t)

	tests := []struct {
		name     string
		profile  string
		kind     string
		storage  string
		words    int
		wordSize int
		max      int
		ops      int
	}{
		{"defaults only", "", "text", "vec", 8, 4, 0, 1},
		{"tiny", "tiny", "slice", "array", 11, 1, 0, 3},
		{"wasm", "wasm", "text", "linear", 8, 4, 16384, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadProfile(path, tt.profile)
			if err != nil {
				t.Fatalf("LoadProfile failed: %v", err)
			}
			if cfg.Kind != tt.kind || cfg.Storage != tt.storage {
				t.Errorf("kind/storage = %s/%s, want %s/%s", cfg.Kind, cfg.Storage, tt.kind, tt.storage)
			}
			if cfg.Words != tt.words || cfg.WordSize != tt.wordSize || cfg.Max != tt.max {
				t.Errorf("words/word-size/max = %d/%d/%d, want %d/%d/%d",
					cfg.Words, cfg.WordSize, cfg.Max, tt.words, tt.wordSize, tt.max)
			}
			if len(cfg.Ops) != tt.ops {
				t.Errorf("ops = %v, want %d entries", cfg.Ops, tt.ops)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate failed: %v", err)
			}
		})
	}
}

func TestLoadProfile_Errors(t *testing.T) {
	path := writeProfile(t)

	if _, err := LoadProfile(path, "missing"); !errors.IsKind(err, errors.KindNotFound) {
		t.Errorf("missing profile: err = %v, want not_found", err)
	}
	if _, err := LoadProfile(filepath.Join(t.TempDir(), "none.toml"), ""); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("missing file: err = %v, want invalid_input", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(bad, []byte("words = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfile(bad, ""); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("bad toml: err = %v, want invalid_input", err)
	}
}

func TestMerge_DoesNotAlias(t *testing.T) {
	base := DefaultConfig()
	base.Ops = make([]string, 1, 4)
	base.Ops[0] = "append:x"

	a := base.Merge(Config{Ops: []string{"pop"}})
	b := base.Merge(Config{Ops: []string{"push:1"}})
	if a.Ops[1] != "pop" || b.Ops[1] != "push:1" {
		t.Errorf("merged ops share storage: %v %v", a.Ops, b.Ops)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		kind   errors.Kind
	}{
		{"unknown kind", func(c *Config) { c.Kind = "queue" }, errors.KindNotFound},
		{"unknown storage", func(c *Config) { c.Storage = "heap" }, errors.KindNotFound},
		{"bad word size", func(c *Config) { c.WordSize = 3 }, errors.KindInvalidInput},
		{"negative words", func(c *Config) { c.Words = -1 }, errors.KindInvalidInput},
		{"empty array", func(c *Config) { c.Storage = "array"; c.Words = 0 }, errors.KindInvalidInput},
		{"unknown elem", func(c *Config) { c.Elem = "u128" }, errors.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.IsKind(err, tt.kind) {
				t.Errorf("Validate = %v, want %s", err, tt.kind)
			}
		})
	}
}

package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/inlinedst/errors"
)

// Config selects the container and storage to inspect.
type Config struct {
	Kind     string   `toml:"kind"`
	Storage  string   `toml:"storage"`
	Elem     string   `toml:"elem"`
	Ops      []string `toml:"ops"`
	Words    int      `toml:"words"`
	WordSize int      `toml:"word-size"`
	Max      int      `toml:"max"`
}

// ProfileFile is the TOML layout of a profile file:
//
//	[defaults]
//	word-size = 4
//
//	[profiles.tiny]
//	kind = "slice"
//	storage = "array"
//	words = 3
type ProfileFile struct {
	Profiles map[string]Config `toml:"profiles"`
	Defaults Config            `toml:"defaults"`
}

var (
	kinds    = []string{"text", "slice", "value", "stack", "queue"}
	storages = []string{"array", "vec", "linear"}
)

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		Kind:     "text",
		Storage:  "vec",
		Elem:     "u8",
		Words:    8,
		WordSize: 8,
	}
}

// LoadProfile reads path and returns the defaults overlaid with the named
// profile. An empty name selects the defaults alone.
func LoadProfile(path, name string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err,
			fmt.Sprintf("cannot read %s", path))
	}

	var f ProfileFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err,
			fmt.Sprintf("parse error in %s", path))
	}

	cfg := DefaultConfig().Merge(f.Defaults)
	if name == "" {
		return cfg, nil
	}
	p, ok := f.Profiles[name]
	if !ok {
		return Config{}, errors.NotFound(errors.PhaseConfig, "profile", name)
	}
	return cfg.Merge(p), nil
}

// Merge returns c with every non-zero field of o applied. Ops are appended.
func (c Config) Merge(o Config) Config {
	if o.Kind != "" {
		c.Kind = o.Kind
	}
	if o.Storage != "" {
		c.Storage = o.Storage
	}
	if o.Elem != "" {
		c.Elem = o.Elem
	}
	if o.Words != 0 {
		c.Words = o.Words
	}
	if o.WordSize != 0 {
		c.WordSize = o.WordSize
	}
	if o.Max != 0 {
		c.Max = o.Max
	}
	c.Ops = append(slices.Clip(c.Ops), o.Ops...)
	return c
}

// Validate checks that c names a supported combination.
func (c Config) Validate() error {
	if !slices.Contains(kinds, c.Kind) {
		return errors.NotFound(errors.PhaseConfig, "container kind", c.Kind)
	}
	if !slices.Contains(storages, c.Storage) {
		return errors.NotFound(errors.PhaseConfig, "storage", c.Storage)
	}
	switch c.WordSize {
	case 1, 2, 4, 8:
	default:
		return errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("word size must be 1, 2, 4 or 8, got %d", c.WordSize))
	}
	if c.Words < 0 || c.Max < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "word counts must not be negative")
	}
	if c.Storage == "array" && c.Words == 0 {
		return errors.InvalidInput(errors.PhaseConfig, "array storage needs -words")
	}
	if _, err := lookupKind(c.Elem); err != nil {
		return err
	}
	return nil
}

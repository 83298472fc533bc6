package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest describes a dada.toml package manifest: the package name, its
// entry point file, and the set of function names the WASM backend should
// export from the emitted module (in addition to the entry point itself).
type Manifest struct {
	Name    string
	Entry   string
	Exports []string
}

var (
	// ErrPackageSectionMissing indicates that [package] is missing in a manifest.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageEntryMissing indicates that [package].entry is missing in a manifest.
	ErrPackageEntryMissing = errors.New("missing [package].entry")
)

type manifestFile struct {
	Package struct {
		Name  string `toml:"name"`
		Entry string `toml:"entry"`
	} `toml:"package"`
	Wasm struct {
		Exports []string `toml:"exports"`
	} `toml:"wasm"`
}

// LoadManifest parses a dada.toml package manifest.
func LoadManifest(path string) (Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	entry := strings.TrimSpace(cfg.Package.Entry)
	if !meta.IsDefined("package", "entry") || entry == "" {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrPackageEntryMissing)
	}
	return Manifest{
		Name:    strings.TrimSpace(cfg.Package.Name),
		Entry:   entry,
		Exports: append([]string(nil), cfg.Wasm.Exports...),
	}, nil
}
